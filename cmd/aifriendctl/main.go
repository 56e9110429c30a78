package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aifriend/aifriend/internal/config"
	"github.com/aifriend/aifriend/internal/notify"
	"github.com/aifriend/aifriend/internal/storage/sqlite"
)

var envFile string
var debug bool

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aifriendctl",
		Short: "Operator CLI for the aifriend service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					log.Warn().Err(err).Str("file", envFile).Msg("could not load env file")
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Optional .env file to load before reading configuration")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newSubscriptionsCmd())
	rootCmd.AddCommand(newPushCmd())

	return rootCmd
}

func openStore() (*config.Config, *sqlite.SubscriptionStore, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := sqlite.NewSubscriptionStore(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open subscription store: %w", err)
	}
	return cfg, store, nil
}

func newSubscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Inspect and manage stored push subscriptions",
	}
	cmd.AddCommand(newSubscriptionsListCmd())
	cmd.AddCommand(newSubscriptionsDeleteCmd())
	return cmd
}

func newSubscriptionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored push subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			subs, err := store.List(ctx)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(map[string]interface{}{
				"subscriptions": subs,
				"count":         len(subs),
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newSubscriptionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <endpoint>",
		Short: "Delete the subscription with the given endpoint URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			log.Info().Str("endpoint", args[0]).Msg("subscription deleted")
			return nil
		},
	}
}

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send web push notifications by hand",
	}
	cmd.AddCommand(newPushSendCmd())
	return cmd
}

func newPushSendCmd() *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a notification to every stored subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
				return fmt.Errorf("VAPID keys are not configured; set AIFRIEND_VAPID_PUBLIC_KEY and AIFRIEND_VAPID_PRIVATE_KEY")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			sender := notify.NewSender(store, cfg.VAPIDSubscriber, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, log.Logger)
			res, err := sender.SendToAll(ctx, title, body)
			if err != nil {
				return err
			}
			log.Info().Int("sent", res.Sent).Int("pruned", res.Pruned).Msg("push fan-out complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "AI Friend", "Notification title")
	cmd.Flags().StringVar(&body, "body", "Hey, come say hi!", "Notification body")
	return cmd
}

// Package notify delivers web-push nudges to stored browser subscriptions.
//
// The fan-out is deliberately unobtrusive: sends happen only inside a
// daytime window in the user's timezone (KST) and even then only with a
// small per-invocation probability, so the friend pings occasionally
// rather than on a rigid schedule.
package notify

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/aifriend/aifriend/internal/model"
	"github.com/rs/zerolog"
)

const (
	// window bounds, hours in Asia/Seoul local time
	windowStartHour = 9
	windowEndHour   = 22

	// per-invocation chance that a nudge actually goes out
	sendProbability = 0.17

	pushTTLSeconds = 3600
)

// nudgeMessages is the pool a nudge body is drawn from.
var nudgeMessages = []string{
	"Hey, how is your day going? Tell me in English!",
	"Got a minute? Let's practice a little English.",
	"I was just thinking about you. What are you up to?",
	"Quick question: what was the best part of your day?",
	"Miss you! Come tell me something new you learned.",
	"Let's chat! Even one sentence counts as practice.",
}

// SubscriptionSource is the subset of the store the sender needs.
type SubscriptionSource interface {
	List(ctx context.Context) ([]model.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

// Payload is the JSON document delivered to the service worker.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Result summarizes one fan-out invocation.
type Result struct {
	Sent    int    `json:"sent"`
	Pruned  int    `json:"pruned,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Sender pushes notifications to every stored subscription.
type Sender struct {
	store      SubscriptionSource
	subscriber string
	vapidPub   string
	vapidPriv  string
	log        zerolog.Logger

	// injected for tests
	now       func() time.Time
	randFloat func() float64
	push      func(message []byte, s *webpush.Subscription, o *webpush.Options) (*http.Response, error)
}

// NewSender creates a Sender using the given VAPID key pair.
func NewSender(store SubscriptionSource, subscriber, vapidPublic, vapidPrivate string, log zerolog.Logger) *Sender {
	return &Sender{
		store:      store,
		subscriber: subscriber,
		vapidPub:   vapidPublic,
		vapidPriv:  vapidPrivate,
		log:        log,
		now:        time.Now,
		randFloat:  rand.Float64,
		push:       webpush.SendNotification,
	}
}

// seoul returns the KST location, degrading to a fixed +09:00 offset when
// the zone database is unavailable.
func seoul() *time.Location {
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

// InWindow reports whether t falls inside the daytime nudge window.
func InWindow(t time.Time) bool {
	h := t.In(seoul()).Hour()
	return h >= windowStartHour && h < windowEndHour
}

// Nudge runs one gated fan-out: outside the window or losing the
// probability roll it sends nothing and reports why.
func (s *Sender) Nudge(ctx context.Context) (Result, error) {
	if !InWindow(s.now()) {
		return Result{Skipped: true, Reason: "outside notification window"}, nil
	}
	if s.randFloat() >= sendProbability {
		return Result{Skipped: true, Reason: "probability gate"}, nil
	}

	body := nudgeMessages[rand.Intn(len(nudgeMessages))]
	return s.SendToAll(ctx, "AI Friend", body)
}

// SendToAll pushes one notification to every subscription, bypassing the
// window and probability gates. Subscriptions rejected with 404 or 410 are
// pruned from the store.
func (s *Sender) SendToAll(ctx context.Context, title, body string) (Result, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return Result{}, err
	}

	payload, err := json.Marshal(Payload{Title: title, Body: body})
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, sub := range subs {
		resp, err := s.push(payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{Auth: sub.Keys.Auth, P256dh: sub.Keys.P256dh},
		}, &webpush.Options{
			Subscriber:      s.subscriber,
			VAPIDPublicKey:  s.vapidPub,
			VAPIDPrivateKey: s.vapidPriv,
			TTL:             pushTTLSeconds,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("endpoint", sub.Endpoint).Msg("push delivery failed")
			continue
		}
		if resp != nil {
			status := resp.StatusCode
			_ = resp.Body.Close()
			if status == http.StatusNotFound || status == http.StatusGone {
				if err := s.store.Delete(ctx, sub.Endpoint); err == nil {
					res.Pruned++
				}
				continue
			}
		}
		res.Sent++
	}

	s.log.Info().Int("sent", res.Sent).Int("pruned", res.Pruned).Msg("push fan-out complete")
	return res, nil
}

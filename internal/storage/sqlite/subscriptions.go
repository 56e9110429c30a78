// Package sqlite persists web-push subscriptions in a local SQLite
// database. Subscriptions are keyed by a digest of the endpoint URL and
// stored as the serialized browser subscription object; writes follow
// last-write-wins semantics.
package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aifriend/aifriend/internal/model"
)

const schema = `CREATE TABLE IF NOT EXISTS Subscriptions (
	SubKey       TEXT PRIMARY KEY,
	Endpoint     TEXT NOT NULL,
	Payload      TEXT NOT NULL,
	CreationTime TIMESTAMP NOT NULL
)`

// SubscriptionStore implements the push-subscription key-value store.
type SubscriptionStore struct {
	db *sql.DB
}

// NewSubscriptionStore opens (or creates) the store at path.
func NewSubscriptionStore(path string) (*SubscriptionStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewSubscriptionStoreWithDB(db)
}

// NewSubscriptionStoreWithDB wires the store onto an existing connection
// and ensures the schema exists.
func NewSubscriptionStoreWithDB(db *sql.DB) (*SubscriptionStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensure subscriptions schema: %w", err)
	}
	return &SubscriptionStore{db: db}, nil
}

// Close releases the underlying connection.
func (s *SubscriptionStore) Close() error { return s.db.Close() }

// HealthCheck pings the database.
func (s *SubscriptionStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SubscriptionKey derives the storage key for an endpoint URL.
func SubscriptionKey(endpoint string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return hex.EncodeToString(sum[:])
}

// Save upserts a subscription. Re-registering the same endpoint overwrites
// the stored keys.
func (s *SubscriptionStore) Save(ctx context.Context, sub model.PushSubscription) error {
	if sub.Endpoint == "" {
		return model.ErrValidation
	}
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO Subscriptions (SubKey, Endpoint, Payload, CreationTime) VALUES (?,?,?,?)
		 ON CONFLICT(SubKey) DO UPDATE SET Payload = excluded.Payload`,
		SubscriptionKey(sub.Endpoint), sub.Endpoint, string(payload), time.Now().UTC())
	return err
}

// Delete removes the subscription for endpoint. Deleting an unknown
// endpoint is not an error.
func (s *SubscriptionStore) Delete(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Subscriptions WHERE SubKey = ?`, SubscriptionKey(endpoint))
	return err
}

// List returns every stored subscription. Rows whose payload no longer
// unmarshals are skipped.
func (s *SubscriptionStore) List(ctx context.Context) ([]model.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT Payload FROM Subscriptions ORDER BY CreationTime`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.PushSubscription
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var sub model.PushSubscription
		if err := json.Unmarshal([]byte(payload), &sub); err != nil {
			continue
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Count returns the number of stored subscriptions.
func (s *SubscriptionStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Subscriptions`).Scan(&n)
	return n, err
}

package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nebula-forge-api/internal/config"
	"github.com/nebula-forge-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pending:"

func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
}

// PendingStore keeps one JSON value per email under "pending:<email>".
// Keys outlive ExpiresAt by the retention window so a late verify still
// reports "expired" rather than "not found"; Redis evicts them afterwards.
type PendingStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewPendingStore(client *redis.Client, retention time.Duration) *PendingStore {
	return &PendingStore{client: client, retention: retention}
}

func key(email string) string { return keyPrefix + email }

func (s *PendingStore) Put(ctx context.Context, p *domain.PendingRegistration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	ttl := time.Until(p.ExpiresAt) + s.retention
	if ttl < time.Second {
		ttl = time.Second
	}
	return s.client.Set(ctx, key(p.Email), b, ttl).Err()
}

func (s *PendingStore) Get(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	b, err := s.client.Get(ctx, key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decode(b)
}

// Delete removes the record only if it still carries version. WATCH makes the
// read-compare-delete atomic against concurrent writers of the same key.
func (s *PendingStore) Delete(ctx context.Context, email, version string) error {
	k := key(email)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		p, err := decode(b)
		if err != nil {
			return err
		}
		if p.Version != version {
			return fmt.Errorf("pending registration superseded: %w", domain.ErrConflict)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, k)
			return nil
		})
		return err
	}, k)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("pending registration modified concurrently: %w", domain.ErrConflict)
	}
	return err
}

// SweepExpired walks the keyspace with SCAN and removes expired records.
func (s *PendingStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		email := strings.TrimPrefix(iter.Val(), keyPrefix)
		p, err := s.Get(ctx, email)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				slog.Warn("sweep: read pending registration", "err", err)
			}
			continue
		}
		if !p.IsExpired(now) {
			continue
		}
		if err := s.Delete(ctx, email, p.Version); err == nil {
			n++
		}
	}
	return n, iter.Err()
}

func (s *PendingStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func decode(b []byte) (*domain.PendingRegistration, error) {
	var p domain.PendingRegistration
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pending registration: %w", err)
	}
	return &p, nil
}

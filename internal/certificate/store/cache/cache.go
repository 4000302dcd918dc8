// Package cache layers a Redis read-through cache over a certificate store.
// Writes go to the backing store first; cache entries are refreshed on success
// so stale reads never outlive a committed transition by more than one fetch.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"veilcredit/internal/certificate/models"
	"veilcredit/internal/certificate/service"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veilcredit_certificate_cache_hits_total",
		Help: "Certificate lookups served from Redis",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veilcredit_certificate_cache_misses_total",
		Help: "Certificate lookups that fell through to the backing store",
	})
)

const certificateKeyPrefix = "cert:id:"

// Store wraps a backing certificate store with a Redis cache. It satisfies the
// same port as the stores it wraps, so services are unaware of the layer.
type Store struct {
	backing service.Store
	client  *redis.Client
	ttl     time.Duration
}

func New(backing service.Store, client *redis.Client, ttl time.Duration) *Store {
	return &Store{backing: backing, client: client, ttl: ttl}
}

func (s *Store) Create(ctx context.Context, cert *models.Certificate) error {
	if err := s.backing.Create(ctx, cert); err != nil {
		return err
	}
	s.save(ctx, cert)
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	raw, err := s.client.Get(ctx, certificateKeyPrefix+id).Bytes()
	if err == nil {
		var cert models.Certificate
		if unmarshalErr := json.Unmarshal(raw, &cert); unmarshalErr == nil {
			cacheHits.Inc()
			return &cert, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not break reads.
		return s.backing.FindByID(ctx, id)
	}

	cacheMisses.Inc()
	cert, err := s.backing.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.save(ctx, cert)
	return cert, nil
}

// Execute delegates to the backing store and refreshes the cache with the
// committed state. Transitions never commit against a cached copy.
func (s *Store) Execute(ctx context.Context, id string, validate func(*models.Certificate) error, apply func(*models.Certificate)) (*models.Certificate, error) {
	cert, err := s.backing.Execute(ctx, id, validate, apply)
	if err != nil {
		return nil, err
	}
	s.save(ctx, cert)
	return cert, nil
}

func (s *Store) ListIDs(ctx context.Context) iter.Seq[string] {
	return s.backing.ListIDs(ctx)
}

func (s *Store) save(ctx context.Context, cert *models.Certificate) {
	raw, err := json.Marshal(cert)
	if err != nil {
		return
	}
	// Best effort; a failed write only costs a future miss.
	_ = s.client.Set(ctx, certificateKeyPrefix+cert.ID, raw, s.ttl).Err()
}

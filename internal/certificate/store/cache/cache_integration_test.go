//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veilcredit/internal/certificate/models"
	"veilcredit/internal/certificate/store"
	"veilcredit/internal/certificate/store/cache"
	"veilcredit/internal/oracle"
	"veilcredit/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backing *store.InMemory
	cached  *cache.Store
	now     time.Time
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.now = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backing = store.NewInMemory()
	s.cached = cache.New(s.backing, s.redis.Client, 5*time.Minute)
}

func (s *CacheSuite) newCertificate(id string) *models.Certificate {
	cert, err := models.NewCertificate(id, oracle.EncryptedHandle{0x01}, 1, "alice", s.now, s.now.Add(time.Hour))
	s.Require().NoError(err)
	return cert
}

func (s *CacheSuite) TestReadThrough() {
	ctx := context.Background()
	s.Require().NoError(s.backing.Create(ctx, s.newCertificate("c1")))

	// First read misses and populates; a subsequent read is served from Redis
	// even after the backing record disappears from a fresh store.
	found, err := s.cached.FindByID(ctx, "c1")
	s.Require().NoError(err)
	s.Equal("c1", found.ID)

	detached := cache.New(store.NewInMemory(), s.redis.Client, 5*time.Minute)
	cachedCopy, err := detached.FindByID(ctx, "c1")
	s.Require().NoError(err)
	s.Equal("alice", cachedCopy.Owner)
}

func (s *CacheSuite) TestExecuteRefreshesCache() {
	ctx := context.Background()
	s.Require().NoError(s.cached.Create(ctx, s.newCertificate("c1")))

	_, err := s.cached.Execute(ctx, "c1",
		func(c *models.Certificate) error { return c.CanReveal() },
		func(c *models.Certificate) { c.ApplyReveal(50) },
	)
	s.Require().NoError(err)

	found, err := s.cached.FindByID(ctx, "c1")
	s.Require().NoError(err)
	s.True(found.Revealed)
	s.Require().NotNil(found.ClearAmount)
	s.Equal(uint64(50), *found.ClearAmount)
}

func (s *CacheSuite) TestTransitionsNeverCommitAgainstCachedCopy() {
	ctx := context.Background()
	s.Require().NoError(s.cached.Create(ctx, s.newCertificate("c1")))

	// Poison the cache entry; Execute must still operate on backing state.
	s.Require().NoError(s.redis.Client.Set(ctx, "cert:id:c1", `{"id":"c1","retired":true}`, time.Minute).Err())

	updated, err := s.cached.Execute(ctx, "c1",
		func(c *models.Certificate) error { return c.CanRetire("alice", s.now) },
		func(c *models.Certificate) { c.ApplyRetirement(s.now) },
	)
	s.Require().NoError(err)
	s.True(updated.Retired)
	s.Equal("alice", updated.Owner)
}

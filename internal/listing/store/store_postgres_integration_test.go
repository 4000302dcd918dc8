//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veilcredit/internal/listing/models"
	"veilcredit/internal/listing/store"
	"veilcredit/pkg/platform/sentinel"
	"veilcredit/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.Postgres
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
	s.now = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "listings"))
}

func (s *PostgresStoreSuite) newListing(id string) *models.Listing {
	listing, err := models.NewListing(id, "forest-7", 100, 5, "alice", s.now)
	s.Require().NoError(err)
	return listing
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newListing("l1")))

	found, err := s.store.FindByID(ctx, "l1")
	s.Require().NoError(err)
	s.Equal(uint64(100), found.AvailableQuantity)
	s.Equal(uint64(5), found.PricePerUnit)
	s.True(found.Active)
}

func (s *PostgresStoreSuite) TestDuplicateInsertRejected() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newListing("l1")))
	s.ErrorIs(s.store.Create(ctx, s.newListing("l1")), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestExecutePersistsDecrement() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newListing("l1")))

	updated, err := s.store.Execute(ctx, "l1",
		func(l *models.Listing) error { return l.CanPurchase(30, 150) },
		func(l *models.Listing) { _ = l.ApplyPurchase(30, s.now) },
	)
	s.Require().NoError(err)
	s.Equal(uint64(70), updated.AvailableQuantity)

	found, err := s.store.FindByID(ctx, "l1")
	s.Require().NoError(err)
	s.Equal(uint64(70), found.AvailableQuantity)
}

func (s *PostgresStoreSuite) TestExecuteValidateFailureRollsBack() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newListing("l1")))

	_, err := s.store.Execute(ctx, "l1",
		func(l *models.Listing) error { return l.CanPurchase(30, 10) },
		func(l *models.Listing) { _ = l.ApplyPurchase(30, s.now) },
	)
	s.Require().Error(err)

	found, findErr := s.store.FindByID(ctx, "l1")
	s.Require().NoError(findErr)
	s.Equal(uint64(100), found.AvailableQuantity)
}

func (s *PostgresStoreSuite) TestListIDsOrder() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newListing("l1")))
	s.Require().NoError(s.store.Create(ctx, s.newListing("l2")))

	ids := make([]string, 0, 2)
	for id := range s.store.ListIDs(ctx) {
		ids = append(ids, id)
	}
	s.Equal([]string{"l1", "l2"}, ids)
}

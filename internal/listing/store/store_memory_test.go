package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"veilcredit/internal/listing/models"
	dErrors "veilcredit/pkg/domain-errors"
	"veilcredit/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemory
	now   time.Time
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.now = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
}

func (s *InMemorySuite) newListing(id string) *models.Listing {
	listing, err := models.NewListing(id, "forest-7", 100, 5, "alice", s.now)
	require.NoError(s.T(), err)
	return listing
}

func (s *InMemorySuite) TestCreateAndFind() {
	require.NoError(s.T(), s.store.Create(s.ctx, s.newListing("l1")))

	found, err := s.store.FindByID(s.ctx, "l1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(100), found.AvailableQuantity)
}

func (s *InMemorySuite) TestCreateDuplicateRejected() {
	require.NoError(s.T(), s.store.Create(s.ctx, s.newListing("l1")))
	assert.ErrorIs(s.T(), s.store.Create(s.ctx, s.newListing("l1")), sentinel.ErrAlreadyUsed)
}

func (s *InMemorySuite) TestFindMissing() {
	_, err := s.store.FindByID(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestFindReturnsIsolatedCopy() {
	require.NoError(s.T(), s.store.Create(s.ctx, s.newListing("l1")))

	found, err := s.store.FindByID(s.ctx, "l1")
	require.NoError(s.T(), err)
	found.AvailableQuantity = 0

	again, err := s.store.FindByID(s.ctx, "l1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(100), again.AvailableQuantity)
}

func (s *InMemorySuite) TestExecuteValidateFailureLeavesRecordUntouched() {
	require.NoError(s.T(), s.store.Create(s.ctx, s.newListing("l1")))

	_, err := s.store.Execute(s.ctx, "l1",
		func(*models.Listing) error {
			return dErrors.New(dErrors.CodeInsufficientPayment, "nope")
		},
		func(l *models.Listing) {
			l.AvailableQuantity = 0
		},
	)
	require.Error(s.T(), err)

	found, findErr := s.store.FindByID(s.ctx, "l1")
	require.NoError(s.T(), findErr)
	assert.Equal(s.T(), uint64(100), found.AvailableQuantity)
}

func (s *InMemorySuite) TestExecuteReturnsCommittedCopy() {
	require.NoError(s.T(), s.store.Create(s.ctx, s.newListing("l1")))

	updated, err := s.store.Execute(s.ctx, "l1",
		func(*models.Listing) error { return nil },
		func(l *models.Listing) { l.AvailableQuantity -= 30 },
	)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(70), updated.AvailableQuantity)

	// The returned value is a copy, not the stored record.
	updated.AvailableQuantity = 0
	found, err := s.store.FindByID(s.ctx, "l1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(70), found.AvailableQuantity)
}

func (s *InMemorySuite) TestListIDsPreservesCreationOrder() {
	want := make([]string, 0, 4)
	for i := range 4 {
		id := fmt.Sprintf("l%d", i)
		require.NoError(s.T(), s.store.Create(s.ctx, s.newListing(id)))
		want = append(want, id)
	}

	got := make([]string, 0, 4)
	for id := range s.store.ListIDs(s.ctx) {
		got = append(got, id)
	}
	assert.Equal(s.T(), want, got)
}

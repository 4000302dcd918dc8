package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPublisherRecordsAndFilters(t *testing.T) {
	pub := NewMemoryPublisher()
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, pub.Emit(ctx, New(TypeCertificateIssued, "c1", "alice", now)))
	require.NoError(t, pub.Emit(ctx, New(TypeListingCreated, "l1", "alice", now)))
	require.NoError(t, pub.Emit(ctx, New(TypeCertificateIssued, "c2", "bob", now)))

	assert.Len(t, pub.Events(), 3)

	issued := pub.OfType(TypeCertificateIssued)
	require.Len(t, issued, 2)
	assert.Equal(t, "c1", issued[0].EntityID)
	assert.Equal(t, "c2", issued[1].EntityID)
	assert.NotEqual(t, issued[0].ID, issued[1].ID)
}

func TestChannelPublisherDoesNotBlockWhenFull(t *testing.T) {
	outbox := make(chan Event, 1)
	pub := NewChannelPublisher(outbox)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, pub.Emit(ctx, New(TypeCertificateIssued, "c1", "alice", now)))

	err := pub.Emit(ctx, New(TypeCertificateIssued, "c2", "alice", now))
	assert.ErrorIs(t, err, ErrInboxFull)
}

func TestWorkerDrainsInboxIntoSink(t *testing.T) {
	sink := NewMemoryPublisher()
	inbox := make(chan Event, 8)
	worker := NewWorker(sink, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	pub := NewChannelPublisher(inbox)
	now := time.Now()
	require.NoError(t, pub.Emit(ctx, New(TypeListingPurchased, "l1", "bob", now)))
	require.NoError(t, pub.Emit(ctx, New(TypeListingPurchased, "l1", "carol", now)))

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	delivered := sink.OfType(TypeListingPurchased)
	require.Len(t, delivered, 2)
	assert.Equal(t, "bob", delivered[0].Actor)
	assert.Equal(t, "carol", delivered[1].Actor)
}

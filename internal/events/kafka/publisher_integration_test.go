//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veilcredit/internal/events"
	"veilcredit/internal/events/kafka"
	"veilcredit/pkg/testutil/containers"
)

const testTopic = "veilcredit.registry.events.test"

type PublisherSuite struct {
	suite.Suite
	redpanda  *containers.RedpandaContainer
	publisher *kafka.Publisher
}

func TestPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	publisher, err := kafka.New(ctx, s.redpanda.Brokers, testTopic)
	s.Require().NoError(err)
	s.publisher = publisher
}

func (s *PublisherSuite) TearDownSuite() {
	if s.publisher != nil {
		s.publisher.Close()
	}
}

func (s *PublisherSuite) TestEmitDeliversEvent() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	event := events.New(events.TypeListingPurchased, "l1", "bob", now)
	event.Quantity = 30

	s.Require().NoError(s.publisher.Emit(ctx, event))

	consumer := s.redpanda.NewConsumer(s.T(), testTopic)
	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("l1", string(records[0].Key))

	var got events.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(events.TypeListingPurchased, got.Type)
	s.Equal("bob", got.Actor)
	s.Equal(uint64(30), got.Quantity)
	s.Equal(event.ID, got.ID)
}

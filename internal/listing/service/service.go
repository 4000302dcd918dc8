// Package service orchestrates the market listing lifecycle and funds-safe
// purchases.
package service

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"veilcredit/internal/events"
	"veilcredit/internal/funds"
	listingmetrics "veilcredit/internal/listing/metrics"
	"veilcredit/internal/listing/models"
	dErrors "veilcredit/pkg/domain-errors"
	"veilcredit/pkg/platform/sentinel"
	"veilcredit/pkg/requestcontext"
)

// Store is the persistence port the service needs. Execute must hold the
// listing's lock across validate and apply.
type Store interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	Execute(ctx context.Context, id string, validate func(*models.Listing) error, apply func(*models.Listing)) (*models.Listing, error)
	ListIDs(ctx context.Context) iter.Seq[string]
}

// PurchaseResult reports the settled legs of a successful purchase.
type PurchaseResult struct {
	Listing *models.Listing
	Cost    uint64
	Refund  uint64
}

// Service owns listing creation, price updates, deactivation, and purchase.
type Service struct {
	store  Store
	ledger funds.Ledger

	logger    *slog.Logger
	publisher events.Publisher
	metrics   *listingmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *listingmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, ledger funds.Ledger, opts ...Option) *Service {
	s := &Service{store: store, ledger: ledger}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create opens a new listing with the given supply and unit price.
func (s *Service) Create(ctx context.Context, id, projectRef string, quantity, pricePerUnit uint64, seller string) (*models.Listing, error) {
	now := requestcontext.Now(ctx)

	listing, err := models.NewListing(id, projectRef, quantity, pricePerUnit, seller, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, listing); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "listing id already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store listing")
	}

	s.emit(ctx, events.New(events.TypeListingCreated, id, seller, now))
	if s.metrics != nil {
		s.metrics.ListingsCreated.Inc()
	}
	return listing, nil
}

// UpdatePrice changes the unit price. Seller only.
func (s *Service) UpdatePrice(ctx context.Context, id string, newPrice uint64, caller string) (*models.Listing, error) {
	now := requestcontext.Now(ctx)

	updated, err := s.store.Execute(ctx, id,
		func(l *models.Listing) error {
			return l.CanUpdatePrice(caller, newPrice)
		},
		func(l *models.Listing) {
			l.ApplyPriceUpdate(newPrice, now)
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	s.emit(ctx, events.New(events.TypeListingPriceUpdated, id, caller, now))
	return updated, nil
}

// Deactivate ends the listing's life. Seller only; final.
func (s *Service) Deactivate(ctx context.Context, id string, caller string) (*models.Listing, error) {
	now := requestcontext.Now(ctx)

	updated, err := s.store.Execute(ctx, id,
		func(l *models.Listing) error {
			return l.CanDeactivate(caller)
		},
		func(l *models.Listing) {
			l.ApplyDeactivation(now)
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	s.emit(ctx, events.New(events.TypeListingDeactivated, id, caller, now))
	return updated, nil
}

// Purchase buys quantity units with an escrowed payment. The quantity check,
// the decrement, and the two settlement credits all happen inside the
// listing's Execute, so no other operation on the same listing can observe a
// partially applied purchase and the available quantity can never go negative.
func (s *Service) Purchase(ctx context.Context, id string, quantity, payment uint64, buyer string) (*PurchaseResult, error) {
	now := requestcontext.Now(ctx)

	var (
		cost     uint64
		refund   uint64
		seller   string
		applyErr error
	)
	updated, err := s.store.Execute(ctx, id,
		func(l *models.Listing) error {
			if buyer == "" {
				return dErrors.New(dErrors.CodeInvalidInput, "buyer identity is required")
			}
			return l.CanPurchase(quantity, payment)
		},
		func(l *models.Listing) {
			if applyErr = l.ApplyPurchase(quantity, now); applyErr != nil {
				return
			}
			cost = l.Cost(quantity)
			refund = payment - cost
			seller = l.Seller
			// Settlement is part of the commit: escrow moves to the seller,
			// the remainder returns to the buyer.
			if applyErr = s.ledger.Credit(ctx, seller, cost); applyErr != nil {
				return
			}
			if refund > 0 {
				applyErr = s.ledger.Credit(ctx, buyer, refund)
			}
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if applyErr != nil {
		// Reached only if a supposedly-validated decrement or settlement leg
		// failed; surface it instead of clamping or half-committing.
		return nil, dErrors.Wrap(applyErr, dErrors.CodeInternal, "purchase settlement failed")
	}

	event := events.New(events.TypeListingPurchased, id, buyer, now)
	event.Quantity = quantity
	s.emit(ctx, event)
	if s.metrics != nil {
		s.metrics.Purchases.Inc()
		s.metrics.UnitsSold.Add(float64(quantity))
		s.metrics.PaymentVolume.Add(float64(cost))
	}
	return &PurchaseResult{Listing: updated, Cost: cost, Refund: refund}, nil
}

// Get returns the full listing record.
func (s *Service) Get(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return listing, nil
}

// ListIDs yields all listing ids in creation order.
func (s *Service) ListIDs(ctx context.Context) iter.Seq[string] {
	return s.store.ListIDs(ctx)
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit event",
			"type", string(event.Type),
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "listing not found")
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load listing")
}

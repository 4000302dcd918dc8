// Package service orchestrates the certificate lifecycle: proof-gated issuance,
// retirement, and the decryption verification protocol. It keeps orchestration
// out of handlers and domain logic thin.
package service

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	certmetrics "veilcredit/internal/certificate/metrics"
	"veilcredit/internal/certificate/models"
	"veilcredit/internal/events"
	"veilcredit/internal/oracle"
	dErrors "veilcredit/pkg/domain-errors"
	"veilcredit/pkg/platform/sentinel"
	"veilcredit/pkg/requestcontext"
)

// Store is the persistence port the service needs. Execute must hold the
// certificate's lock across validate and apply.
type Store interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	Execute(ctx context.Context, id string, validate func(*models.Certificate) error, apply func(*models.Certificate)) (*models.Certificate, error)
	ListIDs(ctx context.Context) iter.Seq[string]
}

// Service owns issuance, retirement, and reveal. External verifier calls are
// never made while an entity lock is held: the flow is read, verify, then
// Execute with preconditions re-checked before commit.
type Service struct {
	store     Store
	verifier  oracle.Verifier
	registrar oracle.Registrar

	logger    *slog.Logger
	publisher events.Publisher
	metrics   *certmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *certmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, verifier oracle.Verifier, registrar oracle.Registrar, opts ...Option) *Service {
	s := &Service{store: store, verifier: verifier, registrar: registrar}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Issue admits an encrypted amount into the registry. The admission proof is
// checked by the external verifier and the handle is registered for the reveal
// protocol before the record becomes visible.
func (s *Service) Issue(ctx context.Context, id string, handle oracle.EncryptedHandle, proof oracle.AdmissionProof, publicIdentifier uint64, expiresAt time.Time, issuer string) (*models.Certificate, error) {
	now := requestcontext.Now(ctx)

	cert, err := models.NewCertificate(id, handle, publicIdentifier, issuer, now, expiresAt)
	if err != nil {
		return nil, err
	}

	// Cheap duplicate pre-check; Create below is the authoritative one.
	if _, err := s.store.FindByID(ctx, id); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "certificate id already exists")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check certificate id")
	}

	ok, err := s.verifyCiphertext(ctx, handle, proof)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid encrypted input: admission proof rejected")
	}

	// Register the handle so the decryption service will serve reveal requests
	// for it later. Registering before Create keeps a failed registration from
	// producing an unrevealable certificate; the reverse leaves only an unused
	// registration behind if Create loses a duplicate race.
	if err := s.registrar.AllowPublicDecryption(ctx, handle); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register handle for public decryption")
	}

	if err := s.store.Create(ctx, cert); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "certificate id already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store certificate")
	}

	s.emit(ctx, events.New(events.TypeCertificateIssued, cert.ID, issuer, now))
	if s.metrics != nil {
		s.metrics.Issued.Inc()
	}
	return cert, nil
}

// Retire closes a certificate's active life. The caller must prove it can
// decrypt the stored handle; that coupling is a deliberate authorization gate,
// separate from the reveal protocol.
func (s *Service) Retire(ctx context.Context, id string, clear oracle.ClearValueEncoding, proof oracle.DecryptionProof, caller string) (*models.Certificate, error) {
	now := requestcontext.Now(ctx)

	cert, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "certificate")
	}
	// Fail fast before paying for verification; re-checked under the lock below.
	if err := cert.CanRetire(caller, now); err != nil {
		return nil, err
	}

	ok, err := s.verifyDecryption(ctx, cert.EncryptedAmount, clear, proof)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidProof, "decryption proof rejected for retirement")
	}

	// State may have changed while the verifier call was in flight.
	retired, err := s.store.Execute(ctx, id,
		func(c *models.Certificate) error {
			return c.CanRetire(caller, now)
		},
		func(c *models.Certificate) {
			c.ApplyRetirement(now)
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err, "certificate")
	}

	s.emit(ctx, events.New(events.TypeCertificateRetired, id, caller, now))
	if s.metrics != nil {
		s.metrics.Retired.Inc()
	}
	return retired, nil
}

// Reveal runs the decryption verification protocol: Hidden → Revealed, terminal.
// A certificate already revealed short-circuits to the stored amount without
// recontacting the verifier.
func (s *Service) Reveal(ctx context.Context, id string, clear oracle.ClearValueEncoding, proof oracle.DecryptionProof) (uint64, error) {
	now := requestcontext.Now(ctx)

	cert, err := s.store.FindByID(ctx, id)
	if err != nil {
		return 0, wrapStoreErr(err, "certificate")
	}
	if cert.Revealed {
		return *cert.ClearAmount, nil
	}

	ok, err := s.verifyDecryption(ctx, cert.EncryptedAmount, clear, proof)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, dErrors.New(dErrors.CodeInvalidProof, "decryption proof does not match stored handle")
	}

	amount, err := oracle.DecodeAmount(clear)
	if err != nil {
		return 0, err
	}

	// A concurrent reveal may have won while the verifier call was in flight.
	// Both proofs bind the same handle, so the stored amount is authoritative
	// either way; only the winner emits the event.
	applied := false
	revealed, err := s.store.Execute(ctx, id,
		func(*models.Certificate) error { return nil },
		func(c *models.Certificate) {
			if c.Revealed {
				return
			}
			c.ApplyReveal(amount)
			applied = true
		},
	)
	if err != nil {
		return 0, wrapStoreErr(err, "certificate")
	}

	if applied {
		s.emit(ctx, events.New(events.TypeCertificateRevealed, id, cert.Owner, now))
		if s.metrics != nil {
			s.metrics.Revealed.Inc()
		}
	}
	return *revealed.ClearAmount, nil
}

// Get returns the full certificate record, encrypted handle included.
func (s *Service) Get(ctx context.Context, id string) (*models.Certificate, error) {
	cert, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "certificate")
	}
	return cert, nil
}

// ListIDs yields all certificate ids in issuance order.
func (s *Service) ListIDs(ctx context.Context) iter.Seq[string] {
	return s.store.ListIDs(ctx)
}

func (s *Service) verifyCiphertext(ctx context.Context, handle oracle.EncryptedHandle, proof oracle.AdmissionProof) (bool, error) {
	start := time.Now()
	ok, err := s.verifier.VerifyCiphertext(ctx, handle, proof)
	s.observeVerifier(start, ok, err)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "proof verifier unavailable")
	}
	return ok, nil
}

func (s *Service) verifyDecryption(ctx context.Context, handle oracle.EncryptedHandle, clear oracle.ClearValueEncoding, proof oracle.DecryptionProof) (bool, error) {
	start := time.Now()
	ok, err := s.verifier.VerifyDecryption(ctx, handle, clear, proof)
	s.observeVerifier(start, ok, err)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "proof verifier unavailable")
	}
	return ok, nil
}

func (s *Service) observeVerifier(start time.Time, ok bool, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveVerifier(start)
	if err == nil && !ok {
		s.metrics.ProofRejections.Inc()
	}
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

func wrapStoreErr(err error, entity string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+entity)
}

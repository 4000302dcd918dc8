package oracle

import (
	"context"
	"log/slog"

	"veilcredit/pkg/platform/circuit"
	"veilcredit/pkg/platform/sentinel"
)

// BreakerVerifier guards a Verifier with a circuit breaker. Transport errors
// trip it; proof rejections are verdicts, not failures, and leave it alone.
// While open, calls fail fast with sentinel.ErrUnavailable instead of paying
// the timeout on a dead verifier.
type BreakerVerifier struct {
	inner   Verifier
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakerVerifier(inner Verifier, logger *slog.Logger, opts ...circuit.Option) *BreakerVerifier {
	if len(opts) == 0 {
		opts = []circuit.Option{
			circuit.WithFailureThreshold(5),
			circuit.WithSuccessThreshold(2),
		}
	}
	return &BreakerVerifier{
		inner:   inner,
		breaker: circuit.New("proof-verifier", opts...),
		logger:  logger,
	}
}

func (v *BreakerVerifier) VerifyCiphertext(ctx context.Context, handle EncryptedHandle, proof AdmissionProof) (bool, error) {
	if v.breaker.IsOpen() {
		return false, sentinel.ErrUnavailable
	}
	ok, err := v.inner.VerifyCiphertext(ctx, handle, proof)
	v.record(ctx, err)
	return ok, err
}

func (v *BreakerVerifier) VerifyDecryption(ctx context.Context, handle EncryptedHandle, clear ClearValueEncoding, proof DecryptionProof) (bool, error) {
	if v.breaker.IsOpen() {
		return false, sentinel.ErrUnavailable
	}
	ok, err := v.inner.VerifyDecryption(ctx, handle, clear, proof)
	v.record(ctx, err)
	return ok, err
}

func (v *BreakerVerifier) record(ctx context.Context, err error) {
	if err != nil {
		_, change := v.breaker.RecordFailure()
		if change.Opened && v.logger != nil {
			v.logger.WarnContext(ctx, "circuit breaker opened",
				"breaker", v.breaker.Name(),
				"error", err,
			)
		}
		return
	}
	_, change := v.breaker.RecordSuccess()
	if change.Closed && v.logger != nil {
		v.logger.InfoContext(ctx, "circuit breaker closed",
			"breaker", v.breaker.Name(),
		)
	}
}

// Package registry is the single entry point composing the certificate store,
// the market listing store, and the decryption verification protocol. External
// clients (HTTP transport, tooling) talk only to this façade.
package registry

import (
	"context"
	"iter"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	certmodels "veilcredit/internal/certificate/models"
	certservice "veilcredit/internal/certificate/service"
	listingmodels "veilcredit/internal/listing/models"
	listingservice "veilcredit/internal/listing/service"
	"veilcredit/internal/oracle"
)

const tracerName = "veilcredit/internal/registry"

// Registry composes the two domain services. It owns no state of its own; it
// adds tracing and a stable operation surface.
type Registry struct {
	certificates *certservice.Service
	listings     *listingservice.Service
	tracer       trace.Tracer
}

func New(certificates *certservice.Service, listings *listingservice.Service) *Registry {
	return &Registry{
		certificates: certificates,
		listings:     listings,
		tracer:       otel.Tracer(tracerName),
	}
}

// IssueCertificate admits an encrypted amount under a fresh certificate id.
func (r *Registry) IssueCertificate(ctx context.Context, id string, handle oracle.EncryptedHandle, proof oracle.AdmissionProof, publicIdentifier uint64, expiresAt time.Time, issuer string) (*certmodels.Certificate, error) {
	ctx, span := r.startSpan(ctx, "IssueCertificate", id)
	defer span.End()

	cert, err := r.certificates.Issue(ctx, id, handle, proof, publicIdentifier, expiresAt, issuer)
	return cert, r.finish(span, err)
}

// RetireCertificate closes a certificate, gated on a valid decryption proof.
func (r *Registry) RetireCertificate(ctx context.Context, id string, clear oracle.ClearValueEncoding, proof oracle.DecryptionProof, caller string) (*certmodels.Certificate, error) {
	ctx, span := r.startSpan(ctx, "RetireCertificate", id)
	defer span.End()

	cert, err := r.certificates.Retire(ctx, id, clear, proof, caller)
	return cert, r.finish(span, err)
}

// RevealCertificate runs the decryption verification protocol and returns the
// clear amount.
func (r *Registry) RevealCertificate(ctx context.Context, id string, clear oracle.ClearValueEncoding, proof oracle.DecryptionProof) (uint64, error) {
	ctx, span := r.startSpan(ctx, "RevealCertificate", id)
	defer span.End()

	amount, err := r.certificates.Reveal(ctx, id, clear, proof)
	return amount, r.finish(span, err)
}

// GetCertificate returns the full certificate record.
func (r *Registry) GetCertificate(ctx context.Context, id string) (*certmodels.Certificate, error) {
	ctx, span := r.startSpan(ctx, "GetCertificate", id)
	defer span.End()

	cert, err := r.certificates.Get(ctx, id)
	return cert, r.finish(span, err)
}

// ListCertificateIDs yields all certificate ids in issuance order.
func (r *Registry) ListCertificateIDs(ctx context.Context) iter.Seq[string] {
	return r.certificates.ListIDs(ctx)
}

// CreateListing opens a new market listing.
func (r *Registry) CreateListing(ctx context.Context, id, projectRef string, quantity, pricePerUnit uint64, seller string) (*listingmodels.Listing, error) {
	ctx, span := r.startSpan(ctx, "CreateListing", id)
	defer span.End()

	listing, err := r.listings.Create(ctx, id, projectRef, quantity, pricePerUnit, seller)
	return listing, r.finish(span, err)
}

// UpdateListingPrice changes a listing's unit price. Seller only.
func (r *Registry) UpdateListingPrice(ctx context.Context, id string, newPrice uint64, caller string) (*listingmodels.Listing, error) {
	ctx, span := r.startSpan(ctx, "UpdateListingPrice", id)
	defer span.End()

	listing, err := r.listings.UpdatePrice(ctx, id, newPrice, caller)
	return listing, r.finish(span, err)
}

// DeactivateListing permanently ends a listing. Seller only.
func (r *Registry) DeactivateListing(ctx context.Context, id string, caller string) (*listingmodels.Listing, error) {
	ctx, span := r.startSpan(ctx, "DeactivateListing", id)
	defer span.End()

	listing, err := r.listings.Deactivate(ctx, id, caller)
	return listing, r.finish(span, err)
}

// Purchase buys units from a listing with an escrowed payment.
func (r *Registry) Purchase(ctx context.Context, id string, quantity, payment uint64, buyer string) (*listingservice.PurchaseResult, error) {
	ctx, span := r.startSpan(ctx, "Purchase", id)
	defer span.End()

	result, err := r.listings.Purchase(ctx, id, quantity, payment, buyer)
	return result, r.finish(span, err)
}

// GetListing returns the full listing record.
func (r *Registry) GetListing(ctx context.Context, id string) (*listingmodels.Listing, error) {
	ctx, span := r.startSpan(ctx, "GetListing", id)
	defer span.End()

	listing, err := r.listings.Get(ctx, id)
	return listing, r.finish(span, err)
}

// ListListingIDs yields all listing ids in creation order.
func (r *Registry) ListListingIDs(ctx context.Context) iter.Seq[string] {
	return r.listings.ListIDs(ctx)
}

func (r *Registry) startSpan(ctx context.Context, operation, entityID string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "registry."+operation,
		trace.WithAttributes(attribute.String("registry.entity_id", entityID)),
	)
}

func (r *Registry) finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

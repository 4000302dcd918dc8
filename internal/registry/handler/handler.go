// Package handler exposes the registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	certmodels "veilcredit/internal/certificate/models"
	listingmodels "veilcredit/internal/listing/models"
	listingservice "veilcredit/internal/listing/service"
	"veilcredit/internal/oracle"
	"veilcredit/internal/platform/middleware"
	dErrors "veilcredit/pkg/domain-errors"
	"veilcredit/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks

// Service defines the registry operations the transport needs.
type Service interface {
	IssueCertificate(ctx context.Context, id string, handle oracle.EncryptedHandle, proof oracle.AdmissionProof, publicIdentifier uint64, expiresAt time.Time, issuer string) (*certmodels.Certificate, error)
	RetireCertificate(ctx context.Context, id string, clear oracle.ClearValueEncoding, proof oracle.DecryptionProof, caller string) (*certmodels.Certificate, error)
	RevealCertificate(ctx context.Context, id string, clear oracle.ClearValueEncoding, proof oracle.DecryptionProof) (uint64, error)
	GetCertificate(ctx context.Context, id string) (*certmodels.Certificate, error)
	ListCertificateIDs(ctx context.Context) iter.Seq[string]

	CreateListing(ctx context.Context, id, projectRef string, quantity, pricePerUnit uint64, seller string) (*listingmodels.Listing, error)
	UpdateListingPrice(ctx context.Context, id string, newPrice uint64, caller string) (*listingmodels.Listing, error)
	DeactivateListing(ctx context.Context, id string, caller string) (*listingmodels.Listing, error)
	Purchase(ctx context.Context, id string, quantity, payment uint64, buyer string) (*listingservice.PurchaseResult, error)
	GetListing(ctx context.Context, id string) (*listingmodels.Listing, error)
	ListListingIDs(ctx context.Context) iter.Seq[string]
}

// Handler handles registry endpoints.
type Handler struct {
	registry  Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func New(registry Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{registry: registry, logger: logger, validator: validator}
}

// Register mounts the registry routes with the full middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.RequireAuth(h.validator, h.logger))

	router.Post("/certificates", h.handleIssueCertificate)
	router.Get("/certificates", h.handleListCertificates)
	router.Get("/certificates/{id}", h.handleGetCertificate)
	router.Post("/certificates/{id}/retire", h.handleRetireCertificate)
	router.Post("/certificates/{id}/reveal", h.handleRevealCertificate)

	router.Post("/listings", h.handleCreateListing)
	router.Get("/listings", h.handleListListings)
	router.Get("/listings/{id}", h.handleGetListing)
	router.Post("/listings/{id}/price", h.handleUpdateListingPrice)
	router.Post("/listings/{id}/deactivate", h.handleDeactivateListing)
	router.Post("/listings/{id}/purchase", h.handlePurchase)

	r.Mount("/", router)
}

func (h *Handler) handleIssueCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	handle, proof, err := req.decode()
	if err != nil {
		WriteError(w, err)
		return
	}

	cert, err := h.registry.IssueCertificate(ctx, req.ID, handle, proof, req.PublicIdentifier, req.ExpiresAt, requestcontext.Caller(ctx))
	if err != nil {
		h.logError(ctx, "issue certificate failed", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, newCertificateResponse(cert))
}

func (h *Handler) handleGetCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := h.registry.GetCertificate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newCertificateResponse(cert))
}

func (h *Handler) handleListCertificates(w http.ResponseWriter, r *http.Request) {
	ids := make([]string, 0)
	for id := range h.registry.ListCertificateIDs(r.Context()) {
		ids = append(ids, id)
	}
	WriteJSON(w, http.StatusOK, listIDsResponse{IDs: ids})
}

func (h *Handler) handleRetireCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req decryptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	clear, proof, err := req.decode()
	if err != nil {
		WriteError(w, err)
		return
	}

	cert, err := h.registry.RetireCertificate(ctx, chi.URLParam(r, "id"), clear, proof, requestcontext.Caller(ctx))
	if err != nil {
		h.logError(ctx, "retire certificate failed", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newCertificateResponse(cert))
}

func (h *Handler) handleRevealCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req decryptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	clear, proof, err := req.decode()
	if err != nil {
		WriteError(w, err)
		return
	}

	amount, err := h.registry.RevealCertificate(ctx, chi.URLParam(r, "id"), clear, proof)
	if err != nil {
		h.logError(ctx, "reveal certificate failed", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, revealResponse{ID: chi.URLParam(r, "id"), ClearAmount: amount})
}

func (h *Handler) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	listing, err := h.registry.CreateListing(ctx, req.ID, req.ProjectRef, req.Quantity, req.PricePerUnit, requestcontext.Caller(ctx))
	if err != nil {
		h.logError(ctx, "create listing failed", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, newListingResponse(listing))
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.registry.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newListingResponse(listing))
}

func (h *Handler) handleListListings(w http.ResponseWriter, r *http.Request) {
	ids := make([]string, 0)
	for id := range h.registry.ListListingIDs(r.Context()) {
		ids = append(ids, id)
	}
	WriteJSON(w, http.StatusOK, listIDsResponse{IDs: ids})
}

func (h *Handler) handleUpdateListingPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	listing, err := h.registry.UpdateListingPrice(ctx, chi.URLParam(r, "id"), req.NewPrice, requestcontext.Caller(ctx))
	if err != nil {
		h.logError(ctx, "update listing price failed", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newListingResponse(listing))
}

func (h *Handler) handleDeactivateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listing, err := h.registry.DeactivateListing(ctx, chi.URLParam(r, "id"), requestcontext.Caller(ctx))
	if err != nil {
		h.logError(ctx, "deactivate listing failed", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newListingResponse(listing))
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.registry.Purchase(ctx, chi.URLParam(r, "id"), req.Quantity, req.Payment, requestcontext.Caller(ctx))
	if err != nil {
		h.logError(ctx, "purchase failed", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newPurchaseResponse(result))
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}

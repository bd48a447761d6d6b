// Package gateway exposes the claim and accrual engines over HTTP. It is the
// trust boundary where relayed caller identity is resolved before the engines
// are invoked with explicit parameters.
package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ashforge/native/claims"
	"ashforge/native/common"
	"ashforge/native/ember"
	"ashforge/observability"
)

// Server wires the engines behind the HTTP surface.
type Server struct {
	log     *slog.Logger
	claims  *claims.Engine
	ember   *ember.Engine
	auth    *common.Authority
	pauser  *common.Pauser
	metrics *observability.ClaimMetrics
	now     func() uint64
}

// New creates a gateway server. The now function defaults to wall-clock unix
// seconds and is injectable for tests.
func New(log *slog.Logger, claimEngine *claims.Engine, emberEngine *ember.Engine, auth *common.Authority, pauser *common.Pauser) *Server {
	return &Server{
		log:     log,
		claims:  claimEngine,
		ember:   emberEngine,
		auth:    auth,
		pauser:  pauser,
		metrics: observability.Metrics(),
		now:     func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetNow overrides the clock source.
func (s *Server) SetNow(now func() uint64) {
	if now != nil {
		s.now = now
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/claims", s.handleClaim)
		r.Post("/claims/stake", s.handleClaimAndStake)
		r.Post("/claims/check", s.handleCanClaim)
		r.Post("/claims/bits", s.handleClaimBits)
		r.Get("/claims/bits/{recipient}", s.handleClaimableBits)
		r.Get("/claims/supply", s.handleSupply)

		r.Post("/ember/unlock", s.handleUnlock)
		r.Post("/ember/credential", s.handleCredential)
		r.Post("/ember/deposit", s.handleDeposit)
		r.Get("/ember/multiplier/{principal}", s.handleMultiplier)
		r.Get("/ember/ash", s.handleAsh)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/window", s.handleSetWindow)
			r.Post("/wallet", s.handleSetWallet)
			r.Post("/categories", s.handleSetCategories)
			r.Post("/root/{module}", s.handleSetRoot)
			r.Post("/weight", s.handleSetWeight)
			r.Post("/pause", s.handleSetPause)
			r.Post("/authority/transfer", s.handleTransferAuthority)
			r.Post("/authority/renounce", s.handleRenounceAuthority)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			slog.String("id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses so
// off-chain callers can distinguish retry-later from abandon.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errMissingCaller),
		errors.Is(err, claims.ErrInvalidAmount),
		errors.Is(err, claims.ErrZeroRoot),
		errors.Is(err, claims.ErrInvalidWindow),
		errors.Is(err, claims.ErrWindowExpired),
		errors.Is(err, claims.ErrZeroMask),
		errors.Is(err, claims.ErrMaskOutOfRange),
		errors.Is(err, claims.ErrZeroWallet),
		errors.Is(err, claims.ErrZeroCategories),
		errors.Is(err, claims.ErrTooManyCategories),
		errors.Is(err, common.ErrZeroHolder),
		errors.Is(err, ember.ErrZeroUnlockValue),
		errors.Is(err, ember.ErrValueTooWide),
		errors.Is(err, ember.ErrZeroRoot),
		errors.Is(err, ember.ErrLengthMismatch),
		errors.Is(err, ember.ErrEmptyBatch),
		errors.Is(err, ember.ErrInvalidQuantity),
		errors.Is(err, ember.ErrInvalidWeight),
		errors.Is(err, ember.ErrInvalidTokenID),
		errors.Is(err, ember.ErrInvalidPayload),
		errors.Is(err, ember.ErrWrongCredential):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrAuthorityRenounced),
		errors.Is(err, common.ErrAuthorityUnset),
		errors.Is(err, ember.ErrUnexpectedSource):
		status = http.StatusForbidden
	case errors.Is(err, claims.ErrWindowNotFound),
		errors.Is(err, ember.ErrWeightUnset):
		status = http.StatusNotFound
	case errors.Is(err, claims.ErrWindowNotOpen),
		errors.Is(err, claims.ErrWindowClosed),
		errors.Is(err, ember.ErrAccrualNotStarted),
		errors.Is(err, ember.ErrAccrualEnded),
		errors.Is(err, common.ErrModulePaused):
		status = http.StatusConflict
	case errors.Is(err, claims.ErrAlreadyClaimed),
		errors.Is(err, claims.ErrBitsOverlap),
		errors.Is(err, claims.ErrWindowExists),
		errors.Is(err, claims.ErrRootExists),
		errors.Is(err, claims.ErrBitCategoriesExist),
		errors.Is(err, ember.ErrNumeratorUnlocked),
		errors.Is(err, ember.ErrQuantityUnlocked),
		errors.Is(err, ember.ErrProofLeafConsumed),
		errors.Is(err, ember.ErrWeightExists):
		status = http.StatusConflict
	case errors.Is(err, claims.ErrInvalidProof),
		errors.Is(err, ember.ErrInvalidProof):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, claims.ErrSupplyExceeded):
		status = http.StatusConflict
	case errors.Is(err, claims.ErrPayoutFailed),
		errors.Is(err, claims.ErrMintFailed),
		errors.Is(err, ember.ErrBurnFailed):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

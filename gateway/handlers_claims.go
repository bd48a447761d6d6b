package gateway

import (
	"encoding/hex"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ashforge/native/claims"
)

func (s *Server) decodeClaim(r *http.Request) (claims.Request, error) {
	var payload claimPayload
	if err := decodeJSON(r, &payload); err != nil {
		return claims.Request{}, err
	}
	recipient, err := parseAddress(payload.Recipient)
	if err != nil {
		return claims.Request{}, err
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		return claims.Request{}, err
	}
	proof, err := payload.Proof.decode()
	if err != nil {
		return claims.Request{}, err
	}
	return claims.Request{
		EpochID:   payload.EpochID,
		Recipient: recipient,
		Amount:    amount,
		Proof:     proof,
	}, nil
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	s.runClaim(w, r, "window", func(req claims.Request, now uint64) (*claims.Receipt, error) {
		return s.claims.Claim(req, now)
	})
}

func (s *Server) handleClaimAndStake(w http.ResponseWriter, r *http.Request) {
	s.runClaim(w, r, "stake", func(req claims.Request, now uint64) (*claims.Receipt, error) {
		return s.claims.ClaimAndStake(req, now)
	})
}

func (s *Server) runClaim(w http.ResponseWriter, r *http.Request, variant string, run func(claims.Request, uint64) (*claims.Receipt, error)) {
	start := time.Now()
	req, err := s.decodeClaim(r)
	if err != nil {
		s.metrics.Claims.WithLabelValues(variant, "malformed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	receipt, err := run(req, s.now())
	s.metrics.Latency.WithLabelValues(variant).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Claims.WithLabelValues(variant, "rejected").Inc()
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Claims.WithLabelValues(variant, "paid").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"leaf":   "0x" + hex.EncodeToString(receipt.Leaf[:]),
		"amount": receipt.Amount.String(),
		"supply": receipt.NewSupply.String(),
	})
}

func (s *Server) handleCanClaim(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeClaim(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	status := s.claims.CanClaim(req, s.now())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status.String(),
		"claimable": status.Claimable(),
	})
}

func (s *Server) handleClaimBits(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var payload bitClaimPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	recipient, err := parseAddress(payload.Recipient)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	mask, err := parseAmount(payload.Mask)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	proof, err := payload.Proof.decode()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	receipt, err := s.claims.ClaimBits(recipient, mask, proof, s.now())
	s.metrics.Latency.WithLabelValues("bits").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Claims.WithLabelValues("bits", "rejected").Inc()
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Claims.WithLabelValues("bits", "paid").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"leaf":   "0x" + hex.EncodeToString(receipt.Leaf[:]),
		"amount": receipt.Amount.String(),
		"supply": receipt.NewSupply.String(),
	})
}

func (s *Server) handleClaimableBits(w http.ResponseWriter, r *http.Request) {
	recipient, err := parseAddress(chi.URLParam(r, "recipient"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	claimable, err := s.claims.ClaimableBits(recipient)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"claimable": claimable.String()})
}

func (s *Server) handleSupply(w http.ResponseWriter, _ *http.Request) {
	supply, err := s.claims.MintedSupply()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"minted": supply.String()})
}

package gateway

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var payload unlockPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	principal, err := parseAddress(payload.Principal)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	numerator, err := parseAmount(payload.Numerator)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	proof, err := payload.Proof.decode()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.ember.UnlockByProof(principal, numerator, proof); err != nil {
		s.metrics.Ash.WithLabelValues("unlock", "rejected").Inc()
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Ash.WithLabelValues("unlock", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "unlocked"})
}

func (s *Server) handleCredential(w http.ResponseWriter, r *http.Request) {
	var payload credentialPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	token, err := parseAddress(payload.Token)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	from, err := parseAddress(payload.From)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tokenID, err := parseAmount(payload.TokenID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var raw []byte
	if trimmed := strings.TrimPrefix(strings.TrimSpace(payload.Payload), "0x"); trimmed != "" {
		raw, err = hex.DecodeString(trimmed)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if err := s.ember.OnCredentialDeposit(token, from, tokenID, amount, raw); err != nil {
		s.metrics.Ash.WithLabelValues("credential", "rejected").Inc()
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Ash.WithLabelValues("credential", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "unlocked"})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	var payload depositPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	principal, err := parseAddress(payload.Principal)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ids, err := parseAmountList(payload.IDs)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	quantities, err := parseAmountList(payload.Quantities)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	finalAsh, err := s.ember.DepositAsh(caller, principal, ids, quantities, s.now())
	if err != nil {
		s.metrics.Ash.WithLabelValues("deposit", "rejected").Inc()
		s.writeEngineError(w, err)
		return
	}
	s.metrics.Ash.WithLabelValues("deposit", "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"finalAsh": finalAsh.String()})
}

func (s *Server) handleMultiplier(w http.ResponseWriter, r *http.Request) {
	principal, err := parseAddress(chi.URLParam(r, "principal"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	numerator, quantity, err := s.ember.Read(principal)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"numerator":          numerator.String(),
		"quantityMultiplier": quantity.String(),
	})
}

func (s *Server) handleAsh(w http.ResponseWriter, r *http.Request) {
	cycle, err := strconv.ParseUint(r.URL.Query().Get("cycle"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cycle"})
		return
	}
	total, err := s.ember.TotalAshAt(cycle)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	resp := map[string]string{"total": total.String()}
	if raw := r.URL.Query().Get("principal"); raw != "" {
		principal, err := parseAddress(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		user, err := s.ember.UserAshAt(cycle, principal)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		resp["user"] = user.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

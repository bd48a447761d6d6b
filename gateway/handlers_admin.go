package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Administrative handlers resolve the effective caller and pass it straight
// into the engines; the capability check itself lives behind the engines'
// single authority gate.

func (s *Server) handleSetWindow(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	var payload windowPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	root, err := parseHash(payload.Root)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.claims.SetWindow(caller, payload.EpochID, root, payload.Start, payload.End, s.now()); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleSetWallet(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	var payload struct {
		Wallet string `json:"wallet"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	wallet, err := parseAddress(payload.Wallet)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.claims.SetPayoutWallet(caller, wallet); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleSetCategories(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	var payload struct {
		Count uint64 `json:"count"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.claims.SetBitCategories(caller, payload.Count); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleSetRoot(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	var payload struct {
		Root string `json:"root"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	root, err := parseHash(payload.Root)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var setErr error
	switch chi.URLParam(r, "module") {
	case "claims":
		setErr = s.claims.SetProgramRoot(caller, root)
	case "ember":
		setErr = s.ember.SetProgramRoot(caller, root)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown module"})
		return
	}
	if setErr != nil {
		s.writeEngineError(w, setErr)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleSetWeight(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	var payload weightPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tokenID, err := parseAmount(payload.TokenID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	weight, err := parseAmount(payload.Weight)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.ember.SetTokenWeight(caller, tokenID, weight); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleTransferAuthority(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	var payload struct {
		Holder string `json:"holder"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	holder, err := parseAddress(payload.Holder)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.auth.Transfer(caller, holder); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func (s *Server) handleRenounceAuthority(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if err := s.auth.Renounce(caller); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "renounced"})
}

func (s *Server) handleSetPause(w http.ResponseWriter, r *http.Request) {
	caller, err := effectiveCaller(r)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	var payload pausePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.pauser.SetPaused(caller, payload.Module, payload.Paused); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

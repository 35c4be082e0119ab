package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/gorilla/mux"
)

const (
	msgUsernameTaken      = "Username already taken!"
	msgEmailTaken         = "Email already in use!"
	msgInvalidCredentials = "Invalid username or password!"
	msgInvalidBody        = "Invalid request body"
	msgInvalidItemID      = "Invalid item id"
	msgNotFound           = "Not found"
	msgInternal           = "Internal server error"

	healthCheckTimeout = 2 * time.Second
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, authFailure(msgInvalidBody))
		return
	}

	res, err := s.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var ve *common.ValidationError
		switch {
		case errors.Is(err, common.ErrUsernameTaken):
			writeJSON(w, http.StatusBadRequest, authFailure(msgUsernameTaken))
		case errors.Is(err, common.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, authFailure(msgEmailTaken))
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, authFailure(ve.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, authFailure(msgInternal))
		}
		return
	}

	writeJSON(w, http.StatusCreated, authSuccess(res))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, authFailure(msgInvalidBody))
		return
	}

	res, err := s.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, authFailure(msgInvalidCredentials))
			return
		}
		writeJSON(w, http.StatusInternalServerError, authFailure(msgInternal))
		return
	}

	writeJSON(w, http.StatusOK, authSuccess(res))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	callerID, _ := callerIDFromContext(r.Context())

	if err := s.accounts.Delete(r.Context(), callerID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	callerID, _ := callerIDFromContext(r.Context())

	items, err := s.items.List(r.Context(), callerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemDTOs(items))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	callerID, _ := callerIDFromContext(r.Context())
	itemID, ok := itemIDFromPath(w, r)
	if !ok {
		return
	}

	item, err := s.items.Get(r.Context(), itemID, callerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemDTO(item))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	callerID, _ := callerIDFromContext(r.Context())

	var payload itemDTO
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	item, err := payload.toModel()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	created, err := s.items.Create(r.Context(), item, callerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newItemDTO(created))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	callerID, _ := callerIDFromContext(r.Context())
	itemID, ok := itemIDFromPath(w, r)
	if !ok {
		return
	}

	var payload itemDTO
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	item, err := payload.toModel()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	updated, err := s.items.Update(r.Context(), itemID, item, callerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemDTO(updated))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	callerID, _ := callerIDFromContext(r.Context())
	itemID, ok := itemIDFromPath(w, r)
	if !ok {
		return
	}

	deleted, err := s.items.Delete(r.Context(), itemID, callerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	callerID, _ := callerIDFromContext(r.Context())

	rec, err := s.recommendations.GetRecommendation(r.Context(), callerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationResponse{
		Recommendation: rec.Text,
		GeneratedAt:    rec.GeneratedAt,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	}
	status := http.StatusOK

	if len(s.healthChecks) > 0 {
		resp.Checks = make(map[string]string, len(s.healthChecks))
	}
	for _, hc := range s.healthChecks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := hc.Check(ctx)
		cancel()

		if err == nil {
			resp.Checks[hc.Name] = "ok"
			continue
		}
		resp.Checks[hc.Name] = "unavailable"
		if hc.Critical {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

// writeServiceError maps service errors onto HTTP statuses. Engine failures
// look exactly like a missing resource to the client.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, common.ErrInvalidIdentityClaim):
		writeError(w, http.StatusBadRequest, msgInvalidIdentity)
	case errors.Is(err, common.ErrNotFoundOrNotOwned),
		errors.Is(err, common.ErrRemoteServiceUnavailable):
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func itemIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidItemID)
		return 0, false
	}
	return id, true
}

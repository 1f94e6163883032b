package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	contributionerrors "paperportal/contexts/community-experience/contribution-engine/domain/errors"
	contributionhttp "paperportal/contexts/community-experience/contribution-engine/transport/http"
)

func writeContributionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, contributionhttp.ErrorResponse{Code: code, Message: message})
}

func writeContributionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contributionerrors.ErrInvalidEventInput):
		writeContributionError(w, http.StatusBadRequest, "invalid_event_input", err.Error())
	case errors.Is(err, contributionerrors.ErrInvalidTransition):
		writeContributionError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, contributionerrors.ErrStateNotFound):
		writeContributionError(w, http.StatusNotFound, "state_not_found", err.Error())
	case errors.Is(err, contributionerrors.ErrIdempotencyKeyRequired):
		writeContributionError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, contributionerrors.ErrIdempotencyConflict):
		writeContributionError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, contributionerrors.ErrVersionConflict):
		writeContributionError(w, http.StatusConflict, "version_conflict", err.Error())
	case errors.Is(err, contributionerrors.ErrRecalcSuperseded):
		writeContributionError(w, http.StatusConflict, "recalculation_superseded", err.Error())
	case errors.Is(err, contributionerrors.ErrReplayFailed):
		writeContributionError(w, http.StatusFailedDependency, "replay_failed", err.Error())
	default:
		writeContributionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireContributionAuthorization(w http.ResponseWriter, r *http.Request) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeContributionError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return false
	}
	return true
}

func (s *Server) handleContributionRecordEvent(w http.ResponseWriter, r *http.Request) {
	if !requireContributionAuthorization(w, r) {
		return
	}

	var req contributionhttp.RecordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contribution.Handler.RecordEventHandler(
		r.Context(),
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeContributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContributionVoteTransition(w http.ResponseWriter, r *http.Request) {
	if !requireContributionAuthorization(w, r) {
		return
	}

	var req contributionhttp.VoteTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contribution.Handler.VoteTransitionHandler(
		r.Context(),
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeContributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContributionBookmarkTransition(w http.ResponseWriter, r *http.Request) {
	if !requireContributionAuthorization(w, r) {
		return
	}

	var req contributionhttp.BookmarkTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.contribution.Handler.BookmarkTransitionHandler(
		r.Context(),
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeContributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContributionGetUser(w http.ResponseWriter, r *http.Request) {
	if !requireContributionAuthorization(w, r) {
		return
	}

	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeContributionError(w, http.StatusBadRequest, "invalid_event_input", "user_id is required")
		return
	}

	resp, err := s.contribution.Handler.GetContributionStateHandler(r.Context(), userID)
	if err != nil {
		writeContributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContributionRecalculate(w http.ResponseWriter, r *http.Request) {
	if !requireContributionAuthorization(w, r) {
		return
	}

	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeContributionError(w, http.StatusBadRequest, "invalid_event_input", "user_id is required")
		return
	}

	resp, err := s.contribution.Handler.RecalculateHandler(r.Context(), userID)
	if err != nil {
		writeContributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContributionLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !requireContributionAuthorization(w, r) {
		return
	}

	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeContributionError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeContributionError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		offset = parsed
	}

	resp, err := s.contribution.Handler.GetLeaderboardHandler(r.Context(), limit, offset)
	if err != nil {
		writeContributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContributionTierBands(w http.ResponseWriter, r *http.Request) {
	if !requireContributionAuthorization(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.contribution.Handler.GetTierBandsHandler(r.Context()))
}

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// requireUserID extracts the authenticated user's ID placed in the context by
// the auth middleware. It writes a 401 and returns false when it is missing.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// requireTaskID parses the {id} path parameter. A malformed ID is answered
// exactly like a missing task.
func requireTaskID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		log.Debug("malformed task id", slog.String("task_id", raw))
		shared.RespondWithError(w, r, http.StatusNotFound, MsgTaskNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// parseListQuery reads status, priority, search, page and limit from the
// query string. "all" and empty values disable the status and priority
// filters.
func parseListQuery(q url.Values) (domain.TaskFilter, domain.Page, error) {
	var filter domain.TaskFilter
	verr := &domain.ValidationError{}

	if s := strings.TrimSpace(q.Get("status")); s != "" && s != "all" {
		status := domain.TaskStatus(s)
		filter.Status = &status
	}
	if p := strings.TrimSpace(q.Get("priority")); p != "" && p != "all" {
		priority := domain.TaskPriority(p)
		filter.Priority = &priority
	}
	filter.Search = strings.TrimSpace(q.Get("search"))

	var filterErr *domain.ValidationError
	if errors.As(filter.Validate(), &filterErr) {
		for field, msg := range filterErr.Fields {
			verr.Add(field, msg)
		}
	}

	number := parsePositiveInt(verr, q, "page", domain.DefaultPageNumber, "Page must be a positive integer")
	limit := parsePositiveInt(verr, q, "limit", domain.DefaultPageLimit, "Limit must be a positive integer")
	if err := verr.OrNil(); err != nil {
		return domain.TaskFilter{}, domain.Page{}, err
	}

	page, err := domain.NewPage(number, limit)
	if err != nil {
		return domain.TaskFilter{}, domain.Page{}, err
	}
	return filter, page, nil
}

func parsePositiveInt(verr *domain.ValidationError, q url.Values, key string, def int, msg string) int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		verr.Add(key, msg)
		return def
	}
	return n
}

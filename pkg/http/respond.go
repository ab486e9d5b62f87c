package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"shortlink/pkg/service"
)

type apiError struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type errorEnvelope struct {
	Errors []apiError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, status, errorEnvelope{
		Errors: []apiError{{Status: strconv.Itoa(status), Title: title, Detail: detail}},
	})
}

var errorStatuses = []struct {
	err    error
	status int
	title  string
}{
	{service.ErrInvalidURL, http.StatusBadRequest, "Invalid URL"},
	{service.ErrInvalidSlug, http.StatusBadRequest, "Invalid Slug"},
	{service.ErrMissingSlug, http.StatusBadRequest, "Bad Request"},
	{service.ErrUsernameTooShort, http.StatusBadRequest, "Validation Error"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "Validation Error"},
	{service.ErrPasswordTooShort, http.StatusBadRequest, "Validation Error"},
	{service.ErrNoIdentity, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{service.ErrLinkNotFound, http.StatusNotFound, "Not Found"},
	{service.ErrUserNotFound, http.StatusNotFound, "Not Found"},
	{service.ErrSlugTaken, http.StatusConflict, "Conflict"},
	{service.ErrAlreadyClaimed, http.StatusConflict, "Conflict"},
	{service.ErrEmailTaken, http.StatusConflict, "Conflict"},
}

// writeServiceError maps a service error onto the HTTP taxonomy. Anything
// unrecognized becomes a 500 with a generic detail; internals never leak.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.title, m.err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "Server Error", "An unexpected error occurred")
}

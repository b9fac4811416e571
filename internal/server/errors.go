package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/teamtask/taskapi/internal/repository"
	"github.com/teamtask/taskapi/internal/services/authz"
	"github.com/teamtask/taskapi/internal/services/iam"
	"github.com/teamtask/taskapi/internal/services/todo"
)

// errorBody is the uniform JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// writeDomainError maps service errors to the HTTP error taxonomy:
// not-found beats permission (the existence check runs first), policy denials
// become 403 with their reason, validation failures become 400, and anything
// unexpected is logged and collapsed to a generic 500.
//
// notFoundMessage names the entity for 404s so storage wording never leaks.
func writeDomainError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMessage)
	case authz.IsDenial(err):
		respondError(w, http.StatusForbidden, err.Error())
	case isValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeAuthFailure maps login failures: bad credentials are 401, a banned
// account is 403, everything else falls through to the shared mapping.
func writeAuthFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, iam.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, iam.ErrAccountBanned):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		writeDomainError(w, err, "User not found")
	}
}

func isValidation(err error) bool {
	for _, v := range []error{
		todo.ErrTitleRequired,
		authz.ErrUnknownRole,
		iam.ErrNameRequired,
		iam.ErrInvalidEmail,
		iam.ErrPasswordRequired,
		iam.ErrEmailTaken,
		iam.ErrRoleAlreadyChosen,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes d'erreur exposés sur le wire
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidState     = "INVALID_STATE"
	CodeInvalidMove      = "INVALID_MOVE"
	CodeNoPP             = "NO_PP"
	CodeAlreadySubmitted = "ALREADY_SUBMITTED"
	CodeAlreadyQueued    = "ALREADY_QUEUED"
	CodeAlreadyInBattle  = "ALREADY_IN_BATTLE"
	CodeNameTaken        = "NAME_TAKEN"
	CodeRateLimited      = "RATE_LIMITED"
	CodeRequestTimeout   = "REQUEST_TIMEOUT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// ArenaError erreur typée portant un code wire et un statut HTTP
type ArenaError struct {
	Code    string
	Message string
	Status  int
}

// Error implémente error
func (e *ArenaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError construit une ArenaError
func NewError(code, message string, status int) *ArenaError {
	return &ArenaError{Code: code, Message: message, Status: status}
}

// Constructeurs des erreurs courantes
func ErrUnauthorized(msg string) *ArenaError {
	return NewError(CodeUnauthorized, msg, http.StatusUnauthorized)
}

func ErrForbidden(msg string) *ArenaError {
	return NewError(CodeForbidden, msg, http.StatusForbidden)
}

func ErrValidation(msg string) *ArenaError {
	return NewError(CodeValidation, msg, http.StatusBadRequest)
}

func ErrNotFound(msg string) *ArenaError {
	return NewError(CodeNotFound, msg, http.StatusNotFound)
}

func ErrConflict(code, msg string) *ArenaError {
	return NewError(code, msg, http.StatusConflict)
}

func ErrInternal(msg string) *ArenaError {
	return NewError(CodeInternal, msg, http.StatusInternalServerError)
}

// AsArenaError extrait une ArenaError d'une chaîne d'erreurs; les erreurs
// inconnues deviennent une erreur interne générique (le détail reste loggé).
func AsArenaError(err error) *ArenaError {
	var ae *ArenaError
	if errors.As(err, &ae) {
		return ae
	}
	return ErrInternal("an unexpected error occurred")
}

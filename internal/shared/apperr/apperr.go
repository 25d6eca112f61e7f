package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classe une erreur métier et détermine le code HTTP renvoyé
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindRateLimited  Kind = "rate_limited"
	KindTenant       Kind = "tenant"
	KindLicence      Kind = "licence"
	KindSession      Kind = "session"
	KindUnavailable  Kind = "unavailable"
	KindInternal     Kind = "internal"
)

// Codes HTTP spécifiques conservés pour les clients existants
const (
	StatusTenantError  = 460
	StatusLicenceError = 465
	StatusSessionError = 480
)

// Error erreur métier structurée renvoyée par les services
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail ajoute une information au bloc details de la réponse
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// Status retourne le code HTTP associé au type d'erreur
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTenant:
		return StatusTenantError
	case KindLicence:
		return StatusLicenceError
	case KindSession:
		return StatusSessionError
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error   { return New(KindValidation, code, message) }
func NotFound(code, message string) *Error     { return New(KindNotFound, code, message) }
func Conflict(code, message string) *Error     { return New(KindConflict, code, message) }
func Unauthorized(code, message string) *Error { return New(KindUnauthorized, code, message) }
func Forbidden(code, message string) *Error    { return New(KindForbidden, code, message) }
func RateLimited(code, message string) *Error  { return New(KindRateLimited, code, message) }
func Tenant(code, message string) *Error       { return New(KindTenant, code, message) }
func Licence(code, message string) *Error      { return New(KindLicence, code, message) }
func Session(code, message string) *Error      { return New(KindSession, code, message) }
func Unavailable(code, message string) *Error  { return New(KindUnavailable, code, message) }

// Internal enveloppe une erreur technique. Le message d'origine n'est jamais exposé au client.
func Internal(code string, err error) *Error {
	return &Error{Kind: KindInternal, Code: code, Message: "Erreur interne", Err: err}
}

// As extrait une *Error de la chaîne d'erreurs
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode indique si err porte le code métier donné
func IsCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

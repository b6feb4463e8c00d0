package server

import (
	"errors"
	"net/http"

	"github.com/roach88/spearfished/internal/blob"
	"github.com/roach88/spearfished/internal/docstore"
	"github.com/roach88/spearfished/internal/identity"
	"github.com/roach88/spearfished/internal/publish"
)

// Error codes sent in error_code.
const (
	ErrInvalidData        = "INVALID_DATA"
	ErrParsing            = "PARSING_ERROR"
	ErrInternal           = "INTERNAL_ERROR"
	ErrNotFound           = "NOT_FOUND"
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrConflict           = "CONFLICT"
	ErrLocationUnresolved = "LOCATION_UNRESOLVED"
	ErrStorage            = "STORAGE_ERROR"
	ErrWrite              = "WRITE_ERROR"
	ErrUnavailable        = "UNAVAILABLE"
)

// HTTPError is an error response. IError is logged, never sent.
type HTTPError struct {
	IError    error  `json:"-"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

func badRequest(code, msg string, err error) *HTTPError {
	return &HTTPError{IError: err, Status: http.StatusBadRequest, Error: msg, ErrorCode: code}
}

func internalError(msg string, err error) *HTTPError {
	return &HTTPError{IError: err, Status: http.StatusInternalServerError, Error: msg, ErrorCode: ErrInternal}
}

// publishError maps a publish failure to a response.
func publishError(err error) *HTTPError {
	var ve *publish.ValidationError
	var le *publish.LocationUnresolvedError
	var we *docstore.WriteError

	switch {
	case errors.As(err, &ve):
		return badRequest(ErrInvalidData, ve.Error(), err)
	case errors.As(err, &le):
		return &HTTPError{IError: err, Status: http.StatusUnprocessableEntity, Error: le.Error(), ErrorCode: ErrLocationUnresolved}
	case blob.IsStorageError(err):
		return &HTTPError{IError: err, Status: http.StatusBadGateway, Error: "image upload failed", ErrorCode: ErrStorage}
	case errors.As(err, &we):
		switch we.Reason {
		case docstore.ReasonDuplicate:
			return &HTTPError{IError: err, Status: http.StatusConflict, Error: "post already exists", ErrorCode: ErrConflict}
		case docstore.ReasonEncode:
			return badRequest(ErrInvalidData, we.Error(), err)
		}
		return &HTTPError{IError: err, Status: http.StatusBadGateway, Error: "post write failed", ErrorCode: ErrWrite}
	}
	return internalError("publish failed", err)
}

// authError maps an identity failure to a response.
func authError(err error) *HTTPError {
	var ae *identity.AuthError
	if !errors.As(err, &ae) {
		return internalError("authentication failed", err)
	}

	switch ae.Code {
	case identity.CodeInvalidEmail, identity.CodeWeakPassword:
		return badRequest(ErrInvalidData, ae.Message, err)
	case identity.CodeEmailInUse:
		return &HTTPError{IError: err, Status: http.StatusConflict, Error: ae.Message, ErrorCode: ErrConflict}
	case identity.CodeUserNotFound, identity.CodeWrongPassword, identity.CodeInvalidToken:
		// Do not reveal which part of the credentials was wrong.
		return &HTTPError{IError: err, Status: http.StatusUnauthorized, Error: "invalid credentials", ErrorCode: ErrUnauthorized}
	}
	return internalError("authentication failed", err)
}

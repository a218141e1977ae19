package quiz

import "errors"

type ErrorKind string

const (
	ErrorUnauthorized ErrorKind = "unauthorized"
	ErrorNotFound     ErrorKind = "not_found"
	ErrorForbidden    ErrorKind = "forbidden"
	ErrorBadRequest   ErrorKind = "bad_request"
)

// ServiceError is the failure type every quiz operation raises. It is created
// at the point of violation and propagates to the handler unchanged.
type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Kind: ErrorUnauthorized, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &ServiceError{Kind: ErrorNotFound, Message: msg}
}

func NewForbiddenError(msg string) error {
	return &ServiceError{Kind: ErrorForbidden, Message: msg}
}

func NewBadRequestError(msg string) error {
	return &ServiceError{Kind: ErrorBadRequest, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := AsServiceError(err)
	return ok && se.Kind == kind
}

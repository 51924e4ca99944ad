package httperr

import "errors"

// Business rule violations surfaced to API callers as typed failures.
const (
	CodeAlreadyInQueue    = "already_in_queue"
	CodeInvalidTransition = "invalid_transition"
	CodeNotYours          = "not_yours"
	CodeRemedyRequired    = "remedy_required"
	CodeNotFound          = "not_found"
	CodePermissionDenied  = "permission_denied"
	CodeStoreUnavailable  = "store_unavailable"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

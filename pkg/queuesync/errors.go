package queuesync

import "errors"

// AuthError marks a fetch or dial failure caused by missing or expired
// credentials. The controller never retries these: the caller must obtain
// a new token first.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "queuesync: not authorized"
	}
	return "queuesync: not authorized: " + e.Reason
}

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

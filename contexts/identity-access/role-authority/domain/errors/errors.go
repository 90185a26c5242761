package errors

import "errors"

var (
	ErrUnknownRole         = errors.New("unknown role")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidToken        = errors.New("invalid access token")
	ErrMissingActorSubject = errors.New("access token has no subject")
)

package errors

import "fmt"

var (
	ErrDuplicateIdentity = fmt.Errorf("identity already registered")
	ErrInvalidIdentity   = fmt.Errorf("invalid identity")
	ErrNoSuchUser        = fmt.Errorf("no such user")
	ErrHandleClosed      = fmt.Errorf("handle closed")
	ErrHandleFull        = fmt.Errorf("handle buffer full")
	ErrMalformedFrame    = fmt.Errorf("malformed frame")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
)

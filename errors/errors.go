package errors

import "fmt"

var (
	ErrMalformedEnvelope = fmt.Errorf("malformed envelope")
	ErrUnknownKind       = fmt.Errorf("unknown envelope kind")
	ErrUnauthorized      = fmt.Errorf("session invalidated")
	ErrStaleResponse     = fmt.Errorf("stale response")
	ErrSessionClosed     = fmt.Errorf("session closed")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
)

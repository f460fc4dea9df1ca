package lease

import "errors"

var (
	// ErrNilStore indicates no lease store was provided.
	ErrNilStore = errors.New("lease store is required")
	// ErrNilLogger indicates a nil logger was provided.
	ErrNilLogger = errors.New("logger cannot be nil")
	// ErrInvalidTTL indicates a non-positive TTL.
	ErrInvalidTTL = errors.New("ttl must be positive")
	// ErrInvalidRenewInterval indicates a non-positive renewal interval.
	ErrInvalidRenewInterval = errors.New("renew interval must be positive")
	// ErrInvalidRetries indicates a negative retry count or delay.
	ErrInvalidRetries = errors.New("retries and delay cannot be negative")
)

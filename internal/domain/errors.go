package domain

// Error kinds surfaced by the list operation. Callers distinguish a failed
// backing-store read (retryable) from an enrichment failure; everything else
// is absorbed below this layer.

type QueryError struct {
	Err error
}

func (e *QueryError) Error() string { return "query error: " + e.Err.Error() }
func (e *QueryError) Unwrap() error { return e.Err }

type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return "internal error: " + e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

package httpserver

const (
	ErrMissingRecipient = "missing recipient"
	ErrInvalidPageSize  = "invalid page size"
	ErrInvalidFlag      = "invalid boolean parameter"
	ErrQuery            = "query error"
	ErrInternal         = "internal error"
	ErrRateLimited      = "too many requests"
)

package errors

const (
	HttpInternalError      = "internal_error"
	HttpInvalidQueryError  = "invalid_query"
	HttpCacheNotReadyError = "cache_not_ready"
	HttpUnknownFieldError  = "unknown_field"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

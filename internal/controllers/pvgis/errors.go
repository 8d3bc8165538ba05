package pvgis

import "fmt"

// UpstreamErrorKind classifies a failed call to the PVGIS API.
type UpstreamErrorKind string

const (
	// ErrKindTimeout means the request exceeded the client timeout.
	ErrKindTimeout UpstreamErrorKind = "timeout"
	// ErrKindRateLimited means the upstream returned HTTP 429 (the service
	// enforces a 30 calls/second limit).
	ErrKindRateLimited UpstreamErrorKind = "rate_limited"
	// ErrKindOverloaded means the upstream returned HTTP 529.
	ErrKindOverloaded UpstreamErrorKind = "overloaded"
	// ErrKindHTTP covers any other non-2xx status.
	ErrKindHTTP UpstreamErrorKind = "http_error"
	// ErrKindTransport covers connection-level failures.
	ErrKindTransport UpstreamErrorKind = "transport"
	// ErrKindDecode means the response body could not be parsed, or carried
	// an embedded error message.
	ErrKindDecode UpstreamErrorKind = "decode"
	// ErrKindUnavailable means the circuit breaker is open and no request
	// was attempted.
	ErrKindUnavailable UpstreamErrorKind = "unavailable"
)

// UpstreamError is a typed failure from the PVGIS API client.
type UpstreamError struct {
	Kind       UpstreamErrorKind
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case ErrKindRateLimited:
		return fmt.Sprintf("pvgis %s: rate limit exceeded (30 calls/second), wait and retry", e.Endpoint)
	case ErrKindOverloaded:
		return fmt.Sprintf("pvgis %s: server overloaded, retry in a few seconds", e.Endpoint)
	case ErrKindTimeout:
		return fmt.Sprintf("pvgis %s: request timed out: %v", e.Endpoint, e.Cause)
	case ErrKindHTTP:
		return fmt.Sprintf("pvgis %s: HTTP %d from upstream", e.Endpoint, e.StatusCode)
	case ErrKindUnavailable:
		return fmt.Sprintf("pvgis %s: upstream temporarily unavailable: %v", e.Endpoint, e.Cause)
	default:
		return fmt.Sprintf("pvgis %s: %s: %v", e.Endpoint, e.Kind, e.Cause)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// ErrNoData reports a day-average request whose year range contained no
// matching records.
type ErrNoData struct {
	Month, Day         int
	StartYear, EndYear int
}

func (e *ErrNoData) Error() string {
	return fmt.Sprintf("no data found for %02d/%02d in years %d-%d",
		e.Month, e.Day, e.StartYear, e.EndYear)
}

package schema

import "errors"

// Sentinel errors for the pipeline. Detection-stage failures are reported as
// structured results instead, see DetectionResult.
var (
	// ErrInvalidParameter indicates a method, model or parameter value
	// outside its enumerated set.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNoDataForChannel indicates the channel has zero persisted rows at all.
	// A channel with rows but none inside the requested window yields an empty
	// result, not this error.
	ErrNoDataForChannel = errors.New("no data found for channel")

	// ErrUpstreamService indicates a transport or HTTP failure calling one of
	// the language services.
	ErrUpstreamService = errors.New("upstream service error")

	// ErrMalformedUpstreamResponse indicates the language service answered but
	// the payload was missing expected fields.
	ErrMalformedUpstreamResponse = errors.New("malformed upstream response")
)

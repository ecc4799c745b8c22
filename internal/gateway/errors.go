package gateway

import (
	"errors"

	"github.com/ppiankov/neurorouter"
)

// ErrInvalidInput is returned for empty scripts or descriptions. It is
// reported synchronously, before any network call is made.
var ErrInvalidInput = errors.New("invalid input")

// ErrUpstream is the generic failure of the model backend: transport
// errors, non-200 responses, and unparseable or schema-violating output.
var ErrUpstream = errors.New("upstream failure")

// ErrRateLimited signals HTTP 429 from the model backend. It is the
// neurorouter sentinel, so callers matching that error see gateway
// rate limits too. Distinguished from ErrUpstream to drive the one-shot
// fallback in Chain.
var ErrRateLimited = neurorouter.ErrRateLimited

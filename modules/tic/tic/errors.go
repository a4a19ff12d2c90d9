package tic

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotTicPayload marks an inscription whose media type is not TIC's.
	// Such events are ignored, not recorded.
	ErrNotTicPayload = errors.New("not a tic payload")

	// ErrMissingMandatoryRule marks a TIC media type without the mandatory
	// rule=esip6 parameter.
	ErrMissingMandatoryRule = errors.New("missing mandatory rule=esip6 parameter")

	// ErrMalformedPayload marks a payload body that is not a JSON object.
	ErrMalformedPayload = errors.New("malformed payload")
)

// SchemaViolationError reports a single field-level violation of the TIC
// comment schema. Multiple violations may be joined into one error.
type SchemaViolationError struct {
	Field  string
	Reason string
}

func (e SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation on field %q: %s", e.Field, e.Reason)
}

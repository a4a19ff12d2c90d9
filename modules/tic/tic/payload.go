package tic

import (
	"encoding/json"
	"mime"

	"github.com/cockroachdb/errors"
)

// ParsePayload establishes that an inscription payload is structurally a TIC
// candidate: contentType carries the media type with its parameters, payload
// is the decoded data URL body.
//
// Returns ErrNotTicPayload for foreign media types, ErrMissingMandatoryRule
// when rule=esip6 is absent, ErrMalformedPayload when the body is not a JSON
// object. No semantic validation happens here.
func ParsePayload(contentType string, payload string) (map[string]any, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, errors.Wrap(ErrNotTicPayload, err.Error())
	}
	if mediaType != MediaType {
		return nil, errors.WithStack(ErrNotTicPayload)
	}
	if params[RuleParam] != RuleESIP6 {
		return nil, errors.WithStack(ErrMissingMandatoryRule)
	}

	var object map[string]any
	if err := json.Unmarshal([]byte(payload), &object); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}
	if object == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "payload is null")
	}

	return object, nil
}

package dataurl

import (
	"encoding/base64"
	"mime"
	"net/url"
	"strings"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/cockroachdb/errors"
)

const scheme = "data:"

// defaultContentType applies when the data URL omits its media type, per RFC 2397.
const defaultContentType = "text/plain;charset=US-ASCII"

// DataURL is a decoded RFC 2397 data URL.
type DataURL struct {
	// ContentType is the media type with its parameters, excluding the
	// base64 extension. E.g. "message/vnd.tic+json;rule=esip6".
	ContentType string

	// MediaType is the bare media type. E.g. "message/vnd.tic+json".
	MediaType string

	// Params are the media type parameters.
	Params map[string]string

	// Data is the decoded body.
	Data []byte
}

// Parse decodes a data URL string. The body is base64-decoded if the header
// carries the base64 extension, otherwise percent-decoded where possible.
func Parse(raw string) (*DataURL, error) {
	if !strings.HasPrefix(raw, scheme) {
		return nil, errors.Wrap(errs.InvalidArgument, "missing data url scheme")
	}
	header, body, found := strings.Cut(raw[len(scheme):], ",")
	if !found {
		return nil, errors.Wrap(errs.InvalidArgument, "missing data url body separator")
	}

	isBase64 := false
	if cut, ok := strings.CutSuffix(header, ";base64"); ok {
		header = cut
		isBase64 = true
	}
	if header == "" {
		header = defaultContentType
	}

	mediaType, params, err := mime.ParseMediaType(header)
	if err != nil {
		return nil, errors.Wrap(err, "invalid media type")
	}

	var data []byte
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, errors.Wrap(err, "invalid base64 body")
		}
	} else {
		// bodies are not required to be percent-encoded in practice;
		// fall back to the raw body if unescaping fails
		unescaped, err := url.PathUnescape(body)
		if err != nil {
			unescaped = body
		}
		data = []byte(unescaped)
	}

	return &DataURL{
		ContentType: header,
		MediaType:   mediaType,
		Params:      params,
		Data:        data,
	}, nil
}

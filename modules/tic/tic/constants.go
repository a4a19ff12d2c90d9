package tic

const (
	// MediaType is the data URL media type every TIC comment must carry.
	MediaType = "message/vnd.tic+json"

	// RuleParam and RuleESIP6 form the mandatory data URL parameter
	// guaranteeing ethscription creation irrespective of content uniqueness.
	RuleParam = "rule"
	RuleESIP6 = "esip6"

	// VersionZero is the only version this indexer fully recognizes.
	// Other valid hex versions are accepted but flagged unknown.
	VersionZero = "0x0"
)

// Encoding is the declared encoding of a comment's content. The indexer
// stores content as-is; decoding is deferred to display time.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf8"
	EncodingBase64   Encoding = "base64"
	EncodingHex      Encoding = "hex"
	EncodingJSON     Encoding = "json"
	EncodingMarkdown Encoding = "markdown"
	EncodingASCII    Encoding = "ascii"
)

var supportedEncodings = map[Encoding]struct{}{
	EncodingUTF8:     {},
	EncodingBase64:   {},
	EncodingHex:      {},
	EncodingJSON:     {},
	EncodingMarkdown: {},
	EncodingASCII:    {},
}

func (e Encoding) IsSupported() bool {
	_, ok := supportedEncodings[e]
	return ok
}

func (e Encoding) String() string {
	return string(e)
}

// MessageType distinguishes comments from reactions.
type MessageType string

const (
	MessageTypeComment  MessageType = "comment"
	MessageTypeReaction MessageType = "reaction"
)

var supportedMessageTypes = map[MessageType]struct{}{
	MessageTypeComment:  {},
	MessageTypeReaction: {},
}

func (t MessageType) IsSupported() bool {
	_, ok := supportedMessageTypes[t]
	return ok
}

func (t MessageType) String() string {
	return string(t)
}

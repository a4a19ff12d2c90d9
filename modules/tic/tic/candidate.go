package tic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultMaxTopicParts caps the number of colon-delimited topic parts.
// The protocol imposes no cap; this one exists purely as a resource
// exhaustion defense and is configurable per indexer instance.
const DefaultMaxTopicParts = 8

var (
	versionPattern   = regexp.MustCompile(`^0x[0-9a-fA-F]*$`)
	topicPartPattern = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
)

// Candidate is a TIC comment that passed schema validation. It carries the
// raw topic string; normalization is a separate stage.
type Candidate struct {
	Topic          string
	Content        string
	Version        string
	UnknownVersion bool
	Encoding       Encoding
	Type           MessageType
}

// ValidateCandidate checks a parsed payload object against the TIC schema.
// All violations are collected and returned joined together; acceptance is
// all-or-nothing. maxTopicParts <= 0 applies DefaultMaxTopicParts.
func ValidateCandidate(object map[string]any, maxTopicParts int) (*Candidate, error) {
	if maxTopicParts <= 0 {
		maxTopicParts = DefaultMaxTopicParts
	}

	var violations []error
	violate := func(field, reason string) {
		violations = append(violations, SchemaViolationError{Field: field, Reason: reason})
	}

	candidate := Candidate{
		Encoding: EncodingUTF8,
		Type:     MessageTypeComment,
	}

	if raw, ok := object["topic"]; !ok {
		violate("topic", "missing")
	} else if topic, ok := raw.(string); !ok {
		violate("topic", "not a string")
	} else if topic == "" {
		violate("topic", "empty")
	} else {
		parts := strings.Split(topic, ":")
		if len(parts) > maxTopicParts {
			violate("topic", fmt.Sprintf("too many parts: %d > %d", len(parts), maxTopicParts))
		}
		for _, part := range parts {
			if !topicPartPattern.MatchString(part) {
				violate("topic", fmt.Sprintf("part %q is not a 0x-prefixed hex string", part))
			}
		}
		candidate.Topic = topic
	}

	if raw, ok := object["content"]; !ok {
		violate("content", "missing")
	} else if content, ok := raw.(string); !ok {
		violate("content", "not a string")
	} else {
		candidate.Content = content
	}

	if raw, ok := object["version"]; !ok {
		violate("version", "missing")
	} else if version, ok := raw.(string); !ok {
		violate("version", "not a string")
	} else if !versionPattern.MatchString(version) {
		violate("version", fmt.Sprintf("%q is not a hex string", version))
	} else {
		candidate.Version = version
		// unrecognized non-zero versions are stored but flagged, for
		// forward compatibility
		candidate.UnknownVersion = version != VersionZero
	}

	if raw, ok := object["encoding"]; ok {
		if encoding, ok := raw.(string); !ok {
			violate("encoding", "not a string")
		} else if e := Encoding(encoding); !e.IsSupported() {
			violate("encoding", fmt.Sprintf("unsupported encoding %q", encoding))
		} else {
			candidate.Encoding = e
		}
	}

	if raw, ok := object["type"]; ok {
		if messageType, ok := raw.(string); !ok {
			violate("type", "not a string")
		} else if t := MessageType(messageType); !t.IsSupported() {
			violate("type", fmt.Sprintf("unsupported type %q", messageType))
		} else {
			candidate.Type = t
		}
	}

	if len(violations) > 0 {
		return nil, errors.Join(violations...)
	}
	return &candidate, nil
}

package tic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCandidate(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"topic":   "0x4b3e9e3c71c154b46b8b79177dd6e2641b1f4e39",
			"content": "gm",
			"version": "0x0",
		}
	}

	t.Run("minimal valid comment", func(t *testing.T) {
		candidate, err := ValidateCandidate(base(), 0)
		require.NoError(t, err)
		assert.Equal(t, "0x4b3e9e3c71c154b46b8b79177dd6e2641b1f4e39", candidate.Topic)
		assert.Equal(t, "gm", candidate.Content)
		assert.Equal(t, "0x0", candidate.Version)
		assert.False(t, candidate.UnknownVersion)
		assert.Equal(t, EncodingUTF8, candidate.Encoding)
		assert.Equal(t, MessageTypeComment, candidate.Type)
	})

	t.Run("explicit encoding and type", func(t *testing.T) {
		object := base()
		object["encoding"] = "markdown"
		object["type"] = "reaction"
		candidate, err := ValidateCandidate(object, 0)
		require.NoError(t, err)
		assert.Equal(t, EncodingMarkdown, candidate.Encoding)
		assert.Equal(t, MessageTypeReaction, candidate.Type)
	})

	t.Run("unknown version is accepted and flagged", func(t *testing.T) {
		object := base()
		object["version"] = "0x1"
		candidate, err := ValidateCandidate(object, 0)
		require.NoError(t, err)
		assert.Equal(t, "0x1", candidate.Version)
		assert.True(t, candidate.UnknownVersion)
	})

	t.Run("multi part topic", func(t *testing.T) {
		object := base()
		object["topic"] = "0x4b3e9e3c71c154b46b8b79177dd6e2641b1f4e39:0x4d2"
		candidate, err := ValidateCandidate(object, 0)
		require.NoError(t, err)
		assert.Equal(t, "0x4b3e9e3c71c154b46b8b79177dd6e2641b1f4e39:0x4d2", candidate.Topic)
	})

	t.Run("empty content is valid", func(t *testing.T) {
		object := base()
		object["content"] = ""
		candidate, err := ValidateCandidate(object, 0)
		require.NoError(t, err)
		assert.Empty(t, candidate.Content)
	})

	t.Run("missing topic", func(t *testing.T) {
		object := base()
		delete(object, "topic")
		_, err := ValidateCandidate(object, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"topic"`)
	})

	t.Run("topic not a string", func(t *testing.T) {
		object := base()
		object["topic"] = 42.0
		_, err := ValidateCandidate(object, 0)
		assert.Error(t, err)
	})

	t.Run("empty topic", func(t *testing.T) {
		object := base()
		object["topic"] = ""
		_, err := ValidateCandidate(object, 0)
		assert.Error(t, err)
	})

	t.Run("topic part without hex prefix", func(t *testing.T) {
		object := base()
		object["topic"] = "hello"
		_, err := ValidateCandidate(object, 0)
		assert.Error(t, err)
	})

	t.Run("topic part with bare prefix", func(t *testing.T) {
		object := base()
		object["topic"] = "0x"
		_, err := ValidateCandidate(object, 0)
		assert.Error(t, err)
	})

	t.Run("topic part with non hex characters", func(t *testing.T) {
		object := base()
		object["topic"] = "0x4b3e:0xZZZZ"
		_, err := ValidateCandidate(object, 0)
		assert.Error(t, err)
	})

	t.Run("too many topic parts", func(t *testing.T) {
		object := base()
		object["topic"] = strings.Join([]string{"0x1", "0x2", "0x3", "0x4"}, ":")
		_, err := ValidateCandidate(object, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too many parts")
	})

	t.Run("parts at the cap are accepted", func(t *testing.T) {
		object := base()
		object["topic"] = strings.Join([]string{"0x1", "0x2", "0x3"}, ":")
		_, err := ValidateCandidate(object, 3)
		assert.NoError(t, err)
	})

	t.Run("missing content", func(t *testing.T) {
		object := base()
		delete(object, "content")
		_, err := ValidateCandidate(object, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"content"`)
	})

	t.Run("missing version", func(t *testing.T) {
		object := base()
		delete(object, "version")
		_, err := ValidateCandidate(object, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"version"`)
	})

	t.Run("version not hex", func(t *testing.T) {
		object := base()
		object["version"] = "1"
		_, err := ValidateCandidate(object, 0)
		assert.Error(t, err)
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		object := base()
		object["encoding"] = "rot13"
		_, err := ValidateCandidate(object, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"encoding"`)
	})

	t.Run("unsupported type", func(t *testing.T) {
		object := base()
		object["type"] = "upvote"
		_, err := ValidateCandidate(object, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"type"`)
	})

	t.Run("all violations are reported together", func(t *testing.T) {
		_, err := ValidateCandidate(map[string]any{"encoding": "rot13"}, 0)
		require.Error(t, err)
		message := err.Error()
		assert.Contains(t, message, `"topic"`)
		assert.Contains(t, message, `"content"`)
		assert.Contains(t, message, `"version"`)
		assert.Contains(t, message, `"encoding"`)
	})
}

// ABOUTME: Extraction of JSON and HTML payloads from free-form model responses
// ABOUTME: Strips markdown fences and tolerates lenient JSON through json5

package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/titanous/json5"
)

var fenceRe = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*\\s*\\n?(.*?)```")

var errNoPayload = errors.New("no payload found in model response")

// unfence returns the body of the first fenced block, or the trimmed text
func unfence(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// decodeJSON finds the outermost JSON object or array in a model response
// and decodes it into v. Strict JSON is tried first, then json5.
func decodeJSON(text string, v interface{}) error {
	body := unfence(text)

	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return errNoPayload
	}
	closer := byte('}')
	if body[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(body, closer)
	if end <= start {
		return errNoPayload
	}
	raw := body[start : end+1]

	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	if err := json5.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode model json: %w", err)
	}
	return nil
}

// extractHTML returns the markup portion of a model response
func extractHTML(text string) (string, error) {
	body := unfence(text)
	start := strings.IndexByte(body, '<')
	end := strings.LastIndexByte(body, '>')
	if start < 0 || end <= start {
		return "", errNoPayload
	}
	return body[start : end+1], nil
}

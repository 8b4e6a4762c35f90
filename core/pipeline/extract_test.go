package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name string
		text string
	}{
		{"plain", `{"name":"hero","count":2}`},
		{"fenced", "Here you go:\n```json\n{\"name\": \"hero\", \"count\": 2}\n```\nDone."},
		{"prose around", `Sure! {"name":"hero","count":2} hope that helps`},
		{"trailing comma and comment", "{\n  // layout\n  \"name\": \"hero\",\n  \"count\": 2,\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			require.NoError(t, decodeJSON(tt.text, &p))
			assert.Equal(t, payload{Name: "hero", Count: 2}, p)
		})
	}
}

func TestDecodeJSON_Array(t *testing.T) {
	var out []map[string]string
	require.NoError(t, decodeJSON("```\n[{\"type\":\"css_fix\"}]\n```", &out))
	assert.Equal(t, "css_fix", out[0]["type"])
}

func TestDecodeJSON_Failures(t *testing.T) {
	var v map[string]interface{}
	assert.ErrorIs(t, decodeJSON("no json here", &v), errNoPayload)
	assert.Error(t, decodeJSON("{not: valid: json", &v))
}

func TestExtractHTML(t *testing.T) {
	html, err := extractHTML("```html\n<section data-section=\"sec_0\">Hi</section>\n```")
	require.NoError(t, err)
	assert.Equal(t, `<section data-section="sec_0">Hi</section>`, html)

	html, err = extractHTML("Refined section:\n<div>x</div>\nThanks")
	require.NoError(t, err)
	assert.Equal(t, "<div>x</div>", html)

	_, err = extractHTML("I cannot help with that.")
	assert.Error(t, err)
}

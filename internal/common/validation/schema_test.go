// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const questionSchema = `{
	"type": "object",
	"required": ["question"],
	"properties": {
		"question": {"type": "string", "minLength": 1}
	}
}`

func TestValidateInput(t *testing.T) {
	schema := MustCompile(questionSchema)

	tests := []struct {
		name      string
		input     interface{}
		wantValid bool
	}{
		{"valid", map[string]interface{}{"question": "how many?"}, true},
		{"extra fields allowed", map[string]interface{}{"question": "q", "lang": "zh"}, true},
		{"missing", map[string]interface{}{}, false},
		{"wrong type", map[string]interface{}{"question": 42.0}, false},
		{"empty string", map[string]interface{}{"question": ""}, false},
		{"not an object", []interface{}{"question"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.ValidateInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.NotEmpty(t, result.Errors)
				assert.NotEmpty(t, result.Error())
			}
		})
	}
}

func TestValidateJSON(t *testing.T) {
	schema := MustCompile(map[string]interface{}{
		"type":                 "object",
		"required":             []interface{}{"intent"},
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"intent": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"a", "b"},
			},
		},
	})

	result, err := schema.ValidateJSON([]byte(`{"intent":"a"}`))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "", result.Error())

	result, err = schema.ValidateJSON([]byte(`{"intent":"c","extra":1}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasField("intent"))
	assert.Len(t, result.GetErrorMessages(), 2)

	_, err = schema.ValidateJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{`) })
}

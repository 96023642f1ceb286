// internal/workers/ai-insights/ask-insight/schema.go
package askinsight

import "crm-insights/internal/common/validation"

var requestSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["question"],
	"properties": {
		"question": {"type": "string", "minLength": 1}
	}
}`)

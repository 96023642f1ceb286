// internal/workers/ai-insights/plan-intent/schema.go
package planintent

import (
	"crm-insights/internal/common/validation"
	"crm-insights/internal/models"

	"google.golang.org/genai"
)

// planJSONSchema is the contract every planner response must satisfy before
// it is decoded. Unknown keys and unknown enum values are rejected.
const planJSONSchema = `{
	"type": "object",
	"required": ["intent"],
	"additionalProperties": false,
	"properties": {
		"intent": {
			"type": "string",
			"enum": ["count_opportunities", "sum_expected_amount", "status_breakdown"]
		},
		"filters": {
			"type": ["object", "null"],
			"additionalProperties": false,
			"properties": {
				"status": {
					"type": ["array", "null"],
					"items": {"type": "string"}
				},
				"timeframe": {
					"type": ["object", "null"],
					"required": ["scope"],
					"additionalProperties": false,
					"properties": {
						"scope": {"type": "string", "enum": ["all_time", "last_days", "between"]},
						"lastDays": {"type": ["integer", "null"], "minimum": 1, "maximum": 36500},
						"startDate": {"type": ["string", "null"]},
						"endDate": {"type": ["string", "null"]}
					}
				}
			}
		},
		"rationale": {"type": ["string", "null"]}
	}
}`

// maxLastDays mirrors the lastDays maximum above, roughly a century.
const maxLastDays = 36500

var planSchema = validation.MustCompile(planJSONSchema)

func intentEnum() []string {
	out := make([]string, len(models.Intents))
	for i, intent := range models.Intents {
		out[i] = string(intent)
	}
	return out
}

// ResponseSchema constrains the model's structured output to the plan shape.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"intent": {
				Type:   genai.TypeString,
				Format: "enum",
				Enum:   intentEnum(),
			},
			"filters": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"status": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
					"timeframe": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"scope": {
								Type:   genai.TypeString,
								Format: "enum",
								Enum: []string{
									string(models.TimeframeAllTime),
									string(models.TimeframeLastDays),
									string(models.TimeframeBetween),
								},
							},
							"lastDays":  {Type: genai.TypeInteger},
							"startDate": {Type: genai.TypeString},
							"endDate":   {Type: genai.TypeString},
						},
						Required: []string{"scope"},
					},
				},
			},
			"rationale": {Type: genai.TypeString},
		},
		Required: []string{"intent"},
	}
}

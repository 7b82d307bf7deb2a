package validation

// JSON Schemas for the raw configuration documents. They gate the shape of
// the input; the struct rules and cross-field checks in validation.go run on
// the decoded values afterwards.

var scalarSchema = map[string]any{
	"type": []any{"string", "integer", "number", "boolean"},
}

var stringMapSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": map[string]any{"type": "string"},
}

var scalarMapSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": scalarSchema,
}

func templateSchema(strict bool) map[string]any {
	s := map[string]any{
		"type":     "object",
		"required": []any{"args", "types"},
		"properties": map[string]any{
			"args": map[string]any{
				"type":        "array",
				"minItems":    1,
				"uniqueItems": true,
				"items":       map[string]any{"type": "string", "minLength": 1},
			},
			"types":         stringMapSchema,
			"annotations":   stringMapSchema,
			"translations":  stringMapSchema,
			"default_props": scalarMapSchema,
			"prop_options": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"run_type":   map[string]any{"type": "string"},
			"java":       map[string]any{"type": "string"},
			"jar":        map[string]any{"type": "string"},
			"props_file": map[string]any{"type": "string"},
		},
	}
	if strict {
		s["additionalProperties"] = false
	}
	return s
}

func runSchema(strict bool) map[string]any {
	s := map[string]any{
		"type":     "object",
		"required": []any{"template_type", "args"},
		"properties": map[string]any{
			"template_type": map[string]any{"type": "string", "minLength": 1},
			"args": map[string]any{
				"type":     "object",
				"required": []any{"Tag"},
				"properties": map[string]any{
					"Tag": map[string]any{"type": "string", "minLength": 1},
				},
				"additionalProperties": scalarSchema,
			},
			"props_extra": scalarMapSchema,
		},
	}
	if strict {
		s["additionalProperties"] = false
	}
	return s
}

var configSchema = map[string]any{
	"type":     "object",
	"required": []any{"TemplateData", "RunList"},
	"properties": map[string]any{
		"TemplateData": map[string]any{"type": "object"},
		"RunList": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
}

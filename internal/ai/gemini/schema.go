package gemini

import (
	"github.com/xeipuuv/gojsonschema"
)

// responseSchema describes the object the model must return. match_score may
// arrive as a number or a numeric string and is coerced afterwards.
const responseSchema = `{
  "type": "object",
  "required": ["match_score", "missing_skills", "profile_summary", "improvements"],
  "properties": {
    "match_score": {"type": ["integer", "number", "string"]},
    "missing_skills": {"type": "array", "items": {"type": "string"}},
    "profile_summary": {"type": "string"},
    "improvements": {"type": "array", "items": {"type": "string"}}
  }
}`

var compiledSchema = mustCompileSchema(responseSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic("gemini: invalid response schema: " + err.Error())
	}
	return compiled
}

package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackma2003/edubridge-api/internal/dto"
)

// ErrInvalidImport wraps schema validation failures for imported courses.
var ErrInvalidImport = fmt.Errorf("invalid course import payload")

const courseImportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "description", "level", "modules"],
  "properties": {
    "title": {"type": "string", "minLength": 3, "maxLength": 200},
    "description": {"type": "string", "minLength": 1},
    "level": {"type": "string", "enum": ["beginner", "intermediate", "advanced"]},
    "topics": {"type": "array", "items": {"type": "string"}},
    "languages": {"type": "array", "items": {"type": "string"}},
    "is_published": {"type": "boolean"},
    "modules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "content"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "content": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["type", "title"],
              "properties": {
                "type": {"type": "string", "enum": ["video", "document", "quiz", "assignment"]},
                "title": {"type": "string", "minLength": 1},
                "description": {"type": "string"},
                "url": {"type": "string"},
                "duration": {"type": "integer", "minimum": 0},
                "is_downloadable": {"type": "boolean"}
              }
            }
          }
        }
      }
    }
  }
}`

// courseImporter validates raw JSON course exports against an embedded
// schema before they reach the create path.
type courseImporter struct {
	schema *jsonschema.Schema
}

func newCourseImporter() *courseImporter {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("course-import.json", bytes.NewReader([]byte(courseImportSchema))); err != nil {
		panic(err)
	}
	return &courseImporter{schema: compiler.MustCompile("course-import.json")}
}

// Parse validates and decodes an import payload into a create request.
func (i *courseImporter) Parse(raw []byte) (dto.CourseCreateRequest, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return dto.CourseCreateRequest{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if err := i.schema.Validate(doc); err != nil {
		return dto.CourseCreateRequest{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	var payload dto.CourseCreateRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		return dto.CourseCreateRequest{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return payload, nil
}

package json

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/bububa/ljson"
	"github.com/go-playground/validator/v10"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/pkg/schema"
)

// Encoder parses model output as JSON against a reflected schema.
// Unmarshal is tolerant of the usual LLM artifacts: backtick fences,
// chatter around the object and trailing commas.
type Encoder struct {
	sc       *schema.Schema
	validate *validator.Validate
}

func NewEncoder(req any) (*Encoder, error) {
	sc, err := schema.New(reflect.TypeOf(req))
	if err != nil {
		return nil, err
	}
	return &Encoder{
		sc:       sc,
		validate: validator.New(),
	}, nil
}

func (e *Encoder) Marshal(req any) ([]byte, error) {
	return json.Marshal(req)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return ljson.Unmarshal(llmutils.CleanJSON(bs), ret)
}

func (e *Encoder) Validate(req any) error {
	return e.validate.Struct(req)
}

func (e *Encoder) GetFormatInstructions() string {
	var b strings.Builder
	b.WriteString("\nRespond with JSON in the following JSON schema:\n")
	b.WriteString("```json\n")
	b.WriteString(e.sc.String())
	b.WriteString("\n```")
	b.WriteString("\nMake sure to return an instance of the JSON, not the schema itself.\n")
	b.WriteString("Use the exact field names as they are defined in the schema.\n")
	return b.String()
}

func (e *Encoder) Schema() *schema.Schema {
	return e.sc
}

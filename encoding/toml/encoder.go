package toml

import (
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/pkg/schema"
)

// Encoder round-trips typed values as TOML. Format instructions show the
// model an example instance rather than a schema, since TOML has none.
type Encoder struct {
	reqType  reflect.Type
	validate *validator.Validate
}

func NewEncoder(req any) *Encoder {
	return &Encoder{
		reqType:  reflect.TypeOf(req),
		validate: validator.New(),
	}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return toml.Unmarshal(llmutils.BytesTrimBackticks(bs), ret)
}

func (e *Encoder) Validate(req any) error {
	return e.validate.Struct(req)
}

// GetFormatInstructions renders an example instance, from the type's own
// Faker implementation or gofakeit tags.
func (e *Encoder) GetFormatInstructions() string {
	tValue := reflect.New(e.reqType)
	instance := tValue.Interface()
	if f, ok := tValue.Elem().Interface().(schema.Faker); ok {
		instance = f.Fake()
	} else {
		_ = gofakeit.Struct(instance)
	}
	bs, err := e.Marshal(instance)
	if err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nRespond with TOML in the following TOML schema:\n")
	b.WriteString("```toml\n")
	b.Write(bs)
	b.WriteString("```")
	b.WriteString("\nMake sure to return an instance of the TOML, not the schema itself.\n")
	return b.String()
}

package encoding

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/medassist-ai/medassist/chatmodel"
)

// TypedOutputParser decodes model output into a Go struct using the
// configured schema encoder. Field names come from struct fields or `json`
// tags; a `jsonschema` description tag documents the field for the model.
type TypedOutputParser[T any] struct {
	enc      SchemaEncoder
	name     string
	validate bool
}

var _ chatmodel.OutputParser[any] = (*TypedOutputParser[any])(nil)

func NewTypedOutputParser[T any](sourceType T, mode Mode) (*TypedOutputParser[T], error) {
	enc, err := PredefinedSchemaEncoder(mode, sourceType)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create encoder")
	}

	return &TypedOutputParser[T]{
		enc:  enc,
		name: fmt.Sprintf("%T parser", sourceType),
	}, nil
}

// WithValidation enables struct tag validation after decoding.
func (p *TypedOutputParser[T]) WithValidation(validate bool) {
	p.validate = validate
}

// Parse decodes the model output into the target type.
func (p *TypedOutputParser[T]) Parse(text string) (*T, error) {
	var target T
	if err := p.enc.Unmarshal([]byte(text), &target); err != nil {
		return nil, errors.Wrap(err, "failed to decode")
	}
	if validator, ok := p.enc.(Validator); ok && p.validate {
		if err := validator.Validate(target); err != nil {
			return nil, errors.Wrap(err, "failed to validate")
		}
	}
	return &target, nil
}

// GetFormatInstructions returns the format section for the system prompt.
func (p *TypedOutputParser[T]) GetFormatInstructions() string {
	return p.enc.GetFormatInstructions()
}

// Type identifies this parser class.
func (p *TypedOutputParser[T]) Type() string {
	return p.name
}

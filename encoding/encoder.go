package encoding

import (
	"github.com/cockroachdb/errors"
	jsonenc "github.com/medassist-ai/medassist/encoding/json"
	plainenc "github.com/medassist-ai/medassist/encoding/plain"
	tomlenc "github.com/medassist-ai/medassist/encoding/toml"
	yamlenc "github.com/medassist-ai/medassist/encoding/yaml"
)

// SchemaEncoder marshals typed values and decodes model output back into
// them. GetFormatInstructions returns the prompt section describing the
// expected output format.
type SchemaEncoder interface {
	Marshal(req any) ([]byte, error)
	Unmarshal([]byte, any) error
	GetFormatInstructions() string
}

// Validator is implemented by encoders that support struct tag validation.
type Validator interface {
	Validate(any) error
}

type Mode = string

const (
	ModeJSON             Mode = "json"
	ModeJSONSchema       Mode = "json_schema"
	ModeJSONSchemaStrict Mode = "json_schema_strict" // requires provider support, all props must be required
	ModeYAML             Mode = "yaml"
	ModeTOML             Mode = "toml"
	ModePlainText        Mode = "plain_text"
	ModeCustom           Mode = "custom"
)

// ModeDefault is used when an assistant does not set an output mode.
var ModeDefault = ModeJSONSchema

// PredefinedSchemaEncoder returns the encoder for the mode.
func PredefinedSchemaEncoder(mode Mode, req any) (SchemaEncoder, error) {
	switch mode {
	case ModeJSON, ModeJSONSchema, ModeJSONSchemaStrict:
		return jsonenc.NewEncoder(req)
	case ModeYAML:
		return yamlenc.NewEncoder(req), nil
	case ModeTOML:
		return tomlenc.NewEncoder(req), nil
	case ModePlainText:
		return plainenc.NewEncoder(), nil
	default:
		return nil, errors.New("no predefined encoder")
	}
}

var (
	_ SchemaEncoder = (*jsonenc.Encoder)(nil)
	_ SchemaEncoder = (*plainenc.Encoder)(nil)
	_ SchemaEncoder = (*tomlenc.Encoder)(nil)
	_ SchemaEncoder = (*yamlenc.Encoder)(nil)
)

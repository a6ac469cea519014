package yaml

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/pkg/schema"
	"gopkg.in/yaml.v3"
)

// CommentStyle controls where field descriptions are attached in the
// rendered example instance.
type CommentStyle int

const (
	NoComment CommentStyle = iota
	HeadComment
	LineComment
	FootComment
)

// Encoder round-trips typed values as YAML. Format instructions show the
// model an example instance, optionally annotated with field comments from
// `comment` or `jsonschema` description tags.
type Encoder struct {
	reqType      reflect.Type
	commentStyle CommentStyle
	validate     *validator.Validate
}

func NewEncoder(req any) *Encoder {
	return &Encoder{
		reqType:      reflect.TypeOf(req),
		commentStyle: NoComment,
		validate:     validator.New(),
	}
}

func (e *Encoder) WithCommentStyle(style CommentStyle) *Encoder {
	e.commentStyle = style
	return e
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	if e.commentStyle == NoComment {
		return yaml.Marshal(v)
	}
	node, err := e.commentedNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return yaml.Unmarshal(llmutils.BytesTrimBackticks(bs), ret)
}

func (e *Encoder) Validate(req any) error {
	return e.validate.Struct(req)
}

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
	b.WriteString("\nRespond with YAML in the following YAML schema without comments:\n")
	b.WriteString("```yaml\n")
	b.Write(bs)
	b.WriteString("```")
	b.WriteString("\nMake sure to return an instance of the YAML, not the schema itself.\n")
	return b.String()
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: "null", Tag: "!!null"}
}

// commentedNode builds a mapping node for the struct with per-field comments.
func (e *Encoder) commentedNode(v any) (*yaml.Node, error) {
	val := deref(reflect.ValueOf(v))
	if !val.IsValid() {
		return nullNode(), nil
	}
	if val.Kind() != reflect.Struct {
		return nil, errors.Errorf("expected struct, got %s", val.Kind())
	}

	typ := val.Type()
	root := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)

		yamlKey := field.Tag.Get("yaml")
		if yamlKey == "" || yamlKey == "-" {
			continue
		}

		comment := field.Tag.Get("comment")
		if comment == "" {
			comment = descriptionFromTag(field.Tag.Get("jsonschema"))
		}

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: yamlKey}
		if comment != "" {
			switch e.commentStyle {
			case HeadComment:
				keyNode.HeadComment = comment
			case LineComment:
				keyNode.LineComment = comment
			case FootComment:
				keyNode.FootComment = comment
			}
		}

		root.Content = append(root.Content, keyNode, e.valueNode(val.Field(i)))
	}
	return root, nil
}

func (e *Encoder) valueNode(v reflect.Value) *yaml.Node {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nullNode()
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nullNode()
		}
		v = reflect.ValueOf(v.Interface())
	}

	switch v.Kind() {
	case reflect.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%d", v.Int()), Tag: "!!int"}
	case reflect.Float32, reflect.Float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%f", v.Float()), Tag: "!!float"}
	case reflect.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%t", v.Bool()), Tag: "!!bool"}
	case reflect.Map:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range v.MapKeys() {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%v", key.Interface())}
			node.Content = append(node.Content, keyNode, e.valueNode(v.MapIndex(key)))
		}
		return node
	case reflect.Struct:
		node, _ := e.commentedNode(v.Interface())
		return node
	case reflect.Slice, reflect.Array:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for i := 0; i < v.Len(); i++ {
			node.Content = append(node.Content, e.valueNode(v.Index(i)))
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%v", v.Interface())}
	}
}

// descriptionFromTag extracts the description value from a jsonschema tag.
func descriptionFromTag(tag string) string {
	_, after, ok := strings.Cut(tag, "description=")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(after, ','); i >= 0 {
		after = after[:i]
	}
	return strings.TrimSpace(after)
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

package assistants

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/pkg/schema"
)

// AssistantTool wraps an assistant as a tool,
// so it can be called by another assistant.
type AssistantTool[I chatmodel.ContentProvider, O chatmodel.ContentProvider] struct {
	assistant   TypeableAssistant[O]
	name        string
	description string
	funcParams  *jsonschema.Schema
}

var _ IAssistantTool = (*AssistantTool[chatmodel.InputRequest, chatmodel.OutputResult])(nil)

func NewAssistantTool[I chatmodel.ContentProvider, O chatmodel.ContentProvider](assistant TypeableAssistant[O]) (*AssistantTool[I, O], error) {
	var def I
	sc, err := schema.New(reflect.TypeOf(def))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	t := &AssistantTool[I, O]{
		assistant:   assistant,
		name:        assistant.Name(),
		description: assistant.Description(),
		funcParams:  sc.Parameters,
	}
	return t, nil
}

// WithName sets the name of the tool, when used in a prompt of other Assistants or LLMs.
func (t *AssistantTool[I, O]) WithName(name string) *AssistantTool[I, O] {
	t.name = name
	return t
}

// WithDescription sets the description of the tool, to be used in the prompt of other Assistants or LLMs.
func (t *AssistantTool[I, O]) WithDescription(description string) *AssistantTool[I, O] {
	t.description = description
	return t
}

func (t *AssistantTool[I, O]) Name() string {
	return t.name
}

func (t *AssistantTool[I, O]) Description() string {
	return t.description
}

func (t *AssistantTool[I, O]) Parameters() *jsonschema.Schema {
	return t.funcParams
}

func (t *AssistantTool[I, O]) Call(ctx context.Context, input string) (string, error) {
	return t.CallAssistant(ctx, input)
}

func (t *AssistantTool[I, O]) CallAssistant(ctx context.Context, input string, options ...Option) (string, error) {
	var tin I
	if parser, ok := (any)(&tin).(chatmodel.InputParser); ok {
		if err := parser.ParseInput(input); err != nil {
			return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
		}
	} else {
		// Validate the input against the function parameters
		if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &tin); err != nil {
			return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
		}
	}

	var res O
	_, err := t.assistant.Run(ctx, &CallInput{
		Input:   tin.GetContent(),
		Options: options,
	}, &res)
	if err != nil {
		if val, ok := (any)(&res).(chatmodel.IBaseResult); ok {
			val.SetClarification(llmutils.AddComment("tool", t.Name(), "error", err.Error()))
		} else {
			return "", err
		}
	}

	return chatmodel.Stringify(res), nil
}

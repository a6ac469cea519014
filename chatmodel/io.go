package chatmodel

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// InputRequest is the generic assistant input: a single free-text message.
type InputRequest struct {
	Input string `json:"input" yaml:"input" schema:"input,required" jsonschema:"title=input,description=user request or question."`
}

func NewInputRequest(input string) *InputRequest {
	return &InputRequest{Input: input}
}

func (r *InputRequest) ParseInput(raw string) error {
	err := json.Unmarshal([]byte(raw), r)
	if err != nil {
		return errors.WithMessage(ErrFailedUnmarshalInput, err.Error())
	}
	return nil
}

// GetContent gets the content of the message for the chat history
func (r InputRequest) GetContent() string {
	return r.Input
}

func (InputRequest) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Title = "Input Request"
}

// MCPInputRequest is the input for MCP tools, carrying session routing
// alongside the user message.
type MCPInputRequest struct {
	ChatID    string `json:"chatID" yaml:"chatID" schema:"chatID,required" jsonschema:"title=chatID,description=unique chat session identifier."`
	PatientID string `json:"patientID,omitempty" yaml:"patientID,omitempty" schema:"patientID" jsonschema:"title=patientID,description=optional patient the question is about."`
	Input     string `json:"input" yaml:"input" schema:"input,required" jsonschema:"title=input,description=user request or question."`
}

func (r *MCPInputRequest) ParseInput(raw string) error {
	err := json.Unmarshal([]byte(raw), r)
	if err != nil {
		return errors.WithMessage(ErrFailedUnmarshalInput, err.Error())
	}
	return nil
}

// GetContent gets the content of the message for the chat history
func (r MCPInputRequest) GetContent() string {
	return r.Input
}

func (MCPInputRequest) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Title = "MCP Input Request"
}

// OutputResult is the generic assistant output: a single free-text answer.
type OutputResult struct {
	Content string `json:"content" yaml:"content" jsonschema:"title=content,description=the answer content."`
}

func NewOutputResult(content string) *OutputResult {
	return &OutputResult{Content: content}
}

// GetContent gets the content of the message for the chat history
func (r OutputResult) GetContent() string {
	return r.Content
}

// AdviceResult is the structured output of the clinical assistant.
type AdviceResult struct {
	// Advice is the guidance produced for the user.
	Advice string `json:"advice" yaml:"advice" jsonschema:"title=advice,description=guidance for the user in plain language."`
	// Urgency is one of: routine, urgent, emergency.
	Urgency string `json:"urgency" yaml:"urgency" jsonschema:"title=urgency,description=routine | urgent | emergency."`
	// EscalateToClinician is set when the question must be reviewed by a human.
	EscalateToClinician bool `json:"escalateToClinician" yaml:"escalateToClinician" jsonschema:"title=escalateToClinician,description=true when a clinician must review the case."`
	// Citations lists the guideline sources the advice is grounded on.
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty" jsonschema:"title=citations,description=guideline sources supporting the advice."`
}

// GetContent gets the content of the message for the chat history
func (r AdviceResult) GetContent() string {
	bs, _ := json.Marshal(r)
	return string(bs)
}

func (AdviceResult) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Title = "Advice Result"
}

// BaseClarificationResult can be embedded in typed outputs to let an
// assistant ask a follow-up question instead of answering.
type BaseClarificationResult struct {
	// Confidence is one of: High, Medium, Low.
	Confidence string `json:"confidence,omitempty" yaml:"confidence,omitempty" jsonschema:"title=confidence,description=High | Medium | Low."`
	// Clarification is a follow-up question to the user, set when the input
	// is ambiguous or incomplete.
	Clarification string `json:"clarification,omitempty" yaml:"clarification,omitempty" jsonschema:"title=clarification,description=follow-up question when the input is ambiguous."`
	// Reasoning is a short explanation of how the answer was derived.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty" jsonschema:"title=reasoning,description=short explanation of the answer."`
}

func (r *BaseClarificationResult) SetConfidence(v string) {
	r.Confidence = v
}

func (r *BaseClarificationResult) SetClarification(v string) {
	r.Clarification = v
}

func (r *BaseClarificationResult) SetReasoning(v string) {
	r.Reasoning = v
}

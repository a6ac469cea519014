package triage

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/medassist-ai/medassist/assistants"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/pkg/prompts"
	"github.com/medassist-ai/medassist/tools"
)

// AssistantName is the name of the clinical assistant in prompts and logs.
const AssistantName = "Clinical Triage Assistant"

const clinicalSystemPrompt = `You are a clinical decision-support assistant for a healthcare provider.
Answer the patient's question using the tools available to you:
- look up the clinical guidelines before giving medical guidance, and cite the sources you used;
- fetch the patient history when the question depends on their conditions, allergies or current medications;
- check drug interactions whenever a medication is discussed alongside the patient's current medications.

Rules:
- Ground every medical statement in a tool result. If the guidelines do not cover the question, say so.
- Set urgency to "emergency" and escalate to a clinician for symptoms that need immediate care, such as chest pain, difficulty breathing or signs of stroke.
- Set urgency to "urgent" and escalate when the question needs a clinician's review within a day, including any change to prescription medications.
- Otherwise set urgency to "routine". Escalate whenever you are not confident in the answer.
- Use plain language. Do not diagnose, do not prescribe.`

// AgenticResponder delegates the question to the tool-calling assistant:
// the model decides which clinical tools to invoke and produces a
// structured advice.
type AgenticResponder struct {
	llm       llms.Model
	assistant assistants.TypeableAssistant[chatmodel.AdviceResult]
}

var _ Responder = (*AgenticResponder)(nil)

// NewAgenticResponder creates the assistant-backed responder with the
// clinical toolset. The options are applied to the assistant, typically
// WithStore and WithCallback.
func NewAgenticResponder(llmModel llms.Model, clinicalTools []tools.ITool, options ...assistants.Option) *AgenticResponder {
	sysprompt := prompts.NewPromptTemplate(clinicalSystemPrompt, nil)
	assistant := assistants.NewAssistant[chatmodel.AdviceResult](llmModel, sysprompt, options...).
		WithName(AssistantName).
		WithDescription("Answers clinical questions using guidelines, patient history and drug interaction checks.").
		WithTools(clinicalTools...)

	return &AgenticResponder{
		llm:       llmModel,
		assistant: assistant,
	}
}

// Assistant exposes the underlying assistant, for the MCP surface.
func (r *AgenticResponder) Assistant() assistants.TypeableAssistant[chatmodel.AdviceResult] {
	return r.assistant
}

// SupportsFunctionCalling reports whether the model can drive the tools.
func (r *AgenticResponder) SupportsFunctionCalling() bool {
	return r.llm.GetProviderType().Supports(llms.CapabilityFunctionCalling)
}

func (r *AgenticResponder) Mode() Mode {
	return ModeAgentic
}

func (r *AgenticResponder) Respond(ctx context.Context, input string) (*chatmodel.AdviceResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.New("invalid request: empty input")
	}

	var res chatmodel.AdviceResult
	_, err := r.assistant.Run(ctx, &assistants.CallInput{Input: input}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

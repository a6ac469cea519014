package triage

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llms"
)

// Urgency levels of an advice.
const (
	UrgencyRoutine   = "routine"
	UrgencyUrgent    = "urgent"
	UrgencyEmergency = "emergency"
)

// rule is a keyword branch: the first matching rule selects the system
// prompt and the urgency of the answer. Rules are evaluated in order.
type rule struct {
	name     string
	keywords []string
	urgency  string
	escalate bool
	// static is returned without a model call, set on the emergency rule.
	static string
	prompt string
}

const medicationPrompt = `You are a patient-facing medication assistant.
Answer questions about medications: purpose, typical dosing, common side effects
and what to do about a missed dose. Keep the answer short and in plain language.
Always remind the user to confirm changes with their pharmacist or prescriber.
Do not diagnose. Do not suggest starting or stopping a prescription medication.`

const appointmentPrompt = `You are a clinic scheduling assistant.
Help the user with appointments, referrals, preparation for a visit and what to
bring. Keep the answer short and in plain language. You cannot access the
scheduling system, so direct the user to the clinic portal or phone line for
the actual booking.`

const generalPrompt = `You are a patient-facing health information assistant.
Answer general health questions in plain language with self-care guidance where
appropriate. Keep the answer short. Recommend seeing a clinician when symptoms
persist or worsen. Do not diagnose and do not prescribe.`

const emergencyAdvice = `Your message describes symptoms that may be a medical emergency. ` +
	`Call your local emergency number or go to the nearest emergency department now. ` +
	`Do not wait for an online answer.`

// scriptedRules is the ordered branch table. The emergency rule must stay
// first: it short-circuits without a model call.
var scriptedRules = []rule{
	{
		name: "emergency",
		keywords: []string{
			"chest pain", "pressure in my chest", "difficulty breathing",
			"can't breathe", "shortness of breath", "stroke", "face drooping",
			"slurred speech", "unconscious", "not breathing", "severe bleeding",
			"anaphyla", "overdose", "suicid",
		},
		urgency:  UrgencyEmergency,
		escalate: true,
		static:   emergencyAdvice,
	},
	{
		name: "medication",
		keywords: []string{
			"medication", "medicine", "drug", "dose", "dosage", "pill",
			"prescription", "refill", "side effect", "interaction",
		},
		urgency: UrgencyRoutine,
		prompt:  medicationPrompt,
	},
	{
		name: "appointment",
		keywords: []string{
			"appointment", "schedule", "reschedule", "booking", "visit",
			"referral", "opening hours",
		},
		urgency: UrgencyRoutine,
		prompt:  appointmentPrompt,
	},
	{
		// catch-all, keep last
		name:    "general",
		urgency: UrgencyRoutine,
		prompt:  generalPrompt,
	},
}

// ScriptedResponder is the hardcoded branch: keyword rules pick a canned
// system prompt and a single chat completion produces the answer. No tools,
// no history, no structured output from the model.
type ScriptedResponder struct {
	llm       llms.Model
	rules     []rule
	maxTokens int
}

var _ Responder = (*ScriptedResponder)(nil)

// NewScriptedResponder creates the rule-based responder.
func NewScriptedResponder(llmModel llms.Model) *ScriptedResponder {
	return &ScriptedResponder{
		llm:       llmModel,
		rules:     scriptedRules,
		maxTokens: 1024,
	}
}

// WithMaxTokens overrides the completion token limit.
func (r *ScriptedResponder) WithMaxTokens(maxTokens int) *ScriptedResponder {
	r.maxTokens = maxTokens
	return r
}

func (r *ScriptedResponder) Mode() Mode {
	return ModeScripted
}

func (r *ScriptedResponder) Respond(ctx context.Context, input string) (*chatmodel.AdviceResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.New("invalid request: empty input")
	}

	matched := r.match(input)

	logger.ContextKV(ctx, xlog.DEBUG,
		"responder", "scripted",
		"rule", matched.name,
		"input", slices.StringUpto(input, 64),
	)

	if matched.static != "" {
		return &chatmodel.AdviceResult{
			Advice:              matched.static,
			Urgency:             matched.urgency,
			EscalateToClinician: matched.escalate,
		}, nil
	}

	resp, err := r.llm.GenerateContent(ctx,
		[]llms.Message{
			llms.MessageFromTextParts(llms.RoleSystem, matched.prompt),
			llms.MessageFromTextParts(llms.RoleHuman, input),
		},
		llms.WithMaxTokens(r.maxTokens),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return nil, errors.New("scripted responder: LLM returned empty response")
	}

	return &chatmodel.AdviceResult{
		Advice:              resp.Choices[0].Content,
		Urgency:             matched.urgency,
		EscalateToClinician: matched.escalate,
	}, nil
}

// match returns the first rule with a keyword found in the input,
// the catch-all rule matches everything.
func (r *ScriptedResponder) match(input string) rule {
	lowered := strings.ToLower(input)
	for _, rl := range r.rules {
		if len(rl.keywords) == 0 {
			return rl
		}
		for _, kw := range rl.keywords {
			if strings.Contains(lowered, kw) {
				return rl
			}
		}
	}
	return r.rules[len(r.rules)-1]
}

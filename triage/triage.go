// Package triage routes a patient question to one of two responders:
// a scripted keyword-rule branch, or an agentic assistant that lets the
// model pick the clinical tools it needs.
package triage

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/medassist-ai/medassist/chatmodel"
)

var logger = xlog.NewPackageLogger("github.com/medassist-ai/medassist", "triage")

// Mode selects the responder.
type Mode string

const (
	// ModeScripted answers with keyword rules and a single model call.
	ModeScripted Mode = "scripted"
	// ModeAgentic answers with the tool-calling assistant.
	ModeAgentic Mode = "agentic"
	// ModeAuto prefers agentic when the model supports function calling.
	ModeAuto Mode = "auto"
)

// ParseMode parses a mode string, empty defaults to auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeScripted, ModeAgentic, ModeAuto:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	default:
		return "", errors.Newf("unknown triage mode: %s", s)
	}
}

// Responder answers a triage question within a chat session.
type Responder interface {
	// Mode returns the routing mode the responder implements.
	Mode() Mode
	// Respond produces the advice for the user input.
	Respond(ctx context.Context, input string) (*chatmodel.AdviceResult, error)
}

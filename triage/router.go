package triage

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/metricskey"
)

// Router selects a responder per request.
type Router struct {
	scripted *ScriptedResponder
	agentic  *AgenticResponder

	defaultMode Mode
}

// NewRouter creates a router over the two responders. Either may be nil
// when the deployment disables that mode.
func NewRouter(scripted *ScriptedResponder, agentic *AgenticResponder, defaultMode Mode) *Router {
	if defaultMode == "" {
		defaultMode = ModeAuto
	}
	return &Router{
		scripted:    scripted,
		agentic:     agentic,
		defaultMode: defaultMode,
	}
}

// Respond routes the input to the responder for the mode,
// empty mode uses the router default.
func (r *Router) Respond(ctx context.Context, mode Mode, input string) (*chatmodel.AdviceResult, error) {
	if mode == "" {
		mode = r.defaultMode
	}

	responder, err := r.pick(mode)
	if err != nil {
		return nil, err
	}
	routed := string(responder.Mode())

	started := time.Now()
	defer metricskey.PerfTriageRun.MeasureSince(started, routed)
	metricskey.StatsTriageRequests.IncrCounter(1, routed)

	res, err := responder.Respond(ctx, input)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"mode", routed,
			"status", "triage_failed",
			"input", slices.StringUpto(input, 64),
			"err", err.Error(),
		)
		return nil, err
	}

	if res.EscalateToClinician {
		metricskey.StatsTriageEscalations.IncrCounter(1, routed)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"mode", routed,
		"urgency", res.Urgency,
		"escalate", res.EscalateToClinician,
		"elapsed", time.Since(started).String(),
	)

	return res, nil
}

// pick resolves the mode to a responder. Auto prefers the agentic
// responder when the model supports function calling.
func (r *Router) pick(mode Mode) (Responder, error) {
	switch mode {
	case ModeScripted:
		if r.scripted == nil {
			return nil, errors.New("scripted mode is not configured")
		}
		return r.scripted, nil
	case ModeAgentic:
		if r.agentic == nil {
			return nil, errors.New("agentic mode is not configured")
		}
		return r.agentic, nil
	case ModeAuto:
		if r.agentic != nil && r.agentic.SupportsFunctionCalling() {
			return r.agentic, nil
		}
		if r.scripted != nil {
			return r.scripted, nil
		}
		return nil, errors.New("no responder is configured")
	default:
		return nil, errors.Newf("unknown triage mode: %s", mode)
	}
}

package history

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/invopop/jsonschema"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/internal/domain/patients"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/pkg/schema"
	"github.com/medassist-ai/medassist/tools"
)

const ToolName = "fetch-patient-history"

// FetchRequest represents the tool input.
// When PatientID is empty, the patient from the chat session is used.
type FetchRequest struct {
	PatientID string `json:"PatientID,omitempty" yaml:"PatientID,omitempty" jsonschema:"title=PatientID,description=The ID of the patient. Defaults to the patient of the current session."`
}

// FetchResult represents the patient history.
type FetchResult struct {
	History *patients.History `json:"history" yaml:"History" jsonschema:"title=history,description=The patient profile with past encounters."`
}

func (r *FetchResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *FetchResult) String() string {
	if r.History == nil {
		return ""
	}
	return r.History.Summary()
}

// Tool fetches the patient profile and encounter history.
type Tool struct {
	name        string
	description string
	funcParams  *jsonschema.Schema

	svc *patients.Service
}

var _ tools.Tool[FetchRequest, FetchResult] = (*Tool)(nil)

func New(svc *patients.Service) (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(FetchRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Fetches the patient record: conditions, allergies, active medications and past encounters.",
		funcParams:  sc.Parameters,
		svc:         svc,
	}, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() *jsonschema.Schema {
	return t.funcParams
}

func (t *Tool) Run(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	tenantID := chatmodel.GetTenantID(ctx)
	if tenantID == "" {
		return nil, errors.WithStack(chatmodel.ErrInvalidChatContext)
	}

	patientID := values.StringsCoalesce(req.PatientID, chatmodel.GetPatientID(ctx))
	if patientID == "" {
		return nil, errors.New("invalid request: no patient in the session, PatientID is required")
	}

	h, err := t.svc.GetHistory(ctx, tenantID, patientID)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to fetch history for patient %s", patientID)
	}
	return &FetchResult{History: h}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req FetchRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}

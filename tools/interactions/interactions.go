package interactions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/pkg/schema"
	"github.com/medassist-ai/medassist/tools"
)

const ToolName = "check-drug-interactions"

// Severity of a drug interaction.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// CheckRequest represents the tool input.
type CheckRequest struct {
	Medications []string `json:"Medications" yaml:"Medications" jsonschema:"title=Medications,description=The list of medication names to check against each other."`
}

// Interaction is a known interaction between two medications.
type Interaction struct {
	DrugA    string   `json:"drug_a" yaml:"DrugA"`
	DrugB    string   `json:"drug_b" yaml:"DrugB"`
	Severity Severity `json:"severity" yaml:"Severity"`
	Note     string   `json:"note" yaml:"Note"`
}

// CheckResult represents the interactions found between the medications.
type CheckResult struct {
	Interactions []Interaction `json:"interactions" yaml:"Interactions" jsonschema:"title=interactions,description=The known interactions between the provided medications."`
}

func (r *CheckResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *CheckResult) String() string {
	if len(r.Interactions) == 0 {
		return "No known interactions found."
	}
	var buf bytes.Buffer
	for _, i := range r.Interactions {
		fmt.Fprintf(&buf, "- %s + %s [%s]: %s\n", i.DrugA, i.DrugB, i.Severity, i.Note)
	}
	return buf.String()
}

type pair struct {
	a, b string
}

// rules is a curated interaction list for the bundled formulary.
// Production deployments should load a full interaction database.
var rules = map[pair]Interaction{
	{"warfarin", "aspirin"}:         {Severity: SeverityMajor, Note: "Increased risk of bleeding. Avoid combination unless specifically indicated."},
	{"warfarin", "ibuprofen"}:       {Severity: SeverityMajor, Note: "NSAIDs increase bleeding risk with anticoagulants."},
	{"lisinopril", "spironolacto"}:  {Severity: SeverityModerate, Note: "Risk of hyperkalemia. Monitor potassium."},
	{"lisinopril", "ibuprofen"}:     {Severity: SeverityModerate, Note: "NSAIDs may reduce the antihypertensive effect and worsen renal function."},
	{"metformin", "contrast"}:       {Severity: SeverityMajor, Note: "Hold metformin around iodinated contrast due to lactic acidosis risk."},
	{"simvastatin", "clarithromy"}:  {Severity: SeverityMajor, Note: "Macrolides raise statin levels, risk of rhabdomyolysis."},
	{"atorvastatin", "clarithromy"}: {Severity: SeverityModerate, Note: "Consider statin dose reduction while on the macrolide."},
	{"levothyroxine", "calcium"}:    {Severity: SeverityMinor, Note: "Separate administration by at least 4 hours."},
	{"warfarin", "clarithromy"}:     {Severity: SeverityMajor, Note: "Macrolides potentiate warfarin, monitor INR closely."},
	{"lisinopril", "potassium"}:     {Severity: SeverityModerate, Note: "Risk of hyperkalemia with potassium supplements."},
}

// Tool checks a medication list for known pairwise interactions.
type Tool struct {
	name        string
	description string
	funcParams  *jsonschema.Schema
}

var _ tools.Tool[CheckRequest, CheckResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(CheckRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Checks a list of medications for known pairwise drug interactions.",
		funcParams:  sc.Parameters,
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

func (t *Tool) Run(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	if len(req.Medications) < 2 {
		return nil, errors.New("invalid request: at least two medications are required")
	}

	res := &CheckResult{}
	for i := 0; i < len(req.Medications); i++ {
		for j := i + 1; j < len(req.Medications); j++ {
			if found, ok := lookup(req.Medications[i], req.Medications[j]); ok {
				res.Interactions = append(res.Interactions, found)
			}
		}
	}
	return res, nil
}

// lookup matches the pair in both orders, on normalized name prefixes.
func lookup(a, b string) (Interaction, bool) {
	na := normalize(a)
	nb := normalize(b)
	for key, rule := range rules {
		if (strings.HasPrefix(na, key.a) && strings.HasPrefix(nb, key.b)) ||
			(strings.HasPrefix(nb, key.a) && strings.HasPrefix(na, key.b)) {
			rule.DrugA = a
			rule.DrugB = b
			return rule, true
		}
	}
	return Interaction{}, false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req CheckRequest
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

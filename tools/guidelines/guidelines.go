package guidelines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/pkg/schema"
	"github.com/medassist-ai/medassist/rag"
	"github.com/medassist-ai/medassist/tools"
)

const ToolName = "fetch-guidelines"

// DefaultTopK is the number of excerpts returned per query.
const DefaultTopK = 4

// FetchRequest represents the tool input.
type FetchRequest struct {
	Query string `json:"Query" yaml:"Query" jsonschema:"title=Query,description=The clinical topic or question to look up in the guidelines."`
	TopK  int    `json:"TopK,omitempty" yaml:"TopK,omitempty" jsonschema:"title=TopK,description=The maximum number of excerpts to return."`
}

// Excerpt is a retrieved guideline fragment.
type Excerpt struct {
	Source string  `json:"source" yaml:"Source"`
	Title  string  `json:"title" yaml:"Title"`
	Text   string  `json:"text" yaml:"Text"`
	Score  float32 `json:"score" yaml:"Score"`
}

// FetchResult represents the retrieved guideline excerpts.
type FetchResult struct {
	Excerpts []Excerpt `json:"excerpts" yaml:"Excerpts" jsonschema:"title=excerpts,description=The guideline excerpts most relevant to the query."`
}

func (r *FetchResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *FetchResult) String() string {
	var buf bytes.Buffer
	for _, e := range r.Excerpts {
		fmt.Fprintf(&buf, "- SOURCE: %s (%s)\n", e.Title, e.Source)
		fmt.Fprintf(&buf, "  SCORE: %f\n", e.Score)
		fmt.Fprintf(&buf, "  TEXT: %s\n", e.Text)
	}
	return buf.String()
}

// Tool retrieves clinical guideline excerpts from the vector store.
type Tool struct {
	name        string
	description string
	funcParams  *jsonschema.Schema

	retriever  rag.Retriever
	collection string
	topK       int
}

var _ tools.Tool[FetchRequest, FetchResult] = (*Tool)(nil)

func New(retriever rag.Retriever, collection string) (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(FetchRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Retrieves the clinical guideline excerpts most relevant to a medical topic or question.",
		funcParams:  sc.Parameters,
		retriever:   retriever,
		collection:  collection,
		topK:        DefaultTopK,
	}, nil
}

func (t *Tool) WithTopK(topK int) *Tool {
	t.topK = topK
	return t
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
	if req.Query == "" {
		return nil, errors.New("invalid request: empty query")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = t.topK
	}

	found, err := t.retriever.Query(ctx, t.collection, req.Query, topK)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to query guidelines")
	}

	res := &FetchResult{}
	for _, r := range found {
		res.Excerpts = append(res.Excerpts, Excerpt{
			Source: r.Metadata["source"],
			Title:  r.Metadata["title"],
			Text:   r.Text,
			Score:  r.Score,
		})
	}
	return res, nil
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

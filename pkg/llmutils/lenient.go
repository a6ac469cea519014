package llmutils

import (
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
)

// UnmarshalLenient decodes model output into v, tolerating the usual
// model sloppiness: chatter around the JSON, code fences, and truncated
// or unbalanced documents.
func UnmarshalLenient(bs []byte, v any) error {
	cleaned := CleanJSON(BytesTrimBackticks(bs))
	if err := json.Unmarshal(cleaned, v); err == nil {
		return nil
	}
	if err := ljson.Unmarshal(cleaned, v); err != nil {
		return errors.WithMessage(err, "failed to unmarshal model output")
	}
	return nil
}

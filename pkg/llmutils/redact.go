package llmutils

import (
	"slices"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// phiFields are JSON fields that may carry protected health information.
// Payloads pass through RedactPHI before they reach logs or traces.
var phiFields = []string{
	"patient_name",
	"first_name",
	"last_name",
	"date_of_birth",
	"dob",
	"ssn",
	"mrn",
	"phone",
	"email",
	"address",
}

const redactedValue = "[REDACTED]"

// RedactPHI overwrites well-known identifying fields in a JSON payload,
// at any nesting depth. Non-JSON input is returned unchanged, redaction is
// best effort.
func RedactPHI(js string) string {
	if !gjson.Valid(js) {
		return js
	}
	for _, path := range phiPaths(gjson.Parse(js), "") {
		if res, err := sjson.Set(js, path, redactedValue); err == nil {
			js = res
		}
	}
	return js
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// phiPaths walks objects and arrays collecting the paths of PHI fields.
func phiPaths(v gjson.Result, prefix string) []string {
	var paths []string
	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			path := joinPath(prefix, key.String())
			if slices.Contains(phiFields, key.String()) {
				paths = append(paths, path)
			} else {
				paths = append(paths, phiPaths(value, path)...)
			}
			return true
		})
	case v.IsArray():
		i := 0
		v.ForEach(func(_, value gjson.Result) bool {
			paths = append(paths, phiPaths(value, joinPath(prefix, strconv.Itoa(i)))...)
			i++
			return true
		})
	}
	return paths
}

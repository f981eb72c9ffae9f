package rest

import (
	"encoding/json"
	"net/http"
)

// DefaultMaxBodyBytes bounds request bodies when a handler is built without
// an explicit limit. Snapshot imports are the largest payloads.
const DefaultMaxBodyBytes int64 = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeAttachment sends v as a downloadable JSON file.
func writeAttachment(w http.ResponseWriter, filename string, v any) {
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v) //nolint:errcheck
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

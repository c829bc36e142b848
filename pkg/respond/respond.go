package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
)

const fallbackBody = `{"error":"failed to encode response"}` + "\n"

// JSON encodes data before touching the response, so an unencodable value
// yields a 500 instead of a truncated body under the intended status.
func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(fallbackBody))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}

// Message writes a {"message": ...} confirmation body.
func Message(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"message": message})
}

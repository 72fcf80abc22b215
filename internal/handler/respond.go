package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/autoagenda/internal/websocket"
)

const maxBodyBytes = 1 << 20

// Notifier receives a message for every change to an owner's data.
type Notifier interface {
	Broadcast(ownerID int64, msg websocket.Message)
}

type nopNotifier struct{}

func (nopNotifier) Broadcast(int64, websocket.Message) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// readText returns the free text of a from-text request: the text query
// parameter, a JSON string body, or a JSON object with a text field.
func readText(w http.ResponseWriter, r *http.Request) (string, error) {
	if q := strings.TrimSpace(r.URL.Query().Get("text")); q != "" {
		return q, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return "", errors.New("text is required")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", errors.New("text must be a string or an object with a text field")
		}
		text = obj.Text
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("text is required")
	}
	return text, nil
}

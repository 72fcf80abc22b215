package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/autoagenda/internal/logging"
)

func TestRequestLoggerAssignsID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "info", "text")

	var inner string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside")
		inner = w.Header().Get(requestIDHeader)
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/tasks/9", nil))

	id := rec.Header().Get(requestIDHeader)
	if id == "" || id != inner {
		t.Fatalf("request id = %q, inner = %q", id, inner)
	}

	out := buf.String()
	if strings.Count(out, "request_id="+id) != 2 {
		t.Errorf("expected both lines tagged with the request id: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=404") {
		t.Errorf("expected a warn line with status 404: %s", out)
	}
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogger(logging.New(&buf, "info", "text"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, "given-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get(requestIDHeader) != "given-id" {
		t.Errorf("request id = %q, want given-id", rec.Header().Get(requestIDHeader))
	}
	if !strings.Contains(buf.String(), "level=INFO") {
		t.Errorf("expected info line: %s", buf.String())
	}
}

package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 202, map[string]string{"job_id": "x-1"})

	if rec.Code != 202 {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["job_id"] != "x-1" {
		t.Errorf("job_id = %q, want x-1", body["job_id"])
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 400, "bad input")

	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if er.Error != "bad input" {
		t.Errorf("error = %q, want bad input", er.Error)
	}
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"url":"abc"}`))
	var body struct {
		URL string `json:"url"`
	}
	if err := DecodeJSON(req, &body); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if body.URL != "abc" {
		t.Errorf("url = %q, want abc", body.URL)
	}

	bad := httptest.NewRequest("POST", "/", strings.NewReader("{nope"))
	if err := DecodeJSON(bad, &body); err == nil {
		t.Error("DecodeJSON accepted malformed body")
	}
}

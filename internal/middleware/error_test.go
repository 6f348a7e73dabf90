package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "passes healthy responses through",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "recovers string panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("donation repository unavailable")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "recovers runtime panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var m map[string]string
				m["k"] = "v"
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw := ErrorHandler(zap.NewNop())(tt.handler)
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/donations", nil))

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestErrorHandler_PanicBody(t *testing.T) {
	t.Parallel()

	mw := ErrorHandler(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/donations", nil))

	resp := w.Result()
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if body.Error != "Internal Server Error" {
		t.Errorf("error = %q, want Internal Server Error", body.Error)
	}
	if body.Message == "boom" {
		t.Error("panic value must not leak into the response body")
	}
	if body.Path != "/api/v1/donations" {
		t.Errorf("path = %q", body.Path)
	}
	if body.Timestamp == "" {
		t.Error("timestamp should be set")
	}
}

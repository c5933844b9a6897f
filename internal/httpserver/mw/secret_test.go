package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireSecret(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
	}{
		{
			name:       "matching secret passes",
			configured: "s3cret",
			sent:       "s3cret",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header is a 404",
			configured: "s3cret",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrong secret is a 404",
			configured: "s3cret",
			sent:       "nope",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unconfigured secret disables the route",
			sent:       "anything",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireSecret(tt.configured, nopLogger{})(next)

			req := httptest.NewRequest(http.MethodGet, "/api/debug-check", nil)
			if tt.sent != "" {
				req.Header.Set(SecretHeader, tt.sent)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

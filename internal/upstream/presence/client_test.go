package presence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupMapsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/123456789" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"discord_status": "online",
				"activities": [
					{"type": 2, "name": "Spotify", "state": "ignored"},
					{"type": 0, "name": "Cities: Skylines", "state": "Building a roundabout"}
				],
				"listening_to_spotify": true,
				"spotify": {"song": "Resonance", "artist": "Home"}
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)

	l, err := c.Lookup(context.Background(), "123456789")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if l.Status != "online" {
		t.Errorf("Status = %q, want online", l.Status)
	}
	if l.Activity != "Cities: Skylines (Building a roundabout)" {
		t.Errorf("Activity = %q, want playing descriptor", l.Activity)
	}
	if l.Listening != "Resonance by Home" {
		t.Errorf("Listening = %q, want song descriptor", l.Listening)
	}
}

func TestLookupUnknownStatusDegradesToOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": {"discord_status": "invisible"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)

	l, err := c.Lookup(context.Background(), "42")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if l.Status != "offline" {
		t.Errorf("Status = %q, want offline", l.Status)
	}
	if l.Activity != "" || l.Listening != "" {
		t.Errorf("Activity/Listening should be empty, got %q / %q", l.Activity, l.Listening)
	}
}

func TestLookupFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "upstream reports failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success": false}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.Client(), srv.URL)
			if _, err := c.Lookup(context.Background(), "42"); err == nil {
				t.Fatal("Lookup should return an error")
			}
		})
	}
}

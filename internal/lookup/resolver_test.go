package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	var gotAccept, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"203.0.113.7","city":"Frankfurt","org":"AS24940 Hetzner Online GmbH"}`))
	}))
	defer srv.Close()

	ext, err := NewResolver(srv.URL, "", time.Second).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ext.IP)
	assert.Equal(t, "AS24940 Hetzner Online GmbH", ext.Org)
	assert.Equal(t, "application/json", gotAccept)
	assert.Empty(t, gotAuth)
}

func TestResolver_SendsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	defer srv.Close()

	_, err := NewResolver(srv.URL, "s3cret", time.Second).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", gotAuth)
}

func TestResolver_AcceptsAny2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	defer srv.Close()

	ext, err := NewResolver(srv.URL, "", time.Second).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ext.IP)
}

func TestResolver_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"rate limited"}`, "HTTP 429"},
		{"redirect without location", http.StatusMultipleChoices, `{"ip":"203.0.113.7"}`, "HTTP 300"},
		{"not json", http.StatusOK, `<html>hello</html>`, "decode"},
		{"missing ip", http.StatusOK, `{"org":"AS15169 Google LLC"}`, ErrNoIP.Error()},
		{"blank ip", http.StatusOK, `{"ip":"  "}`, ErrNoIP.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			ext, err := NewResolver(srv.URL, "", time.Second).Resolve(context.Background())
			require.Error(t, err)
			assert.Nil(t, ext)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolver_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewResolver(url, "", time.Second).Resolve(context.Background())
	assert.Error(t, err)
}

func TestResolver_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewResolver(srv.URL, "", 50*time.Millisecond).Resolve(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

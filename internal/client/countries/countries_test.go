package countries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProvider_Fetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"Latvia","code":"LV","dial_code":"+371","flag":"🇱🇻"},
			{"name":"","code":"XX","dial_code":"+0"}
		]`))
	})

	list, err := NewHTTPProvider(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "+371", list[0].DialCode)
	assert.Equal(t, "LV", list[0].Code)
}

func TestHTTPProvider_Errors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		"json":   func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{`)) },
		"empty":  func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`[]`)) },
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, h)
			_, err := NewHTTPProvider(srv.URL).Fetch(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestWithFallback_UsesStaticOnFailure(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	list, err := WithFallback(NewHTTPProvider(srv.URL), time.Second, logging.Nop{}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Static, list)
}

func TestWithFallback_TimeoutDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	list, err := WithFallback(NewHTTPProvider(srv.URL), 50*time.Millisecond, logging.Nop{}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Static, list)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithFallback_PassesThroughSuccess(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Estonia","code":"EE","dial_code":"+372","flag":""}]`))
	})

	list, err := WithFallback(NewHTTPProvider(srv.URL), time.Second, logging.Nop{}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Estonia", list[0].Name)
}

func TestStaticProvider_ReturnsCopy(t *testing.T) {
	list, err := StaticProvider{}.Fetch(context.Background())
	require.NoError(t, err)
	list[0].Name = "changed"
	assert.Equal(t, "United States", Static[0].Name)
}

func TestByDialCode(t *testing.T) {
	c, ok := ByDialCode(Static, "+44")
	require.True(t, ok)
	assert.Equal(t, "GB", c.Code)

	_, ok = ByDialCode(Static, "+999")
	assert.False(t, ok)
}

package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSolveSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://images.example.com/c.jpg", r.URL.Query().Get("image"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"KXTRPM","solved":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())

	text, err := client.Solve(context.Background(), "https://images.example.com/c.jpg")
	require.NoError(t, err)
	assert.Equal(t, "KXTRPM", text)
}

func TestSolveNotSolved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"","solved":false}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())

	text, err := client.Solve(context.Background(), "img")
	require.NoError(t, err)
	assert.Equal(t, NotSolved, text)
}

func TestSolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())

	_, err := client.Solve(context.Background(), "img")
	assert.Error(t, err)
}

package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompleteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Here is a plan."}}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	reply, err := client.Complete(context.Background(), "help me plan my day")
	assert.NoError(t, err)
	assert.Equal(t, "Here is a plan.", reply)
}

func TestCompleteRetriesOn5xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"second try"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	reply, err := client.Complete(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, "second try", reply)
	assert.Equal(t, 2, calls)
}

func TestCompleteTerminalFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	client := NewClient("wrong-key", srv.URL)
	_, err := client.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	// 4xx is terminal, no retry.
	assert.Equal(t, 1, calls)
}

func TestCompleteProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient("test-key", srv.URL)
	_, err := client.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	_, err := client.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

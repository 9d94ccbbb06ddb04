package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText, gotMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		gotMode = r.PostForm.Get("parse_mode")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	n := NewNotifier("123:abc", "42", server.URL)
	require.NoError(t, n.PublishDigest(context.Background(), "*Build* done"))

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "42", gotChat)
	assert.Equal(t, "*Build* done", gotText)
	assert.Equal(t, "Markdown", gotMode)
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	err := NewNotifier("bad", "42", server.URL).PublishDigest(context.Background(), "hi")
	assert.ErrorContains(t, err, "401")

	err = NewNotifier("", "42", server.URL).PublishDigest(context.Background(), "hi")
	assert.ErrorContains(t, err, "misconfigured")
}

package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/mirova/internal/genai"
)

func TestGeminiGenerator_ChatSendsImagesBeforeText(t *testing.T) {
	var got struct {
		Contents []genai.Content `json:"contents"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"a cat"}]}}]}`)
	}))
	defer srv.Close()

	client, err := genai.New(genai.Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	gen := NewGeminiGenerator(client)

	reply, err := gen.GenerateChatReply(context.Background(), []Message{
		{ID: "1", Role: RoleUser, Text: "what is this?", Images: []string{"aW1n"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a cat", reply)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	parts := got.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	assert.Equal(t, "what is this?", parts[1].Text)
}

func TestGeminiGenerator_ImplementsGenerator(t *testing.T) {
	var _ Generator = (*GeminiGenerator)(nil)
}

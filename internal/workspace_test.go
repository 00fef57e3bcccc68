package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T, kv KVStore) *Workspace {
	t.Helper()
	return NewWorkspace(context.Background(), kv, WorkspaceOptions{IDs: &SequenceIDs{Prefix: "w"}})
}

func TestNewWorkspace(t *testing.T) {
	ws := newTestWorkspace(t, NewMemoryKV())

	assert.Equal(t, 1, ws.Chat.Len())
	assert.Equal(t, 1, ws.Image.Len())
	assert.Equal(t, 1, ws.Coder.Len())
	assert.Equal(t, 0, ws.History.Len())
	assert.Equal(t, ThemeDark, ws.Theme.Theme())
	assert.Equal(t, "Telugu", ws.STT.Language())
	assert.Empty(t, ws.History.Identity())
}

func TestWorkspace_RestoresSignedInHistory(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "mirova-user", `{"firstName":"Ada","lastName":"L","email":"ada@example.com"}`))
	require.NoError(t, kv.Set(ctx, "mirova-history-ada@example.com",
		`[{"id":"h1","feature":"Mirova Coder","payload":{"id":"c1","name":"Sort","prompt":"sort","result":"ok","language":"Go"},"timestamp":"2025-01-02T03:04:05.000Z"}]`))

	ws := newTestWorkspace(t, kv)

	assert.Equal(t, "ada@example.com", ws.History.Identity())
	assert.Equal(t, 1, ws.History.Len())
}

func TestWorkspace_HistoryFollowsIdentity(t *testing.T) {
	ctx := context.Background()
	ws := newTestWorkspace(t, NewMemoryKV())

	require.NoError(t, ws.Auth.Login(ctx, AuthUser{Email: "a@x"}))
	ws.History.Append(ctx, FeatureCoder, CoderSession{ID: "1"})

	require.NoError(t, ws.Auth.Login(ctx, AuthUser{Email: "b@x"}))
	assert.Equal(t, "b@x", ws.History.Identity())
	assert.Equal(t, 0, ws.History.Len())

	require.NoError(t, ws.Auth.Logout(ctx))
	assert.Empty(t, ws.History.Identity())
	assert.Equal(t, 0, ws.History.Len())

	require.NoError(t, ws.Auth.Login(ctx, AuthUser{Email: "a@x"}))
	assert.Equal(t, 1, ws.History.Len())
}

func TestWorkspace_Restore(t *testing.T) {
	chat := CreateTestChatSession("chat-old")
	image := CreateTestImageSession("img-old", "a lighthouse")
	code := CreateTestCoderSession("code-old", "fizzbuzz")
	stt := SttResult{Language: "Hindi", Prompt: "memo.webm", Result: SttText{Text: "namaste"}}

	tests := []struct {
		name        string
		item        HistoryItem
		wantFeature Feature
		check       func(t *testing.T, ws *Workspace)
	}{
		{
			name:        "chat",
			item:        CreateTestHistoryItem("h1", FeatureChat, chat),
			wantFeature: FeatureChat,
			check: func(t *testing.T, ws *Workspace) {
				require.Equal(t, 2, ws.Chat.Len())
				active := ws.Chat.Active()
				assert.NotEqual(t, "chat-old", active.ID)
				assert.Equal(t, chat.Messages, active.Messages)
				assert.Equal(t, chat.Name, active.Name)
			},
		},
		{
			name:        "image",
			item:        CreateTestHistoryItem("h2", FeatureImage, image),
			wantFeature: FeatureImage,
			check: func(t *testing.T, ws *Workspace) {
				require.Equal(t, 2, ws.Image.Len())
				active := ws.Image.Active()
				assert.NotEqual(t, "img-old", active.ID)
				assert.Equal(t, image.GeneratedImage, active.GeneratedImage)
			},
		},
		{
			name:        "coder",
			item:        CreateTestHistoryItem("h3", FeatureCoder, code),
			wantFeature: FeatureCoder,
			check: func(t *testing.T, ws *Workspace) {
				require.Equal(t, 2, ws.Coder.Len())
				assert.Equal(t, code.Result, ws.Coder.Active().Result)
			},
		},
		{
			name:        "stt",
			item:        CreateTestHistoryItem("h4", FeatureSTT, stt),
			wantFeature: FeatureSTT,
			check: func(t *testing.T, ws *Workspace) {
				assert.Equal(t, "Hindi", ws.STT.Language())
				assert.Equal(t, "namaste", ws.STT.Transcription())
				assert.Equal(t, 1, ws.Chat.Len())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newTestWorkspace(t, NewMemoryKV())
			got, err := ws.Restore(tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFeature, got)
			tt.check(t, ws)
		})
	}
}

func TestWorkspace_RestoreTwiceGivesDistinctTabs(t *testing.T) {
	ws := newTestWorkspace(t, NewMemoryKV())
	item := CreateTestHistoryItem("h1", FeatureCoder, CreateTestCoderSession("c", "p"))

	_, err := ws.Restore(item)
	require.NoError(t, err)
	_, err = ws.Restore(item)
	require.NoError(t, err)

	ids := tabIDs(ws.Coder.Tabs())
	require.Len(t, ids, 3)
	assert.NotEqual(t, ids[1], ids[2])
}

func TestWorkspace_RestoreUnknown(t *testing.T) {
	ws := newTestWorkspace(t, NewMemoryKV())
	_, err := ws.Restore(HistoryItem{ID: "x", Feature: "Video"})
	assert.True(t, errors.Is(err, ErrUnknownFeature))
}

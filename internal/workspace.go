package internal

import (
	"context"
	"fmt"
)

// WorkspaceOptions configures NewWorkspace
type WorkspaceOptions struct {
	Keys           Keyspace
	IDs            IDSource // nil uses DefaultIDs
	HistoryOptions []HistoryOption
}

// Workspace wires the stores of one running application together: history follows the
// signed-in identity, and history items can be reopened in their feature store.
type Workspace struct {
	Auth    *AuthGate
	History *HistoryStore
	Chat    *ChatStore
	Image   *ImageStore
	Coder   *CoderStore
	STT     *SttState
	Theme   *ThemeStore

	kv KVStore
}

// NewWorkspace builds every store over kv and loads the restored identity's history
func NewWorkspace(ctx context.Context, kv KVStore, opts WorkspaceOptions) *Workspace {
	w := &Workspace{
		Auth:    NewAuthGate(ctx, kv, opts.Keys),
		History: NewHistoryStore(kv, opts.Keys, opts.HistoryOptions...),
		Chat:    NewChatStore(opts.IDs),
		Image:   NewImageStore(opts.IDs),
		Coder:   NewCoderStore(opts.IDs),
		STT:     NewSttState(),
		Theme:   NewThemeStore(ctx, kv, opts.Keys),
		kv:      kv,
	}

	w.Auth.OnChange(func(ctx context.Context, user *AuthUser) {
		identity := ""
		if user != nil {
			identity = user.Email
		}
		w.History.Load(ctx, identity)
	})
	w.History.Load(ctx, w.Auth.Identity())
	return w
}

// KV returns the underlying store
func (w *Workspace) KV() KVStore { return w.kv }

// Restore reopens a history item: tabbed payloads are added as a new tab with a fresh id,
// STT results replace the transcription state. It returns the feature to show.
func (w *Workspace) Restore(item HistoryItem) (Feature, error) {
	var feature Feature
	switch p := item.Payload.(type) {
	case ChatSession:
		w.Chat.Add(&p)
		feature = FeatureChat
	case *ChatSession:
		w.Chat.Add(p)
		feature = FeatureChat
	case ImageSession:
		w.Image.Add(&p)
		feature = FeatureImage
	case *ImageSession:
		w.Image.Add(p)
		feature = FeatureImage
	case CoderSession:
		w.Coder.Add(&p)
		feature = FeatureCoder
	case *CoderSession:
		w.Coder.Add(p)
		feature = FeatureCoder
	case SttResult:
		w.restoreSTT(p)
		feature = FeatureSTT
	case *SttResult:
		w.restoreSTT(*p)
		feature = FeatureSTT
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, item.Feature)
	}
	LogDebug("restored history item %s into %s", item.ID, feature)
	return feature, nil
}

func (w *Workspace) restoreSTT(r SttResult) {
	if r.Language != "" {
		w.STT.SetLanguage(r.Language)
	}
	w.STT.SetTranscription(r.Result.Text)
}

// Close releases the underlying store
func (w *Workspace) Close() error {
	return w.kv.Close()
}

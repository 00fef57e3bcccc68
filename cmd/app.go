package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/mirova/internal"
	"github.com/iksnae/mirova/internal/genai"
)

// app is the state shared by every command: configuration and an opened workspace
type app struct {
	cfg   *internal.Config
	paths internal.StoragePaths
	ws    *internal.Workspace
}

// loadConfig resolves the storage paths and layers the config file, environment and flags
func loadConfig() (*internal.Config, internal.StoragePaths, error) {
	paths, err := internal.DetectStoragePaths()
	if err != nil {
		return nil, paths, fmt.Errorf("failed to get storage paths: %w", err)
	}

	cfg, err := internal.LoadConfig(paths, configPath, configPath != "")
	if err != nil {
		return nil, paths, fmt.Errorf("failed to load config: %w", err)
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}

	// --verbose wins over the configured level
	if !verbose {
		if level, err := internal.ParseLogLevel(cfg.Log.Level); err == nil {
			internal.SetLogLevel(level)
		}
	}
	return cfg, paths, nil
}

// openApp opens the configured store and builds the workspace over it
func openApp(ctx context.Context) (*app, error) {
	cfg, paths, err := loadConfig()
	if err != nil {
		return nil, err
	}

	kv, err := internal.OpenKV(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	internal.LogDebug("opened %s storage at %s", cfg.Storage.Backend, cfg.Storage.Path)

	var historyOpts []internal.HistoryOption
	if cfg.History.MaxItems > 0 {
		historyOpts = append(historyOpts, internal.WithMaxItems(cfg.History.MaxItems))
	}
	ws := internal.NewWorkspace(ctx, kv, internal.WorkspaceOptions{
		Keys:           cfg.Keyspace(),
		HistoryOptions: historyOpts,
	})
	internal.ApplyTheme(ws.Theme.Theme())

	return &app{cfg: cfg, paths: paths, ws: ws}, nil
}

// features connects the workspace to the generative service
func (a *app) features() (*internal.Features, error) {
	client, err := genai.New(a.cfg.GenAIClientConfig())
	if err != nil {
		return nil, fmt.Errorf("%w (set MIROVA_GENAI_API_KEY or GEMINI_API_KEY)", err)
	}
	f := internal.NewFeatures(a.ws, internal.NewGeminiGenerator(client), nil)
	f.Speak = a.cfg.GenAI.Speak
	f.Voice = a.cfg.GenAI.Voice
	return f, nil
}

func (a *app) Close() {
	if err := a.ws.Close(); err != nil {
		internal.LogWarn("Failed to close storage: %v", err)
	}
}

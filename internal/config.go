package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/iksnae/mirova/internal/genai"
)

// EnvPrefix prefixes every environment override, e.g. MIROVA_GENAI_API_KEY
const EnvPrefix = "MIROVA"

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds all application configuration.
// Precedence: defaults, then the TOML file, then MIROVA_* environment, then CLI flags.
// Leaf fields use split_words so envconfig never falls back to unprefixed names such as PATH.
type Config struct {
	App     string        `toml:"app" split_words:"true"`
	Storage StorageConfig `toml:"storage" envconfig:"STORAGE"`
	History HistoryConfig `toml:"history" envconfig:"HISTORY"`
	GenAI   GenAIConfig   `toml:"genai" envconfig:"GENAI"`
	Log     LogConfig     `toml:"log" envconfig:"LOG"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend string `toml:"backend" split_words:"true"`
	Path    string `toml:"path" split_words:"true"` // database file or file-store directory
}

// HistoryConfig holds history settings
type HistoryConfig struct {
	MaxItems int `toml:"max_items" split_words:"true"`
}

// GenAIConfig holds the generative service settings
type GenAIConfig struct {
	APIKey          string        `toml:"api_key" split_words:"true"`
	BaseURL         string        `toml:"base_url" split_words:"true"`
	ChatModel       string        `toml:"chat_model" split_words:"true"`
	ImageModel      string        `toml:"image_model" split_words:"true"`
	EditModel       string        `toml:"edit_model" split_words:"true"`
	CodeModel       string        `toml:"code_model" split_words:"true"`
	SpeechModel     string        `toml:"speech_model" split_words:"true"`
	TranscribeModel string        `toml:"transcribe_model" split_words:"true"`
	Timeout         time.Duration `toml:"timeout" split_words:"true"`
	Speak           bool          `toml:"speak" split_words:"true"`
	Voice           string        `toml:"voice" split_words:"true"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `toml:"level" split_words:"true"`
}

// DefaultConfig returns the built-in configuration rooted at paths
func DefaultConfig(paths StoragePaths) *Config {
	return &Config{
		App: DefaultAppPrefix,
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    paths.Database,
		},
		GenAI: GenAIConfig{
			BaseURL:         genai.DefaultBaseURL,
			ChatModel:       genai.DefaultChatModel,
			ImageModel:      genai.DefaultImageModel,
			EditModel:       genai.DefaultEditModel,
			CodeModel:       genai.DefaultCodeModel,
			SpeechModel:     genai.DefaultSpeechModel,
			TranscribeModel: genai.DefaultTranscribeModel,
			Timeout:         2 * time.Minute,
			Voice:           DefaultVoice,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig layers the TOML file at path (if present) and the environment over the
// defaults. A missing file is not an error unless required is set.
func LoadConfig(paths StoragePaths, path string, required bool) (*Config, error) {
	cfg := DefaultConfig(paths)
	if path == "" {
		path = paths.Config
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || required {
			return nil, &ParseError{Source: "config", Key: path, Err: err}
		}
	} else {
		LogDebug("loaded config from %s", path)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	// the default path points at the database; the file store lives next to it
	if cfg.Storage.Backend == BackendFile && cfg.Storage.Path == paths.Database {
		cfg.Storage.Path = paths.FileKV
	}
	if cfg.GenAI.APIKey == "" {
		cfg.GenAI.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	var fields []string
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		fields = append(fields, "storage.backend")
	}
	if c.Storage.Backend != BackendMemory && c.Storage.Path == "" {
		fields = append(fields, "storage.path")
	}
	if c.History.MaxItems < 0 {
		fields = append(fields, "history.max_items")
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		fields = append(fields, "log.level")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields, Message: "invalid configuration"}
	}
	return nil
}

// Keyspace returns the key namespace for the configured app prefix
func (c *Config) Keyspace() Keyspace {
	return Keyspace{App: c.App}
}

// GenAIClientConfig converts the settings for genai.New
func (c *Config) GenAIClientConfig() genai.Config {
	return genai.Config{
		APIKey:          c.GenAI.APIKey,
		BaseURL:         c.GenAI.BaseURL,
		ChatModel:       c.GenAI.ChatModel,
		ImageModel:      c.GenAI.ImageModel,
		EditModel:       c.GenAI.EditModel,
		CodeModel:       c.GenAI.CodeModel,
		SpeechModel:     c.GenAI.SpeechModel,
		TranscribeModel: c.GenAI.TranscribeModel,
		Timeout:         c.GenAI.Timeout,
		Logger:          Logger().Named("genai"),
	}
}

// WriteConfig saves cfg as TOML at path
func WriteConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// OpenKV opens the configured storage backend
func OpenKV(cfg StorageConfig) (KVStore, error) {
	switch cfg.Backend {
	case BackendSQLite:
		kv, err := OpenSQLiteKV(cfg.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case BackendFile:
		kv, err := NewFileKV(cfg.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case BackendMemory:
		return NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

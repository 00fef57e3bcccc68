package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Feature names a product area; values match the persisted documents
type Feature string

const (
	FeatureChat  Feature = "Chat"
	FeatureImage Feature = "Image"
	FeatureCoder Feature = "Mirova Coder"
	FeatureSTT   Feature = "STT"
)

// ParseFeature accepts the persisted value or a short alias ("chat", "image", "code", "stt")
func ParseFeature(s string) (Feature, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat":
		return FeatureChat, nil
	case "image":
		return FeatureImage, nil
	case "mirova coder", "coder", "code":
		return FeatureCoder, nil
	case "stt", "transcribe":
		return FeatureSTT, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
}

// HistoryPayload is the snapshot carried by a history item.
// Tabbed sessions report their id so repeated snapshots of one session replace each other.
type HistoryPayload interface {
	PayloadID() (string, bool)
}

// HistoryItem is an immutable record of a completed interaction
type HistoryItem struct {
	ID        string         `json:"id" yaml:"id"`
	Feature   Feature        `json:"feature" yaml:"feature"`
	Payload   HistoryPayload `json:"payload" yaml:"payload"`
	Timestamp string         `json:"timestamp" yaml:"timestamp"` // RFC 3339, UTC
}

type rawHistoryItem struct {
	ID        string          `json:"id"`
	Feature   Feature         `json:"feature"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
}

// UnmarshalJSON decodes the payload into the concrete type selected by Feature
func (h *HistoryItem) UnmarshalJSON(data []byte) error {
	var raw rawHistoryItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := decodePayload(raw.Feature, raw.Payload)
	if err != nil {
		return fmt.Errorf("history item %s: %w", raw.ID, err)
	}
	*h = HistoryItem{
		ID:        raw.ID,
		Feature:   raw.Feature,
		Payload:   payload,
		Timestamp: raw.Timestamp,
	}
	return nil
}

func decodePayload(feature Feature, data json.RawMessage) (HistoryPayload, error) {
	switch feature {
	case FeatureChat:
		var p ChatSession
		err := json.Unmarshal(data, &p)
		return p, err
	case FeatureImage:
		var p ImageSession
		err := json.Unmarshal(data, &p)
		return p, err
	case FeatureCoder:
		var p CoderSession
		err := json.Unmarshal(data, &p)
		return p, err
	case FeatureSTT:
		var p SttResult
		err := json.Unmarshal(data, &p)
		return p, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, feature)
}

// Time parses the item timestamp; the zero time is returned for malformed values
func (h HistoryItem) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, h.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Title is the prompt shown in history listings
func (h HistoryItem) Title() string {
	switch p := h.Payload.(type) {
	case SttResult:
		return p.Prompt
	case ImageSession:
		if p.Prompt != "" {
			return p.Prompt
		}
		return p.Name
	case CoderSession:
		if p.Prompt != "" {
			return p.Prompt
		}
		return p.Name
	case ChatSession:
		if p.Name != "" {
			return p.Name
		}
	}
	return "Chat Session"
}

// Result is the outcome shown in history listings
func (h HistoryItem) Result() string {
	switch p := h.Payload.(type) {
	case ChatSession:
		return p.LastReply()
	case ImageSession:
		return p.GeneratedImage
	case CoderSession:
		return p.Result
	case SttResult:
		return p.Result.Text
	}
	return ""
}

// AuthUser is the signed-in identity; no credential is retained
type AuthUser struct {
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	Email     string `json:"email" yaml:"email"`
}

// DisplayName joins first and last name
func (u AuthUser) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Theme is the UI colour scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

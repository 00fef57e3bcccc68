// Package genai is a small client for the Gemini REST API covering the calls the
// application makes: chat, image generation and editing, code, speech and transcription.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Default models
const (
	DefaultChatModel       = "gemini-2.5-flash"
	DefaultImageModel      = "imagen-4.0-generate-001"
	DefaultEditModel       = "gemini-2.5-flash-image"
	DefaultCodeModel       = "gemini-2.5-flash"
	DefaultSpeechModel     = "gemini-2.5-flash-preview-tts"
	DefaultTranscribeModel = "gemini-2.5-pro"
)

const chatSystemInstruction = "You are MIROVA, a smart, creative, and conversational AI assistant. Be helpful and friendly."

var (
	// ErrNoAPIKey is returned by New when no key is configured
	ErrNoAPIKey = errors.New("genai: API key is not set")
	// ErrNoImage is returned when a response carries no image
	ErrNoImage = errors.New("genai: no image generated in response")
	// ErrNoAudio is returned when a speech response carries no audio
	ErrNoAudio = errors.New("genai: no audio in response")
)

// APIError is a non-2xx response from the service
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("genai: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("genai: HTTP %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Config holds the connection settings and model names
type Config struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	ImageModel      string
	EditModel       string
	CodeModel       string
	SpeechModel     string
	TranscribeModel string
	Timeout         time.Duration
	Logger          *zap.SugaredLogger
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ChatModel == "" {
		c.ChatModel = DefaultChatModel
	}
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	if c.EditModel == "" {
		c.EditModel = DefaultEditModel
	}
	if c.CodeModel == "" {
		c.CodeModel = DefaultCodeModel
	}
	if c.SpeechModel == "" {
		c.SpeechModel = DefaultSpeechModel
	}
	if c.TranscribeModel == "" {
		c.TranscribeModel = DefaultTranscribeModel
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
}

// Client calls the Gemini REST API. No request is retried.
type Client struct {
	cfg  Config
	http *resty.Client
	log  *zap.SugaredLogger
}

// New creates a client; the API key is required
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	cfg.applyDefaults()

	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	return &Client{cfg: cfg, http: http, log: cfg.Logger}, nil
}

// Config returns the effective configuration
func (c *Client) Config() Config { return c.cfg }

func modelPath(model, method string) string {
	return "/v1beta/models/" + model + ":" + method
}

func (c *Client) generateContent(ctx context.Context, model string, req generateContentRequest) (*generateContentResponse, error) {
	var out generateContentResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(modelPath(model, "generateContent"))
	if err != nil {
		return nil, fmt.Errorf("genai: %s request failed: %w", model, err)
	}
	if !res.IsSuccess() {
		return nil, apiError(res)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("genai: prompt blocked: %s", out.PromptFeedback.BlockReason)
	}
	c.log.Debugw("generateContent", "model", model, "status", res.StatusCode(), "elapsed", res.Time())
	return &out, nil
}

func apiError(res *resty.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode()}
	var body apiErrorBody
	if err := json.Unmarshal(res.Body(), &body); err == nil {
		apiErr.Status = body.Error.Status
		apiErr.Message = body.Error.Message
	}
	return apiErr
}

// Chat returns the model's reply to a conversation
func (c *Client) Chat(ctx context.Context, contents []Content) (string, error) {
	res, err := c.generateContent(ctx, c.cfg.ChatModel, generateContentRequest{
		Contents:          contents,
		SystemInstruction: &Content{Parts: []Part{TextPart(chatSystemInstruction)}},
	})
	if err != nil {
		return "", err
	}
	return res.text(), nil
}

// GenerateImage renders prompt in style and returns base64 JPEG bytes
func (c *Client) GenerateImage(ctx context.Context, prompt, style, aspectRatio string) (string, error) {
	var out predictResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(predictRequest{
			Instances: []predictInstance{{Prompt: fmt.Sprintf("%s, %s style", prompt, style)}},
			Parameters: predictParameters{
				SampleCount:   1,
				AspectRatio:   aspectRatio,
				OutputOptions: predictOutputOptions{MimeType: "image/jpeg"},
			},
		}).
		SetResult(&out).
		Post(modelPath(c.cfg.ImageModel, "predict"))
	if err != nil {
		return "", fmt.Errorf("genai: %s request failed: %w", c.cfg.ImageModel, err)
	}
	if !res.IsSuccess() {
		return "", apiError(res)
	}
	if len(out.Predictions) == 0 || out.Predictions[0].BytesBase64Encoded == "" {
		return "", ErrNoImage
	}
	return out.Predictions[0].BytesBase64Encoded, nil
}

// EditImage combines or edits images following prompt and returns base64 image bytes
func (c *Client) EditImage(ctx context.Context, prompt string, images []Blob, aspectRatio string) (string, error) {
	parts := make([]Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, BlobPart(img.MimeType, img.Data))
	}
	parts = append(parts, TextPart(fmt.Sprintf(
		"%s\n\nIMPORTANT: The final generated image must have a strict aspect ratio of %s.", prompt, aspectRatio)))

	res, err := c.generateContent(ctx, c.cfg.EditModel, generateContentRequest{
		Contents:         []Content{{Parts: parts}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE"}},
	})
	if err != nil {
		return "", err
	}
	blob := res.inlineData()
	if blob == nil {
		return "", ErrNoImage
	}
	return blob.Data, nil
}

// GenerateCode asks for a single fenced code block implementing prompt in language
func (c *Client) GenerateCode(ctx context.Context, prompt, language string) (string, error) {
	text := fmt.Sprintf("Based on the user's idea: %q, generate a complete, production-ready code snippet in %s. "+
		"The code should be well-documented. Respond ONLY with the raw code for the requested language inside a single markdown code block. "+
		"Do not include any explanatory text before or after the code block.", prompt, language)
	res, err := c.generateContent(ctx, c.cfg.CodeModel, generateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{TextPart(text)}}},
	})
	if err != nil {
		return "", err
	}
	return res.text(), nil
}

// Speech voices text and returns base64 24kHz mono PCM
func (c *Client) Speech(ctx context.Context, text, voice string) (string, error) {
	res, err := c.generateContent(ctx, c.cfg.SpeechModel, generateContentRequest{
		Contents: []Content{{Parts: []Part{TextPart("Say this with a natural, friendly tone: " + text)}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       &speechConfig{VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice}}},
		},
	})
	if err != nil {
		return "", err
	}
	blob := res.inlineData()
	if blob == nil {
		return "", ErrNoAudio
	}
	return blob.Data, nil
}

func transcriptionPrompt(language string, textOnly bool) string {
	p := fmt.Sprintf("You are an expert multilingual transcription service. Transcribe the following audio recording. "+
		"The primary language spoken in the audio is %s. Provide a precise and accurate transcription.", language)
	if textOnly {
		p += " Respond only with the transcribed text."
	}
	return p
}

// Transcribe returns the transcription of one audio clip
func (c *Client) Transcribe(ctx context.Context, audio Blob, language string) (string, error) {
	res, err := c.generateContent(ctx, c.cfg.TranscribeModel, generateContentRequest{
		Contents: []Content{{Parts: []Part{
			TextPart(transcriptionPrompt(language, true)),
			BlobPart(audio.MimeType, audio.Data),
		}}},
	})
	if err != nil {
		return "", err
	}
	return res.text(), nil
}

package internal

import (
	"context"

	"github.com/iksnae/mirova/internal/genai"
)

// chatImageMimeType is assumed for images attached to chat messages
const chatImageMimeType = "image/jpeg"

// GeminiGenerator adapts a genai.Client to the Generator interface
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a Generator over client
func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) GenerateChatReply(ctx context.Context, history []Message) (string, error) {
	contents := make([]genai.Content, 0, len(history))
	for _, msg := range history {
		parts := make([]genai.Part, 0, len(msg.Images)+1)
		// images first, then the text
		for _, img := range msg.Images {
			parts = append(parts, genai.BlobPart(chatImageMimeType, img))
		}
		parts = append(parts, genai.TextPart(msg.Text))
		contents = append(contents, genai.Content{Role: string(msg.Role), Parts: parts})
	}
	return g.client.Chat(ctx, contents)
}

func (g *GeminiGenerator) GenerateImage(ctx context.Context, prompt, style string, ratio Resolution) (string, error) {
	return g.client.GenerateImage(ctx, prompt, style, string(ratio))
}

func (g *GeminiGenerator) EditImage(ctx context.Context, prompt string, images []SourceImage, ratio Resolution) (string, error) {
	blobs := make([]genai.Blob, len(images))
	for i, img := range images {
		blobs[i] = genai.Blob{MimeType: img.MimeType, Data: img.Data}
	}
	return g.client.EditImage(ctx, prompt, blobs, string(ratio))
}

func (g *GeminiGenerator) GenerateCode(ctx context.Context, prompt, language string) (string, error) {
	return g.client.GenerateCode(ctx, prompt, language)
}

func (g *GeminiGenerator) SynthesizeSpeech(ctx context.Context, text, voice string) (string, error) {
	return g.client.Speech(ctx, text, voice)
}

func (g *GeminiGenerator) Transcribe(ctx context.Context, clip AudioClip, language string) (string, error) {
	return g.client.Transcribe(ctx, genai.Blob{MimeType: clip.MimeType, Data: clip.Data}, language)
}

func (g *GeminiGenerator) TranscribeStream(ctx context.Context, clips []AudioClip, language string, onChunk func(string)) error {
	blobs := make([]genai.Blob, len(clips))
	for i, c := range clips {
		blobs[i] = genai.Blob{MimeType: c.MimeType, Data: c.Data}
	}
	return g.client.TranscribeStream(ctx, blobs, language, onChunk)
}

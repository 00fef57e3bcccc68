package internal

import (
	"context"
	"strings"
)

// Chat replies written into a session when a service call fails
const (
	ChatFailureReply  = "Sorry, I encountered an error. Please try again."
	CodeFailureResult = "An error occurred while generating the code."
	DefaultVoice      = "Kore"
	sessionNameRunes  = 20
)

// AudioClip is recorded or uploaded audio handed to transcription
type AudioClip struct {
	Data     string // base64
	MimeType string
}

// Generator is the generative AI service
type Generator interface {
	GenerateChatReply(ctx context.Context, history []Message) (string, error)
	// GenerateImage and EditImage return base64 image bytes
	GenerateImage(ctx context.Context, prompt, style string, ratio Resolution) (string, error)
	EditImage(ctx context.Context, prompt string, images []SourceImage, ratio Resolution) (string, error)
	GenerateCode(ctx context.Context, prompt, language string) (string, error)
	// SynthesizeSpeech returns base64 PCM audio
	SynthesizeSpeech(ctx context.Context, text, voice string) (string, error)
	Transcribe(ctx context.Context, clip AudioClip, language string) (string, error)
	TranscribeStream(ctx context.Context, clips []AudioClip, language string, onChunk func(string)) error
}

// Features runs the feature interactions against a Workspace. Results are written back
// with Update on the session that was active when the call started, and a snapshot is
// added to history when the interaction completes.
type Features struct {
	ws  *Workspace
	gen Generator
	ids IDSource

	// Speak asks the service to voice every chat reply
	Speak bool
	Voice string
}

// NewFeatures creates the controllers; a nil ids uses DefaultIDs
func NewFeatures(ws *Workspace, gen Generator, ids IDSource) *Features {
	if ids == nil {
		ids = DefaultIDs()
	}
	return &Features{ws: ws, gen: gen, ids: ids, Voice: DefaultVoice}
}

// SendChat adds a user message to the active chat and appends the model's reply
func (f *Features) SendChat(ctx context.Context, text string, images []string) (ChatSession, error) {
	if strings.TrimSpace(text) == "" && len(images) == 0 {
		return ChatSession{}, ErrEmptyPrompt
	}
	if len(images) > MaxImages {
		return ChatSession{}, ErrTooManyImages
	}

	session := f.ws.Chat.Active()
	msg := Message{ID: f.ids.NewID(), Role: RoleUser, Text: text}
	if len(images) > 0 {
		msg.Images = append([]string(nil), images...)
	}
	messages := append(session.Clone().Messages, msg)

	name := session.Name
	if len(session.Messages) == 0 {
		if cut := truncateRunes(text, sessionNameRunes); cut != "" {
			name = cut
		}
	}
	return f.send(ctx, session.ID, messages, name)
}

// EditMessage replaces the text of a user message, drops everything after it and resends
func (f *Features) EditMessage(ctx context.Context, messageID, text string) (ChatSession, error) {
	session := f.ws.Chat.Active()
	idx := -1
	for i, m := range session.Messages {
		if m.ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 || session.Messages[idx].Role != RoleUser {
		return session, ErrNotFound
	}
	messages := session.Clone().Messages[:idx+1]
	messages[idx].Text = text
	return f.send(ctx, session.ID, messages, session.Name)
}

func (f *Features) send(ctx context.Context, id string, messages []Message, name string) (ChatSession, error) {
	f.ws.Chat.Update(id, func(s *ChatSession) {
		s.Messages = messages
		s.Name = name
	})

	reply, err := f.gen.GenerateChatReply(ctx, messages)
	if err != nil {
		LogError("Chat request failed: %v", err)
		failed := Message{ID: f.ids.NewID(), Role: RoleModel, Text: ChatFailureReply}
		f.ws.Chat.Update(id, func(s *ChatSession) {
			s.Messages = append(append([]Message(nil), messages...), failed)
		})
		current, _ := f.ws.Chat.Get(id)
		return current, &ServiceError{Op: "chat", Err: err}
	}

	model := Message{ID: f.ids.NewID(), Role: RoleModel, Text: reply}
	if f.Speak && reply != "" {
		if audio, err := f.gen.SynthesizeSpeech(ctx, reply, f.Voice); err != nil {
			LogWarn("Speech generation failed: %v", err)
		} else {
			model.Audio = audio
		}
	}

	final := append(append([]Message(nil), messages...), model)
	f.ws.Chat.Update(id, func(s *ChatSession) {
		s.Messages = final
	})

	snapshot, ok := f.ws.Chat.Get(id)
	if !ok {
		// tab closed while the request was in flight
		snapshot = ChatSession{ID: id, Name: name, Messages: final}
	}
	f.ws.History.Append(ctx, FeatureChat, snapshot)
	return snapshot, nil
}

// AttachSourceImages adds inputs to the active image session
func (f *Features) AttachSourceImages(images ...SourceImage) error {
	session := f.ws.Image.Active()
	if len(session.SourceImages)+len(images) > MaxImages {
		return ErrTooManyImages
	}
	f.ws.Image.Update(session.ID, func(s *ImageSession) {
		s.SourceImages = append(s.SourceImages, images...)
	})
	return nil
}

// RemoveSourceImage drops the source image at index from the active image session
func (f *Features) RemoveSourceImage(index int) bool {
	session := f.ws.Image.Active()
	if index < 0 || index >= len(session.SourceImages) {
		return false
	}
	return f.ws.Image.Update(session.ID, func(s *ImageSession) {
		s.SourceImages = append(s.SourceImages[:index:index], s.SourceImages[index+1:]...)
	})
}

// GenerateImage renders the active image session's prompt. With source images the
// service edits them; otherwise it generates from text in the selected style.
func (f *Features) GenerateImage(ctx context.Context) (ImageSession, error) {
	session := f.ws.Image.Active()
	if strings.TrimSpace(session.Prompt) == "" {
		return session, ErrEmptyPrompt
	}

	id := session.ID
	f.ws.Image.Update(id, func(s *ImageSession) { s.GeneratedImage = "" })

	var (
		image string
		err   error
		op    = "image"
	)
	if len(session.SourceImages) > 0 {
		op = "edit-image"
		image, err = f.gen.EditImage(ctx, session.Prompt, session.SourceImages, session.Resolution)
	} else {
		image, err = f.gen.GenerateImage(ctx, session.Prompt, session.Style, session.Resolution)
	}
	if err != nil {
		LogError("Image generation failed: %v", err)
		current, _ := f.ws.Image.Get(id)
		return current, &ServiceError{Op: op, Err: err}
	}

	f.ws.Image.Update(id, func(s *ImageSession) {
		s.GeneratedImage = image
		if s.Name == "" {
			s.Name = truncateRunes(s.Prompt, sessionNameRunes)
		}
	})
	snapshot, ok := f.ws.Image.Get(id)
	if !ok {
		snapshot = session
		snapshot.GeneratedImage = image
	}
	f.ws.History.Append(ctx, FeatureImage, snapshot)
	return snapshot, nil
}

// GenerateCode produces code for the active coder session's prompt and language
func (f *Features) GenerateCode(ctx context.Context) (CoderSession, error) {
	session := f.ws.Coder.Active()
	if strings.TrimSpace(session.Prompt) == "" {
		return session, ErrEmptyPrompt
	}

	id := session.ID
	f.ws.Coder.Update(id, func(s *CoderSession) { s.Result = "" })

	code, err := f.gen.GenerateCode(ctx, session.Prompt, session.Language)
	if err != nil {
		LogError("Code generation failed: %v", err)
		f.ws.Coder.Update(id, func(s *CoderSession) { s.Result = CodeFailureResult })
		current, _ := f.ws.Coder.Get(id)
		return current, &ServiceError{Op: "code", Err: err}
	}

	f.ws.Coder.Update(id, func(s *CoderSession) {
		s.Result = code
		if s.Name == "" {
			s.Name = truncateRunes(s.Prompt, sessionNameRunes)
		}
	})
	snapshot, ok := f.ws.Coder.Get(id)
	if !ok {
		snapshot = session
		snapshot.Result = code
	}
	f.ws.History.Append(ctx, FeatureCoder, snapshot)
	return snapshot, nil
}

// Transcribe streams a transcription of clips into the STT state. prompt labels the
// source in history ("Live Recording" or a file name). onChunk may be nil.
func (f *Features) Transcribe(ctx context.Context, clips []AudioClip, prompt string, onChunk func(string)) (string, error) {
	language := f.ws.STT.Language()
	f.ws.STT.SetTranscription("")

	var full strings.Builder
	err := f.gen.TranscribeStream(ctx, clips, language, func(chunk string) {
		full.WriteString(chunk)
		f.ws.STT.AppendTranscription(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	})
	if err != nil {
		LogError("Transcription failed: %v", err)
		return full.String(), &ServiceError{Op: "transcribe", Err: err}
	}

	text := full.String()
	if text != "" {
		f.ws.History.Append(ctx, FeatureSTT, SttResult{
			Language: language,
			Prompt:   prompt,
			Result:   SttText{Text: text},
		})
	}
	return text, nil
}

// Dictate transcribes a short clip in one request and returns the text, for filling
// prompts and chat input by voice. Nothing is recorded in history.
func (f *Features) Dictate(ctx context.Context, clip AudioClip) (string, error) {
	text, err := f.gen.Transcribe(ctx, clip, f.ws.STT.Language())
	if err != nil {
		return "", &ServiceError{Op: "transcribe", Err: err}
	}
	return strings.TrimSpace(text), nil
}

// SpeakText returns base64 audio for text using the configured voice
func (f *Features) SpeakText(ctx context.Context, text string) (string, error) {
	audio, err := f.gen.SynthesizeSpeech(ctx, text, f.Voice)
	if err != nil {
		return "", &ServiceError{Op: "speech", Err: err}
	}
	return audio, nil
}

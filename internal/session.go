package internal

import (
	"fmt"
	"strings"
)

// MaxImages caps attachments on a chat message and source images on an image session
const MaxImages = 50

// Role identifies the author of a chat message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a chat session
type Message struct {
	ID     string   `json:"id" yaml:"id"`
	Role   Role     `json:"role" yaml:"role"`
	Text   string   `json:"text" yaml:"text"`
	Images []string `json:"images,omitempty" yaml:"images,omitempty"` // base64
	Audio  string   `json:"audio,omitempty" yaml:"audio,omitempty"`   // base64 PCM
}

// ChatSession is one chat thread
type ChatSession struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Messages []Message `json:"messages" yaml:"messages"`
}

func (s ChatSession) TabID() string   { return s.ID }
func (s ChatSession) TabName() string { return s.Name }

func (s ChatSession) WithID(id string) ChatSession {
	s.ID = id
	return s
}

func (s ChatSession) Clone() ChatSession {
	if s.Messages != nil {
		msgs := make([]Message, len(s.Messages))
		for i, m := range s.Messages {
			if m.Images != nil {
				m.Images = append([]string(nil), m.Images...)
			}
			msgs[i] = m
		}
		s.Messages = msgs
	}
	return s
}

// PayloadID implements HistoryPayload
func (s ChatSession) PayloadID() (string, bool) { return s.ID, true }

// LastReply returns the text of the last model message, if any
func (s ChatSession) LastReply() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleModel {
			return s.Messages[i].Text
		}
	}
	return ""
}

// Resolution is the aspect ratio requested for image generation
type Resolution string

const (
	Resolution1x1  Resolution = "1:1"
	Resolution16x9 Resolution = "16:9"
	Resolution9x16 Resolution = "9:16"
	Resolution4x3  Resolution = "4:3"
	Resolution3x4  Resolution = "3:4"
)

// Resolutions lists every supported aspect ratio
var Resolutions = []Resolution{Resolution1x1, Resolution16x9, Resolution9x16, Resolution4x3, Resolution3x4}

// ImageStyles lists the styles offered for text-to-image generation
var ImageStyles = []string{"Realistic", "3D", "Anime", "Digital Art", "Cartoon"}

// ParseResolution validates an aspect ratio string
func ParseResolution(s string) (Resolution, error) {
	for _, r := range Resolutions {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unsupported resolution %q", s)
}

// SourceImage is an uploaded image used as input for editing
type SourceImage struct {
	Data     string `json:"data" yaml:"data"` // base64
	MimeType string `json:"mimeType" yaml:"mimeType"`
}

// ImageSession is one image-generation workspace
type ImageSession struct {
	ID             string        `json:"id" yaml:"id"`
	Name           string        `json:"name" yaml:"name"`
	Prompt         string        `json:"prompt" yaml:"prompt"`
	Style          string        `json:"style" yaml:"style"`
	Resolution     Resolution    `json:"resolution" yaml:"resolution"`
	SourceImages   []SourceImage `json:"sourceImages" yaml:"sourceImages"`
	GeneratedImage string        `json:"generatedImage" yaml:"generatedImage"` // base64, empty when none
}

func (s ImageSession) TabID() string   { return s.ID }
func (s ImageSession) TabName() string { return s.Name }

func (s ImageSession) WithID(id string) ImageSession {
	s.ID = id
	return s
}

func (s ImageSession) Clone() ImageSession {
	if s.SourceImages != nil {
		s.SourceImages = append([]SourceImage{}, s.SourceImages...)
	}
	return s
}

// PayloadID implements HistoryPayload
func (s ImageSession) PayloadID() (string, bool) { return s.ID, true }

// CoderSession is one code-generation workspace
type CoderSession struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Prompt   string `json:"prompt" yaml:"prompt"`
	Result   string `json:"result" yaml:"result"`
	Language string `json:"language" yaml:"language"`
}

func (s CoderSession) TabID() string   { return s.ID }
func (s CoderSession) TabName() string { return s.Name }

func (s CoderSession) WithID(id string) CoderSession {
	s.ID = id
	return s
}

func (s CoderSession) Clone() CoderSession { return s }

// PayloadID implements HistoryPayload
func (s CoderSession) PayloadID() (string, bool) { return s.ID, true }

// Code returns the body of the first fenced block in Result, or Result itself.
func (s CoderSession) Code() string {
	start := strings.Index(s.Result, "```")
	if start < 0 {
		return s.Result
	}
	rest := s.Result[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return s.Result
	}
	body := rest[:end]
	// drop the info string (language tag) on the opening fence
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], " \t") {
		body = body[nl+1:]
	}
	return body
}

// SttText holds a transcription result
type SttText struct {
	Text string `json:"text" yaml:"text"`
}

// SttResult is the history payload of a finished transcription
type SttResult struct {
	Language string  `json:"language" yaml:"language"`
	Prompt   string  `json:"prompt" yaml:"prompt"` // "Live Recording" or a file name
	Result   SttText `json:"result" yaml:"result"`
}

// PayloadID implements HistoryPayload; transcriptions are never deduplicated.
func (SttResult) PayloadID() (string, bool) { return "", false }

// SttLanguages lists the transcription languages offered to the user
var SttLanguages = []string{"Telugu", "English", "Hindi", "Bengali", "Marathi", "Tamil", "Urdu", "Gujarati", "Kannada", "Malayalam", "Punjabi"}

// truncateRunes returns at most n runes of s
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

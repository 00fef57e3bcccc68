package internal

import "sync"

// SttState is the non-tabbed speech-to-text state
type SttState struct {
	mu            sync.Mutex
	language      string
	transcription string
}

// NewSttState creates the state with the default language
func NewSttState() *SttState {
	return &SttState{language: DefaultSttLanguage}
}

func (s *SttState) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

func (s *SttState) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
}

func (s *SttState) Transcription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcription
}

func (s *SttState) SetTranscription(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcription = text
}

// AppendTranscription adds a streamed chunk
func (s *SttState) AppendTranscription(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcription += chunk
}

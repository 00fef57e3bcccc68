package internal

// CreateTestChatSession creates a chat session with one exchange
func CreateTestChatSession(id string) ChatSession {
	return ChatSession{
		ID:   id,
		Name: "Test Chat",
		Messages: []Message{
			{ID: id + "-1", Role: RoleUser, Text: "Hello, how are you?"},
			{ID: id + "-2", Role: RoleModel, Text: "I'm doing well, thank you!"},
		},
	}
}

// CreateTestChatSessionWithMessages creates a chat session with custom messages
func CreateTestChatSessionWithMessages(id string, messages []Message) ChatSession {
	return ChatSession{
		ID:       id,
		Name:     "Test Chat",
		Messages: messages,
	}
}

// CreateTestImageSession creates an image session with a generated image
func CreateTestImageSession(id, prompt string) ImageSession {
	return ImageSession{
		ID:             id,
		Name:           prompt,
		Prompt:         prompt,
		Style:          DefaultImageStyle,
		Resolution:     Resolution16x9,
		SourceImages:   []SourceImage{},
		GeneratedImage: "aW1hZ2U=",
	}
}

// CreateTestCoderSession creates a coder session with a fenced result
func CreateTestCoderSession(id, prompt string) CoderSession {
	return CoderSession{
		ID:       id,
		Name:     prompt,
		Prompt:   prompt,
		Result:   "```go\nfmt.Println(\"hi\")\n```",
		Language: "Go",
	}
}

// CreateTestSttResult creates a transcription history payload
func CreateTestSttResult(text string) SttResult {
	return SttResult{
		Language: DefaultSttLanguage,
		Prompt:   DefaultSttPromptLive,
		Result:   SttText{Text: text},
	}
}

// CreateTestHistoryItem creates a history item with a fixed timestamp
func CreateTestHistoryItem(id string, feature Feature, payload HistoryPayload) HistoryItem {
	return HistoryItem{
		ID:        id,
		Feature:   feature,
		Payload:   payload,
		Timestamp: "2025-01-02T03:04:05.000Z",
	}
}

package internal

import "fmt"

// Defaults for freshly created sessions
const (
	DefaultImageStyle    = "Realistic"
	DefaultCodeLanguage  = "JavaScript"
	DefaultSttLanguage   = "Telugu"
	DefaultSttPromptLive = "Live Recording"
)

// NewChatSession is the Chat tab factory
func NewChatSession(id string, n int) ChatSession {
	return ChatSession{
		ID:       id,
		Name:     fmt.Sprintf("Chat %d", n),
		Messages: []Message{},
	}
}

// NewImageSession is the Image tab factory
func NewImageSession(id string, n int) ImageSession {
	return ImageSession{
		ID:           id,
		Name:         fmt.Sprintf("Image %d", n),
		Style:        DefaultImageStyle,
		Resolution:   Resolution1x1,
		SourceImages: []SourceImage{},
	}
}

// NewCoderSession is the Coder tab factory
func NewCoderSession(id string, n int) CoderSession {
	return CoderSession{
		ID:       id,
		Name:     fmt.Sprintf("Code %d", n),
		Language: DefaultCodeLanguage,
	}
}

type (
	ChatStore  = TabManager[ChatSession]
	ImageStore = TabManager[ImageSession]
	CoderStore = TabManager[CoderSession]
)

// NewChatStore creates the chat tab manager
func NewChatStore(ids IDSource) *ChatStore {
	return NewTabManager[ChatSession](NewChatSession, ids)
}

// NewImageStore creates the image tab manager
func NewImageStore(ids IDSource) *ImageStore {
	return NewTabManager[ImageSession](NewImageSession, ids)
}

// NewCoderStore creates the code tab manager
func NewCoderStore(ids IDSource) *CoderStore {
	return NewTabManager[CoderSession](NewCoderSession, ids)
}

package chatModel

import (
	"context"
	"time"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Message struct {
	Text   string    `json:"text"`
	Sender Sender    `json:"sender"`
	Time   time.Time `json:"time"`
}

// UploadedFile is keyed by Name for de-duplication; Size and Pages are display only.
type UploadedFile struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Pages int    `json:"pages,omitempty"`
}

// State is a point-in-time copy of a chat. Slices are never shared with the controller.
type State struct {
	Messages      []Message      `json:"messages"`
	SessionID     string         `json:"session_id,omitempty"`
	UploadedFiles []UploadedFile `json:"uploaded_files"`
	Typing        bool           `json:"typing"`
	TypingLabel   string         `json:"typing_label,omitempty"`
	Uploading     bool           `json:"uploading"`
	Greeted       bool           `json:"greeted"`
}

func (s State) HasFile(name string) bool {
	for _, f := range s.UploadedFiles {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ChatStore keeps visitor snapshots between server restarts.
type ChatStore interface {
	SaveChat(ctx context.Context, visitorId string, state State) error
	GetChat(ctx context.Context, visitorId string) (State, bool)
	DeleteChat(ctx context.Context, visitorId string)
}

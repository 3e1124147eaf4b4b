package chatModel

// Event is what the uploader (or any other input surface) sends to the chat controller.
type Event interface {
	event()
}

// BotMessage appends a bot message to the transcript.
type BotMessage struct {
	Text string
}

// SessionStarted records a session id issued by the backend together with the files it covers.
type SessionStarted struct {
	SessionID string
	Files     []UploadedFile
}

// UploadBusy toggles the upload spinner.
type UploadBusy struct {
	Busy bool
}

func (BotMessage) event()     {}
func (SessionStarted) event() {}
func (UploadBusy) event()     {}

// Sink receives events and exposes the uploaded-file list used for de-duplication.
type Sink interface {
	Dispatch(ev Event)
	UploadedFiles() []UploadedFile
}

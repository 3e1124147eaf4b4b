package web

import _ "embed"

//go:embed index.html
var indexHTML []byte

// IndexHTML is the browser chat widget. It polls /api/chat and posts to
// /api/messages and /api/files.
func IndexHTML() []byte {
	return indexHTML
}

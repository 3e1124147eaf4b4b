package widget

import (
	"fmt"
	"strings"

	"github.com/akolanti/ChatPDF/internal/domain/chatModel"
)

const pdfIcon = "📄"

// RenderUploadedFiles lists the uploaded PDFs, or returns "" when there are none.
func RenderUploadedFiles(files []chatModel.UploadedFile) string {
	if len(files) == 0 {
		return ""
	}

	lines := []string{titleStyle.Render("Uploaded PDFs")}
	for _, f := range files {
		lines = append(lines, pdfIcon+" "+fileNameStyle.Render(f.Name)+pageSuffix(f.Pages))
	}
	return filePanelStyle.Render(strings.Join(lines, "\n"))
}

func pageSuffix(pages int) string {
	switch {
	case pages <= 0:
		return ""
	case pages == 1:
		return dimStyle.Render(" (1 page)")
	default:
		return dimStyle.Render(fmt.Sprintf(" (%d pages)", pages))
	}
}

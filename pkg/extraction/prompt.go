package extraction

import (
	"fmt"
	"strings"

	"github.com/meridian-legal/docaudit/internal/doctype"
	"github.com/meridian-legal/docaudit/internal/model"
)

// PromptFor builds the document-type-specific system prompt from the type's
// strategy record. UNKNOWN segments get the generic template.
func PromptFor(dt model.DocumentType) string {
	t := doctype.For(dt)

	var b strings.Builder
	fmt.Fprintf(&b, "You are processing %s. Extract the fields below and return a single JSON object ", t.Intro)
	b.WriteString(`mapping each field name to {"value": "<string>", "confidence": <0.0-1.0>}.`)
	b.WriteString("\n\nFields:\n")
	for _, f := range t.Fields {
		if f.Hint != "" {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Name, f.Hint)
		} else {
			fmt.Fprintf(&b, "- %s\n", f.Name)
		}
	}
	b.WriteString("\nOnly include fields clearly present in the document; omit missing fields entirely. ")
	b.WriteString("Format all dates as YYYY-MM-DD. Return only the JSON object, no prose.")
	return b.String()
}

// UserContent renders the request's pages into the user message body.
func UserContent(req Request) string {
	var b strings.Builder
	b.WriteString("Extract the key fields from this document:\n")
	for i, text := range req.PageTexts {
		if strings.TrimSpace(text) == "" {
			if i < len(req.PageImageRefs) && req.PageImageRefs[i] != "" {
				fmt.Fprintf(&b, "\n[page image: %s]\n", req.PageImageRefs[i])
			}
			continue
		}
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

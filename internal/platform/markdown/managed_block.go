package markdown

import "strings"

// Block is a region of a note owned by focuslog and delimited by HTML comment markers.
type Block struct {
	Start string
	End   string
}

// Replace swaps the block contents for generated, appending the block when the note has none.
// Text outside the markers is preserved.
func (b Block) Replace(body, generated string) string {
	rendered := b.Start + "\n" + strings.TrimRight(generated, "\n") + "\n" + b.End

	start := strings.Index(body, b.Start)
	if start >= 0 {
		if rel := strings.Index(body[start:], b.End); rel >= 0 {
			end := start + rel + len(b.End)
			return body[:start] + rendered + body[end:]
		}
	}

	switch {
	case strings.TrimSpace(body) == "":
		return rendered + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + rendered + "\n"
	default:
		return body + "\n\n" + rendered + "\n"
	}
}

// Extract returns the block contents and whether the markers were found.
func (b Block) Extract(body string) (string, bool) {
	start := strings.Index(body, b.Start)
	if start < 0 {
		return "", false
	}
	inner := body[start+len(b.Start):]
	end := strings.Index(inner, b.End)
	if end < 0 {
		return "", false
	}
	return strings.Trim(inner[:end], "\n"), true
}

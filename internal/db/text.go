package db

import "github.com/kieli-lang/kieli/internal/lsp"

// characterOffset returns the byte offset of pos within text.
// Positions count characters, so the text is walked as runes. An
// out-of-bounds position clamps to the end of the text.
func characterOffset(text string, pos lsp.Position) int {
	var line, column uint32
	for offset, ch := range text {
		if line == pos.Line && column == pos.Character {
			return offset
		}
		if ch == '\n' {
			if line == pos.Line {
				// Position past the end of the line.
				return offset
			}
			line++
			column = 0
		} else {
			column++
		}
	}
	return len(text)
}

// TextRange returns the substring of text corresponding to r.
func TextRange(text string, r lsp.Range) string {
	start := characterOffset(text, r.Start)
	stop := characterOffset(text, r.Stop)
	return text[start:stop]
}

// EditText replaces r in text with newText and returns the result.
func EditText(text string, r lsp.Range, newText string) string {
	start := characterOffset(text, r.Start)
	stop := characterOffset(text, r.Stop)
	return text[:start] + newText + text[stop:]
}

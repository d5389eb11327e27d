package db

import (
	"testing"

	"github.com/kieli-lang/kieli/internal/lsp"
)

func position(line, character uint32) lsp.Position {
	return lsp.Position{Line: line, Character: character}
}

func TestEditText(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		start    lsp.Position
		stop     lsp.Position
		newText  string
		expected string
	}{
		{"delete_last_character", "hello", position(0, 4), position(0, 5), "", "hell"},
		{"insert_at_start", "world", position(0, 0), position(0, 0), "hello ", "hello world"},
		{"replace_middle", "abcdef", position(0, 2), position(0, 4), "XY", "abXYef"},
		{"across_lines", "ab\ncd", position(0, 1), position(1, 1), "-", "a-d"},
		{"append_at_end", "ab", position(0, 2), position(0, 2), "c", "abc"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := EditText(tc.text, lsp.Range{Start: tc.start, Stop: tc.stop}, tc.newText)
			if actual != tc.expected {
				t.Errorf("EditText = %q, want %q", actual, tc.expected)
			}
		})
	}
}

func TestTextRange(t *testing.T) {
	text := "let x = 5\nlet y = 6"
	actual := TextRange(text, lsp.Range{Start: position(1, 4), Stop: position(1, 5)})
	if actual != "y" {
		t.Errorf("TextRange = %q, want %q", actual, "y")
	}
}

// Subsequent edits observe prior ones, as didChange requires.
func TestSequentialEdits(t *testing.T) {
	text := "hello"
	text = EditText(text, lsp.Range{Start: position(0, 4), Stop: position(0, 5)}, "")
	if text != "hell" {
		t.Fatalf("first edit produced %q", text)
	}
	text = EditText(text, lsp.Range{Start: position(0, 4), Stop: position(0, 4)}, "o!")
	if text != "hello!" {
		t.Fatalf("second edit produced %q", text)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	database := New(DefaultConfiguration())

	docId := database.ClientOpenDocument("/tmp/a.ki", "fn f() = ()")
	if database.DocumentPath(docId) != "/tmp/a.ki" {
		t.Fatal("DocumentPath must find the registered path")
	}

	database.ClientCloseDocument(docId)
	if _, ok := database.Paths["/tmp/a.ki"]; ok {
		t.Fatal("closing a client-owned document must drop its path mapping")
	}
}

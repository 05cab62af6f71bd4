package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDirectoryPicksSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "plain text notes")
	writeFile(t, dir, "guide.md", "# Guide\n\nsome markdown")
	writeFile(t, dir, "page.html", "<html><body><h1>Title</h1><p>body text</p></body></html>")
	writeFile(t, dir, "data.json", `{"ignored": true}`)
	writeFile(t, dir, "image.png", "\x89PNG")

	docs, err := LoadDirectory(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	bySource := map[string]string{}
	for _, doc := range docs {
		bySource[doc.Source] = doc.Content
	}
	if _, ok := bySource["notes.txt"]; !ok {
		t.Fatalf("notes.txt missing: %v", bySource)
	}
	if _, ok := bySource["data.json"]; ok {
		t.Fatalf("unsupported extension was loaded")
	}
	if html := bySource["page.html"]; html == "" || html[0] != '#' {
		t.Fatalf("html not converted to text: %q", html)
	}
}

func TestLoadDirectorySkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "   \n\n  ")
	writeFile(t, dir, "real.txt", "content")

	docs, err := LoadDirectory(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || docs[0].Source != "real.txt" {
		t.Fatalf("expected only real.txt, got %+v", docs)
	}
}

func TestLoadDirectoryMissingDir(t *testing.T) {
	if _, err := LoadDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestCleanNormalizesText(t *testing.T) {
	in := "ﬁrst\x00 line\t\twith   spaces\n\n\n\n\nsecond"
	got := Clean(in)

	if got != "first line with spaces\n\nsecond" {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}

func TestCleanEmptyInput(t *testing.T) {
	if Clean("") != "" {
		t.Fatalf("clean of empty string must stay empty")
	}
}

func TestHTMLToTextKeepsStructure(t *testing.T) {
	html := `<html><body>
		<h1>Main</h1>
		<h2>Sub</h2>
		<p>paragraph text</p>
		<ul><li>first item</li><li>second item</li></ul>
		<script>ignore()</script>
	</body></html>`

	text, err := HTMLToText(html)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	for _, want := range []string{"# Main", "## Sub", "paragraph text", "- first item", "- second item"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "ignore()") {
		t.Fatalf("script content leaked into text:\n%s", text)
	}
}

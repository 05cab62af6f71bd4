// Package loader reads a directory of text, markdown, and HTML files into
// documents ready for chunking and indexing.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/rag/document"
)

var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
}

// LoadDirectory reads every supported file directly under dir. Files that fail
// to load are skipped with a warning; the source id of each document is the
// file's base name.
func LoadDirectory(dir string) ([]document.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("load directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("load directory %s: not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load directory %s: %w", dir, err)
	}

	logger := logging.WithComponent("loader")
	var docs []document.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !supportedExtensions[ext] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}

		content := string(raw)
		if ext == ".html" || ext == ".htm" {
			content, err = HTMLToText(content)
			if err != nil {
				logger.Warn("skipping malformed HTML file", "path", path, "error", err)
				continue
			}
		}
		content = Clean(content)
		if content == "" {
			continue
		}

		docs = append(docs, document.Document{
			Source:  entry.Name(),
			Content: content,
			Metadata: map[string]any{
				"path": path,
			},
		})
	}

	logger.Info("documents loaded", "dir", dir, "count", len(docs))
	return docs, nil
}

var (
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes whitespace and strips control characters and common OCR
// artifacts from raw document text.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	// remove control chars except newline
	b := strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	// fix common ligatures / OCR artifacts
	fixes := map[string]string{
		"ﬁ": "fi", "ﬂ": "fl",
		"·": ".", "•": "-",
	}
	for k, v := range fixes {
		b = strings.ReplaceAll(b, k, v)
	}

	b = reSpaces.ReplaceAllString(b, " ")
	b = reNewlines.ReplaceAllString(b, "\n\n")

	return strings.TrimSpace(b)
}

// HTMLToText extracts readable content from HTML, keeping headings,
// paragraphs, list items, and code blocks.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	var out []string
	doc.Find("h1,h2,h3,h4,p,li,pre,code").Each(func(i int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h1":
			out = append(out, "# "+strings.TrimSpace(s.Text()))
		case "h2":
			out = append(out, "## "+strings.TrimSpace(s.Text()))
		case "h3", "h4":
			out = append(out, "### "+strings.TrimSpace(s.Text()))
		case "p":
			out = append(out, strings.TrimSpace(s.Text()))
		case "li":
			out = append(out, "- "+strings.TrimSpace(s.Text()))
		case "pre", "code":
			out = append(out, strings.TrimSpace(s.Text()))
		}
	})
	return strings.Join(out, "\n\n"), nil
}

package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	frontmatterDelim = []byte("---")
	utf8BOM          = []byte("\xEF\xBB\xBF")
)

// Template is a markdown email template split into front matter and body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits template content into YAML front matter and markdown body.
// Front matter is optional; when present it must open on the first line and
// close with a line containing only "---".
func ParseTemplate(content []byte) (*Template, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !bytes.HasPrefix(content, frontmatterDelim) {
		return &Template{Metadata: make(map[string]any), Body: string(content)}, nil
	}

	rest, ok := afterLine(content)
	if !ok || len(bytes.TrimSpace(rest)) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	front, body, found := splitAtDelimiterLine(rest)
	if !found {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	metadata := make(map[string]any)
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
		if metadata == nil {
			metadata = make(map[string]any)
		}
	}

	return &Template{Metadata: metadata, Body: string(body)}, nil
}

// afterLine returns what follows the first line break of b.
func afterLine(b []byte) ([]byte, bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return nil, false
	}
	return b[i+1:], true
}

// splitAtDelimiterLine finds the first line that is exactly the delimiter
// (an optional trailing \r is tolerated) and returns the text before it and
// the text after its line break.
func splitAtDelimiterLine(b []byte) (before, after []byte, found bool) {
	offset := 0
	for offset <= len(b) {
		line := b[offset:]
		next := len(b)
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = offset + i + 1
		}

		if bytes.Equal(bytes.TrimSuffix(line, []byte("\r")), frontmatterDelim) {
			return b[:offset], b[next:], true
		}
		if next == len(b) {
			break
		}
		offset = next
	}
	return nil, nil, false
}

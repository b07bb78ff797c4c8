package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	separator      = "---\n"
	closeSeparator = "\n---\n"
)

// SplitFrontmatter separates the raw YAML header from the note body.
// A note without a header yields an empty raw header and the full content.
func SplitFrontmatter(content string) (string, string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, separator) {
		return "", content, nil
	}
	rest := strings.TrimPrefix(content, separator)
	idx := strings.Index(rest, closeSeparator)
	if idx < 0 {
		return "", "", fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	return rest[:idx], rest[idx+len(closeSeparator):], nil
}

// DecodeFrontmatter unmarshals the note header into out and returns the body.
func DecodeFrontmatter(content string, out any) (string, error) {
	raw, body, err := SplitFrontmatter(content)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return body, fmt.Errorf("invalid frontmatter: header is empty")
	}
	if err := yaml.Unmarshal([]byte(raw), out); err != nil {
		return "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return body, nil
}

// RenderFrontmatter writes meta (a map or a yaml-tagged struct) as the note header.
func RenderFrontmatter(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(body)
	return buf.String(), nil
}

package skills

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed payload
var payloadFS embed.FS

// Meta is the YAML front-matter of a SKILL.md file.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ParseMeta extracts the front-matter from SKILL.md content.
func ParseMeta(content []byte) (Meta, error) {
	var meta Meta
	rest := bytes.TrimLeft(content, "\n")
	if !bytes.HasPrefix(rest, []byte("---\n")) {
		return meta, fmt.Errorf("missing front-matter")
	}
	rest = rest[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, fmt.Errorf("unterminated front-matter")
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, fmt.Errorf("parse front-matter: %w", err)
	}
	if meta.Name == "" {
		return meta, fmt.Errorf("front-matter has no name")
	}
	return meta, nil
}

// writePayload extracts the embedded skill files into dir.
func writePayload(dir string) error {
	return fs.WalkDir(payloadFS, "payload", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("payload", path)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := payloadFS.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
}

// EmbeddedMeta returns the front-matter of the embedded SKILL.md.
func EmbeddedMeta() (Meta, error) {
	data, err := payloadFS.ReadFile("payload/SKILL.md")
	if err != nil {
		return Meta{}, err
	}
	return ParseMeta(data)
}

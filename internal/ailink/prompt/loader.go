package prompt

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Load parses one prompt file. A file is either YAML frontmatter fenced by
// "---" lines followed by a Markdown body, or a bare YAML document. The
// body becomes the system template unless system_template is set.
func Load(source string, data []byte) (*Prompt, error) {
	text := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if text == "" {
		return nil, fmt.Errorf("parse prompt %s: empty prompt", source)
	}

	header, body := text, ""
	if rest, ok := strings.CutPrefix(text, frontmatterFence+"\n"); ok {
		var found bool
		header, body, found = strings.Cut(rest, "\n"+frontmatterFence)
		if !found {
			return nil, fmt.Errorf("parse prompt %s: unterminated frontmatter", source)
		}
		// The closing fence may be followed by the rest of its line.
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		} else {
			body = ""
		}
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(header), &cfg); err != nil {
		return nil, fmt.Errorf("parse prompt %s: invalid frontmatter: %w", source, err)
	}
	if strings.TrimSpace(cfg.SystemTemplate) == "" {
		cfg.SystemTemplate = strings.TrimSpace(body)
	}
	cfg.Slug = strings.TrimSpace(cfg.Slug)

	if err := configValidator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate prompt %s: %w", source, err)
	}
	return &Prompt{Config: cfg, Source: source}, nil
}

// LoadFS loads every *.md file directly under dir in fsys, in name order.
func LoadFS(fsys fs.FS, dir string) ([]*Prompt, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}
	prompts := make([]*Prompt, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", name, err)
		}
		p, err := Load(name, data)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, nil
}

// LoadFromDir loads the prompt files of an operator-provided directory.
func LoadFromDir(dir string) ([]*Prompt, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("prompts dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("prompts dir %s is not a directory", dir)
	}
	prompts, err := LoadFS(os.DirFS(dir), ".")
	if err != nil {
		return nil, err
	}
	for _, p := range prompts {
		p.Source = path.Join(dir, p.Source)
	}
	return prompts, nil
}

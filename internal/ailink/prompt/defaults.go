package prompt

import (
	"embed"
	"fmt"
	"sort"
)

// Built-in prompt slugs.
const (
	SlugDomainGenerate = "domain-generate"
	SlugPromptImprove  = "prompt-improve"
)

// builtinSlugs must resolve in every registry handed to the gateway.
var builtinSlugs = []string{SlugDomainGenerate, SlugPromptImprove}

//go:embed prompts/*.md
var embedded embed.FS

// Registry resolves prompts by slug.
type Registry interface {
	Get(slug string) (*Prompt, error)
}

// Set is a Registry backed by a map. The zero value is empty.
type Set struct {
	bySlug map[string]*Prompt
}

// NewSet indexes prompts by slug. A slug may appear only once.
func NewSet(prompts []*Prompt) (*Set, error) {
	s := &Set{bySlug: make(map[string]*Prompt, len(prompts))}
	for _, p := range prompts {
		if p == nil {
			continue
		}
		if prev, dup := s.bySlug[p.Config.Slug]; dup {
			return nil, fmt.Errorf("prompt slug %q defined by both %s and %s", p.Config.Slug, prev.Source, p.Source)
		}
		s.bySlug[p.Config.Slug] = p
	}
	return s, nil
}

// Get returns the prompt registered under slug.
func (s *Set) Get(slug string) (*Prompt, error) {
	if s != nil {
		if p, ok := s.bySlug[slug]; ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("prompt %q not found", slug)
}

// Slugs lists the registered slugs in order.
func (s *Set) Slugs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.bySlug))
	for slug := range s.bySlug {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// Overlay returns a copy of s in which every prompt of overrides replaces
// the one with the same slug. Overrides may also add new slugs.
func (s *Set) Overlay(overrides *Set) *Set {
	merged := &Set{bySlug: make(map[string]*Prompt)}
	for _, src := range []*Set{s, overrides} {
		if src == nil {
			continue
		}
		for slug, p := range src.bySlug {
			merged.bySlug[slug] = p
		}
	}
	return merged
}

func (s *Set) requireBuiltins() error {
	for _, slug := range builtinSlugs {
		if _, err := s.Get(slug); err != nil {
			return fmt.Errorf("built-in prompt missing: %w", err)
		}
	}
	return nil
}

// DefaultRegistry loads the prompts compiled into the binary.
func DefaultRegistry() (*Set, error) {
	prompts, err := LoadFS(embedded, "prompts")
	if err != nil {
		return nil, err
	}
	set, err := NewSet(prompts)
	if err != nil {
		return nil, err
	}
	if err := set.requireBuiltins(); err != nil {
		return nil, err
	}
	return set, nil
}

// RegistryWithOverrides layers the prompt files of dir over the built-in
// set. An empty dir returns the built-in set.
func RegistryWithOverrides(dir string) (*Set, error) {
	base, err := DefaultRegistry()
	if err != nil || dir == "" {
		return base, err
	}
	prompts, err := LoadFromDir(dir)
	if err != nil {
		return nil, err
	}
	overrides, err := NewSet(prompts)
	if err != nil {
		return nil, err
	}
	return base.Overlay(overrides), nil
}

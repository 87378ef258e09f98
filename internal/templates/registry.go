// Package templates resolves template keys to reseller-specific texts and
// renders {{KEY}} placeholders.
package templates

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"return-notifier/internal/common/errors"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var leftoverPlaceholder = regexp.MustCompile(`\{\{[^}]*\}\}`)

type registryFile struct {
	Templates map[string]string            `yaml:"templates"`
	Resellers map[string]map[string]string `yaml:"resellers"`
}

// Registry is immutable after Load and safe for concurrent use.
type Registry struct {
	defaults  map[string]string
	resellers map[int]map[string]string
}

// Load returns the built-in templates merged with the YAML file at path.
// An empty path loads only the built-ins.
func Load(path string) (*Registry, error) {
	r := &Registry{
		defaults:  map[string]string{},
		resellers: map[int]map[string]string{},
	}
	if err := r.merge(defaultsYAML); err != nil {
		return nil, fmt.Errorf("parse built-in templates: %w", err)
	}

	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template registry %s: %w", path, err)
	}
	if err := r.merge(data); err != nil {
		return nil, fmt.Errorf("parse template registry %s: %w", path, err)
	}
	return r, nil
}

func (r *Registry) merge(data []byte) error {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	for key, text := range file.Templates {
		r.defaults[key] = text
	}
	for id, overrides := range file.Resellers {
		resellerID, err := strconv.Atoi(id)
		if err != nil {
			return fmt.Errorf("reseller key %q is not an id", id)
		}
		if r.resellers[resellerID] == nil {
			r.resellers[resellerID] = map[string]string{}
		}
		for key, text := range overrides {
			r.resellers[resellerID][key] = text
		}
	}
	return nil
}

// Lookup returns the raw text for key, preferring the reseller's override.
func (r *Registry) Lookup(key string, resellerID int) (string, bool) {
	if text, ok := r.resellers[resellerID][key]; ok {
		return text, true
	}
	text, ok := r.defaults[key]
	return text, ok
}

// Render substitutes vars into the text for key. Placeholders of the text
// without a value are removed; values are inserted verbatim.
func (r *Registry) Render(key string, vars map[string]string, resellerID int) (string, error) {
	text, ok := r.Lookup(key, resellerID)
	if !ok {
		return "", errors.NewTemplateNotFoundError(key)
	}
	return strings.TrimSpace(render(text, vars)), nil
}

func render(tmpl string, vars map[string]string) string {
	tmpl = leftoverPlaceholder.ReplaceAllStringFunc(tmpl, func(p string) string {
		if _, ok := vars[strings.Trim(p, "{}")]; ok {
			return p
		}
		return ""
	})
	if len(vars) == 0 {
		return tmpl
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	// Single pass: substituted values are never scanned again.
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

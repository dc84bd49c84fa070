// Package voice holds the static voice catalog. Voices are immutable
// reference data shipped with the binary; only the user's current
// selection is dynamic (persisted through pkg/store).
package voice

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Voice describes one selectable companion voice.
type Voice struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Names    map[string]string `yaml:"names"`
	Gender   string            `yaml:"gender"`
	Style    string            `yaml:"style"`
	APIName  string            `yaml:"api_name"`
	Language string            `yaml:"language"`
	Greeting string            `yaml:"greeting"`
}

// DisplayName returns the localized name for lang, falling back to the
// canonical name.
func (v Voice) DisplayName(lang string) string {
	if name, ok := v.Names[lang]; ok {
		return name
	}
	return v.Name
}

type catalog struct {
	Voices []Voice `yaml:"voices"`
}

var (
	loadOnce sync.Once
	loaded   []Voice
	loadErr  error
)

func load() ([]Voice, error) {
	loadOnce.Do(func() {
		var c catalog
		if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
			loadErr = fmt.Errorf("parse voice catalog: %w", err)
			return
		}
		loaded = c.Voices
	})
	return loaded, loadErr
}

// All returns every voice in catalog order.
func All() ([]Voice, error) {
	return load()
}

// ByID returns the voice with the given identifier.
func ByID(id string) (Voice, error) {
	voices, err := load()
	if err != nil {
		return Voice{}, err
	}
	for _, v := range voices {
		if v.ID == id {
			return v, nil
		}
	}
	return Voice{}, fmt.Errorf("unknown voice %q", id)
}

// Default returns the first catalog entry, the voice used before the user
// has picked one.
func Default() (Voice, error) {
	voices, err := load()
	if err != nil {
		return Voice{}, err
	}
	if len(voices) == 0 {
		return Voice{}, fmt.Errorf("voice catalog is empty")
	}
	return voices[0], nil
}

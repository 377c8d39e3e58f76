package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrReloadDisabled = errors.New("persona form reload is only available with personaForm.devReload")

// PersonaFormConfig describes the persona editor: which sections and fields
// it shows and which taxonomy category backs each trait picker.
type PersonaFormConfig struct {
	Sections []PersonaFormSection `yaml:"sections" json:"sections"`
	Prompt   struct {
		DescriptionInstructions string `yaml:"descriptionInstructions" json:"descriptionInstructions"`
		MaxDescriptionWords     int    `yaml:"maxDescriptionWords" json:"maxDescriptionWords"`
	} `yaml:"prompt" json:"prompt"`
}

type PersonaFormSection struct {
	Key         string             `yaml:"key" json:"key"`
	Title       string             `yaml:"title" json:"title"`
	Description string             `yaml:"description" json:"description"`
	Fields      []PersonaFormField `yaml:"fields" json:"fields"`
}

type PersonaFormField struct {
	Name             string   `yaml:"name" json:"name"`
	Label            string   `yaml:"label" json:"label"`
	Type             string   `yaml:"type" json:"type"` // text, textarea, select, taxonomy
	Required         bool     `yaml:"required" json:"required"`
	Placeholder      string   `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	MaxLength        int      `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Options          []string `yaml:"options,omitempty" json:"options,omitempty"`
	TaxonomyCategory string   `yaml:"taxonomyCategory,omitempty" json:"taxonomyCategory,omitempty"`
}

// TaxonomyCategories lists the category slugs referenced by taxonomy fields.
func (c *PersonaFormConfig) TaxonomyCategories() []string {
	var slugs []string
	for _, s := range c.Sections {
		for _, f := range s.Fields {
			if f.Type == "taxonomy" && f.TaxonomyCategory != "" {
				slugs = append(slugs, f.TaxonomyCategory)
			}
		}
	}
	return slugs
}

func (c *PersonaFormConfig) validate() error {
	seen := make(map[string]bool)
	for _, s := range c.Sections {
		for _, f := range s.Fields {
			if f.Name == "" {
				return fmt.Errorf("section %q has a field without a name", s.Key)
			}
			if seen[f.Name] {
				return fmt.Errorf("duplicate persona form field %q", f.Name)
			}
			seen[f.Name] = true
			if f.Type == "taxonomy" && f.TaxonomyCategory == "" {
				return fmt.Errorf("taxonomy field %q needs taxonomyCategory", f.Name)
			}
		}
	}
	return nil
}

// LoadPersonaFormConfig reads and validates the form file.
func LoadPersonaFormConfig(path string) (*PersonaFormConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona form config: %w", err)
	}
	var cfg PersonaFormConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal persona form config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FormConfigStore holds the persona form config loaded at start. Reload is
// refused unless devReload was set.
type FormConfigStore struct {
	mu        sync.RWMutex
	path      string
	devReload bool
	current   *PersonaFormConfig
}

func NewFormConfigStore(path string, devReload bool) (*FormConfigStore, error) {
	cfg, err := LoadPersonaFormConfig(path)
	if err != nil {
		return nil, err
	}
	return &FormConfigStore{path: path, devReload: devReload, current: cfg}, nil
}

func (s *FormConfigStore) Get() *PersonaFormConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *FormConfigStore) DevReload() bool {
	return s.devReload
}

// Reload re-reads the file. On error the previous config stays active.
func (s *FormConfigStore) Reload() (*PersonaFormConfig, error) {
	if !s.devReload {
		return nil, ErrReloadDisabled
	}
	cfg, err := LoadPersonaFormConfig(s.path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg, nil
}

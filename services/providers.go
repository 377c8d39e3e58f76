package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TextRequest is one prompt sent to a text model.
type TextRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	// Safe asks the provider to apply its strictest content filters, where it
	// has them.
	Safe bool
}

// TextGenerator is a black-box text model. Model identifiers are passed
// through unchanged.
type TextGenerator interface {
	Name() string
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// Image is a generated image.
type Image struct {
	Data     []byte
	MIMEType string
}

// ImageGenerator produces images from a prompt.
type ImageGenerator interface {
	Name() string
	GenerateImage(ctx context.Context, model, prompt string) (*Image, error)
}

// ProviderModels lists the models a provider exposes.
type ProviderModels struct {
	Provider   string   `json:"provider"`
	Configured bool     `json:"configured"`
	Models     []string `json:"models"`
	ImageModel string   `json:"imageModel,omitempty"`
}

// Providers is the set of configured AI providers.
type Providers struct {
	text    map[string]TextGenerator
	images  ImageGenerator
	catalog map[string]ProviderModels
}

func NewProviders() *Providers {
	return &Providers{
		text:    make(map[string]TextGenerator),
		catalog: make(map[string]ProviderModels),
	}
}

// RegisterText adds a text provider with its model list. A nil generator
// records the provider as unconfigured.
func (p *Providers) RegisterText(name string, g TextGenerator, models []string) {
	if g != nil {
		p.text[name] = g
	}
	entry := p.catalog[name]
	entry.Provider = name
	entry.Configured = g != nil
	entry.Models = models
	p.catalog[name] = entry
}

func (p *Providers) RegisterImage(g ImageGenerator, model string) {
	p.images = g
	entry := p.catalog[g.Name()]
	entry.Provider = g.Name()
	entry.ImageModel = model
	p.catalog[g.Name()] = entry
}

func (p *Providers) Text(name string) (TextGenerator, error) {
	g, ok := p.text[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("text provider %q is not configured", name)
	}
	return g, nil
}

func (p *Providers) Image() (ImageGenerator, error) {
	if p.images == nil {
		return nil, fmt.Errorf("no image provider is configured")
	}
	return p.images, nil
}

// Catalog returns every known provider sorted by name.
func (p *Providers) Catalog() []ProviderModels {
	out := make([]ProviderModels, 0, len(p.catalog))
	for _, m := range p.catalog {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

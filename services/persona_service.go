package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/config"
	"voxarena/models"
)

// PersonaInput is the create/update payload for a persona.
type PersonaInput struct {
	Name                string              `json:"name" binding:"required"`
	Slug                string              `json:"slug"`
	Description         string              `json:"description"`
	Teaser              string              `json:"teaser"`
	VoiceID             string              `json:"voiceId"`
	Traits              map[string][]string `json:"traits"`
	SystemPrompt        string              `json:"systemPrompt"`
	GenerateDescription bool                `json:"generateDescription"`
}

type PersonaService struct {
	personas   PersonaStore
	debates    DebateStore
	taxonomy   TaxonomyStore
	ai         *AICaller
	storage    ObjectStorage
	form       *config.FormConfigStore
	imageModel string
	log        logrus.FieldLogger
}

func NewPersonaService(personas PersonaStore, debates DebateStore, taxonomy TaxonomyStore, ai *AICaller, storage ObjectStorage, form *config.FormConfigStore, imageModel string, log logrus.FieldLogger) *PersonaService {
	return &PersonaService{
		personas:   personas,
		debates:    debates,
		taxonomy:   taxonomy,
		ai:         ai,
		storage:    storage,
		form:       form,
		imageModel: imageModel,
		log:        log,
	}
}

// validateTraits checks trait slugs against the taxonomy and drops empty
// entries.
func (s *PersonaService) validateTraits(ctx context.Context, traits map[string][]string) (map[string][]string, []string, error) {
	clean := make(map[string][]string)
	if len(traits) == 0 {
		return clean, nil, nil
	}
	categories, err := s.taxonomy.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	terms, err := s.taxonomy.ListTerms(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	bySlug := make(map[string]models.TaxonomyCategory, len(categories))
	for _, c := range categories {
		bySlug[c.Slug] = c
	}
	termSet := make(map[string]bool, len(terms))
	for _, t := range terms {
		termSet[t.CategoryID.Hex()+"/"+t.Slug] = true
	}

	var problems []string
	for slug, values := range traits {
		if len(values) == 0 {
			continue
		}
		c, ok := bySlug[slug]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown taxonomy category %q", slug))
			continue
		}
		if len(values) > 1 && !c.AllowMultiple {
			problems = append(problems, fmt.Sprintf("category %q allows a single term", slug))
		}
		for _, v := range values {
			if !termSet[c.ID.Hex()+"/"+v] {
				problems = append(problems, fmt.Sprintf("unknown term %q in category %q", v, slug))
			}
		}
		clean[slug] = values
	}
	return clean, problems, nil
}

func (s *PersonaService) prepare(ctx context.Context, in *PersonaInput) error {
	var problems []string
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		problems = append(problems, "name is required")
	}
	if in.Slug == "" {
		in.Slug = Slug(in.Name)
	}
	traits, traitProblems, err := s.validateTraits(ctx, in.Traits)
	if err != nil {
		return err
	}
	in.Traits = traits
	problems = append(problems, traitProblems...)
	if len(problems) > 0 {
		return newValidationError(problems...)
	}
	return nil
}

// Create stores the persona, then optionally generates a description. A
// generation failure leaves the persona saved without one.
func (s *PersonaService) Create(ctx context.Context, in PersonaInput) (*models.Persona, error) {
	if err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}
	p := &models.Persona{}
	copyPersonaInput(p, in)
	if err := s.personas.Create(ctx, p); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, conflictf("a persona with slug %q already exists", p.Slug)
		}
		return nil, err
	}
	if in.GenerateDescription && strings.TrimSpace(p.Description) == "" {
		if updated, _, err := s.GenerateDescription(ctx, p.ID); err == nil {
			p = updated
		}
	}
	return p, nil
}

func (s *PersonaService) Update(ctx context.Context, id primitive.ObjectID, in PersonaInput) (*models.Persona, error) {
	p, err := s.personas.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}
	copyPersonaInput(p, in)
	if err := s.personas.Update(ctx, p); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, conflictf("a persona with slug %q already exists", p.Slug)
		}
		return nil, err
	}
	return p, nil
}

func copyPersonaInput(p *models.Persona, in PersonaInput) {
	p.Name = in.Name
	p.Slug = in.Slug
	p.Description = in.Description
	p.Teaser = in.Teaser
	p.VoiceID = in.VoiceID
	p.Traits = in.Traits
	p.SystemPrompt = in.SystemPrompt
}

func (s *PersonaService) Get(ctx context.Context, id primitive.ObjectID) (*models.Persona, error) {
	return s.personas.Get(ctx, id)
}

func (s *PersonaService) List(ctx context.Context, f models.PersonaFilter) (*models.ListResult[models.Persona], error) {
	items, total, err := s.personas.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page := f.Page.Normalize()
	return &models.ListResult[models.Persona]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// Delete refuses to remove a persona that took part in any debate.
func (s *PersonaService) Delete(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.personas.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.debates.CountByPersona(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictf("persona %q is used by %d debate(s)", p.Name, n)
	}
	if err := s.personas.Delete(ctx, id); err != nil {
		return err
	}
	if p.AvatarKey != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, p.AvatarKey); err != nil {
			s.log.WithError(err).WithField("persona", id.Hex()).Warn("Failed to delete persona avatar")
		}
	}
	return nil
}

func (s *PersonaService) traitsFor(ctx context.Context, p *models.Persona) ([]TraitLine, error) {
	categories, err := s.taxonomy.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	terms, err := s.taxonomy.ListTerms(ctx, nil)
	if err != nil {
		return nil, err
	}
	return ResolveTraits(p.Traits, categories, terms), nil
}

// GenerateDescription writes an AI description for the persona. On provider
// failure the persona is returned unchanged with generated=false.
func (s *PersonaService) GenerateDescription(ctx context.Context, id primitive.ObjectID) (*models.Persona, bool, error) {
	p, err := s.personas.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	traits, err := s.traitsFor(ctx, p)
	if err != nil {
		return nil, false, err
	}

	instructions, maxWords := "", 0
	if s.form != nil {
		cfg := s.form.Get()
		instructions, maxWords = cfg.Prompt.DescriptionInstructions, cfg.Prompt.MaxDescriptionWords
	}
	prompt := BuildPersonaDescriptionPrompt(p, traits, instructions, maxWords)

	text, err := s.ai.Text(ctx, callMeta{Purpose: "description", EntityType: "persona", EntityID: id},
		TextRequest{Prompt: prompt, MaxTokens: 600, Temperature: 0.8, Safe: true})
	if err != nil {
		s.log.WithError(err).WithField("persona", id.Hex()).Warn("Persona description generation failed")
		return p, false, nil
	}
	if err := s.personas.SetDescription(ctx, id, text); err != nil {
		return nil, false, err
	}
	p.Description = text
	if p.SystemPrompt == "" {
		p.SystemPrompt = BuildPersonaSystemPrompt(p, traits)
		if err := s.personas.Update(ctx, p); err != nil {
			s.log.WithError(err).WithField("persona", id.Hex()).Warn("Failed to store persona system prompt")
		}
	}
	return p, true, nil
}

// GenerateAvatar renders a portrait and stores it in object storage. On
// failure the persona is returned unchanged with generated=false.
func (s *PersonaService) GenerateAvatar(ctx context.Context, id primitive.ObjectID) (*models.Persona, bool, error) {
	p, err := s.personas.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if s.storage == nil {
		return nil, false, errors.New("object storage is not configured")
	}
	traits, err := s.traitsFor(ctx, p)
	if err != nil {
		return nil, false, err
	}

	img, err := s.ai.Image(ctx, callMeta{Purpose: "avatar", EntityType: "persona", EntityID: id}, s.imageModel, BuildAvatarPrompt(p, traits))
	if err != nil {
		s.log.WithError(err).WithField("persona", id.Hex()).Warn("Avatar generation failed")
		return p, false, nil
	}

	ext := ".png"
	if img.MIMEType == "image/jpeg" {
		ext = ".jpg"
	}
	key := objectKey("personas/"+id.Hex()+"/avatar", ext)
	url, err := s.storage.Put(ctx, key, img.MIMEType, img.Data)
	if err != nil {
		s.log.WithError(err).WithField("persona", id.Hex()).Warn("Avatar upload failed")
		return p, false, nil
	}
	if err := s.personas.SetAvatar(ctx, id, url, key); err != nil {
		return nil, false, err
	}
	if p.AvatarKey != "" {
		if err := s.storage.Delete(ctx, p.AvatarKey); err != nil {
			s.log.WithError(err).WithField("persona", id.Hex()).Warn("Failed to delete previous avatar")
		}
	}
	p.AvatarURL, p.AvatarKey = url, key
	return p, true, nil
}

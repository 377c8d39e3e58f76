package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type memDebates struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Debate
}

func newMemDebates() *memDebates {
	return &memDebates{byID: map[primitive.ObjectID]*models.Debate{}}
}

func (m *memDebates) Create(_ context.Context, d *models.Debate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	cp := *d
	m.byID[d.ID] = &cp
	return nil
}

func (m *memDebates) Get(_ context.Context, id primitive.ObjectID) (*models.Debate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDebates) List(_ context.Context, f models.DebateFilter) ([]models.Debate, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Debate
	for _, d := range m.byID {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (m *memDebates) Update(_ context.Context, d *models.Debate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[d.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Status == models.StatusGenerating {
		return models.ErrStatusConflict
	}
	cp := *d
	cp.Status = cur.Status
	m.byID[d.ID] = &cp
	return nil
}

func (m *memDebates) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memDebates) TransitionStatus(_ context.Context, id primitive.ObjectID, from []models.DebateStatus, to models.DebateStatus) (*models.Debate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	for _, s := range from {
		if d.Status == s {
			d.Status = to
			if to == models.StatusGenerating {
				d.GenerationError = ""
			}
			cp := *d
			return &cp, nil
		}
	}
	return nil, models.ErrStatusConflict
}

func (m *memDebates) CompleteGeneration(_ context.Context, id primitive.ObjectID, transcript []models.TranscriptEntry, placeholder bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	d.Status = models.StatusCompleted
	d.Transcript = transcript
	d.TranscriptIsPlaceholder = placeholder
	d.GenerationError = ""
	return nil
}

func (m *memDebates) FailGeneration(_ context.Context, id primitive.ObjectID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	d.Status = models.StatusFailed
	d.GenerationError = reason
	return nil
}

func (m *memDebates) SetTeaser(_ context.Context, id primitive.ObjectID, teaser string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	d.Teaser = teaser
	return nil
}

func (m *memDebates) AddReviewDocument(_ context.Context, id primitive.ObjectID, doc models.ReviewDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	d.ReviewDocuments = append(d.ReviewDocuments, doc)
	return nil
}

func (m *memDebates) CountByPersona(_ context.Context, personaID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range m.byID {
		for _, p := range d.Participants {
			if p.PersonaID == personaID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (m *memDebates) CountByTemplate(_ context.Context, templateID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range m.byID {
		if d.FormatTemplateID != nil && *d.FormatTemplateID == templateID {
			n++
		}
	}
	return n, nil
}

type memTemplates struct {
	byID map[primitive.ObjectID]*models.FormatTemplate
}

func newMemTemplates(ts ...*models.FormatTemplate) *memTemplates {
	m := &memTemplates{byID: map[primitive.ObjectID]*models.FormatTemplate{}}
	for _, t := range ts {
		_ = m.Create(context.Background(), t)
	}
	return m
}

func (m *memTemplates) Create(_ context.Context, t *models.FormatTemplate) error {
	for _, existing := range m.byID {
		if existing.Slug == t.Slug && existing.ID != t.ID {
			return models.ErrDuplicate
		}
	}
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTemplates) Get(_ context.Context, id primitive.ObjectID) (*models.FormatTemplate, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTemplates) GetBySlug(_ context.Context, slug string) (*models.FormatTemplate, error) {
	for _, t := range m.byID {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memTemplates) List(_ context.Context, f models.TemplateFilter) ([]models.FormatTemplate, int64, error) {
	var out []models.FormatTemplate
	for _, t := range m.byID {
		if f.Mode != "" && t.Mode != f.Mode {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (m *memTemplates) Update(_ context.Context, t *models.FormatTemplate) error {
	if _, ok := m.byID[t.ID]; !ok {
		return models.ErrNotFound
	}
	for _, existing := range m.byID {
		if existing.Slug == t.Slug && existing.ID != t.ID {
			return models.ErrDuplicate
		}
	}
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTemplates) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memTemplates) UpsertBySlug(ctx context.Context, t *models.FormatTemplate) error {
	if existing, err := m.GetBySlug(ctx, t.Slug); err == nil {
		t.ID = existing.ID
		return m.Update(ctx, t)
	}
	return m.Create(ctx, t)
}

type memPersonas struct {
	byID map[primitive.ObjectID]*models.Persona
}

func newMemPersonas(ps ...*models.Persona) *memPersonas {
	m := &memPersonas{byID: map[primitive.ObjectID]*models.Persona{}}
	for _, p := range ps {
		_ = m.Create(context.Background(), p)
	}
	return m
}

func (m *memPersonas) Create(_ context.Context, p *models.Persona) error {
	for _, existing := range m.byID {
		if existing.Slug == p.Slug && existing.ID != p.ID {
			return models.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPersonas) Get(_ context.Context, id primitive.ObjectID) (*models.Persona, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPersonas) GetMany(_ context.Context, ids []primitive.ObjectID) ([]models.Persona, error) {
	var out []models.Persona
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPersonas) List(_ context.Context, _ models.PersonaFilter) ([]models.Persona, int64, error) {
	var out []models.Persona
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memPersonas) Update(_ context.Context, p *models.Persona) error {
	if _, ok := m.byID[p.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPersonas) SetDescription(_ context.Context, id primitive.ObjectID, description string) error {
	p, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Description = description
	return nil
}

func (m *memPersonas) SetAvatar(_ context.Context, id primitive.ObjectID, url, key string) error {
	p, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	p.AvatarURL, p.AvatarKey = url, key
	return nil
}

func (m *memPersonas) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memTaxonomy struct {
	categories []models.TaxonomyCategory
	terms      []models.TaxonomyTerm
}

func (m *memTaxonomy) ListCategories(context.Context) ([]models.TaxonomyCategory, error) {
	return m.categories, nil
}

func (m *memTaxonomy) GetCategory(_ context.Context, id primitive.ObjectID) (*models.TaxonomyCategory, error) {
	for _, c := range m.categories {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memTaxonomy) GetCategoryBySlug(_ context.Context, slug string) (*models.TaxonomyCategory, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			cp := c
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memTaxonomy) CreateCategory(_ context.Context, c *models.TaxonomyCategory) error {
	for _, existing := range m.categories {
		if existing.Slug == c.Slug {
			return models.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	m.categories = append(m.categories, *c)
	return nil
}

func (m *memTaxonomy) UpdateCategory(_ context.Context, c *models.TaxonomyCategory) error {
	for i := range m.categories {
		if m.categories[i].ID == c.ID {
			m.categories[i] = *c
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memTaxonomy) DeleteCategory(_ context.Context, id primitive.ObjectID) error {
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			kept := m.terms[:0]
			for _, t := range m.terms {
				if t.CategoryID != id {
					kept = append(kept, t)
				}
			}
			m.terms = kept
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memTaxonomy) ListTerms(_ context.Context, categoryID *primitive.ObjectID) ([]models.TaxonomyTerm, error) {
	if categoryID == nil {
		return m.terms, nil
	}
	var out []models.TaxonomyTerm
	for _, t := range m.terms {
		if t.CategoryID == *categoryID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTaxonomy) GetTerm(_ context.Context, id primitive.ObjectID) (*models.TaxonomyTerm, error) {
	for _, t := range m.terms {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memTaxonomy) CreateTerm(_ context.Context, t *models.TaxonomyTerm) error {
	t.ID = primitive.NewObjectID()
	m.terms = append(m.terms, *t)
	return nil
}

func (m *memTaxonomy) UpdateTerm(_ context.Context, t *models.TaxonomyTerm) error {
	for i := range m.terms {
		if m.terms[i].ID == t.ID {
			m.terms[i] = *t
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memTaxonomy) DeleteTerm(_ context.Context, id primitive.ObjectID) error {
	for i := range m.terms {
		if m.terms[i].ID == id {
			m.terms = append(m.terms[:i], m.terms[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memTaxonomy) UpsertCategory(ctx context.Context, c *models.TaxonomyCategory) (primitive.ObjectID, error) {
	if existing, err := m.GetCategoryBySlug(ctx, c.Slug); err == nil {
		return existing.ID, nil
	}
	err := m.CreateCategory(ctx, c)
	return c.ID, err
}

func (m *memTaxonomy) UpsertTerm(ctx context.Context, t *models.TaxonomyTerm) error {
	return m.CreateTerm(ctx, t)
}

type memModes struct {
	modes []models.Mode
}

func (m *memModes) List(context.Context) ([]models.Mode, error) { return m.modes, nil }

func (m *memModes) Get(_ context.Context, id primitive.ObjectID) (*models.Mode, error) {
	for _, md := range m.modes {
		if md.ID == id {
			cp := md
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memModes) GetBySlug(_ context.Context, slug string) (*models.Mode, error) {
	for _, md := range m.modes {
		if md.Slug == slug {
			cp := md
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memModes) Create(_ context.Context, md *models.Mode) error {
	for _, existing := range m.modes {
		if existing.Slug == md.Slug {
			return models.ErrDuplicate
		}
	}
	md.ID = primitive.NewObjectID()
	m.modes = append(m.modes, *md)
	return nil
}

func (m *memModes) Update(_ context.Context, md *models.Mode) error {
	for i := range m.modes {
		if m.modes[i].ID == md.ID {
			m.modes[i] = *md
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memModes) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range m.modes {
		if m.modes[i].ID == id {
			m.modes = append(m.modes[:i], m.modes[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memModes) UpsertBySlug(ctx context.Context, md *models.Mode) error {
	if _, err := m.GetBySlug(ctx, md.Slug); err == nil {
		return nil
	}
	return m.Create(ctx, md)
}

type memPromptLogs struct {
	mu      sync.Mutex
	entries []models.AIPromptLog
}

func (m *memPromptLogs) Insert(_ context.Context, l *models.AIPromptLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *l)
	return nil
}

func (m *memPromptLogs) List(_ context.Context, _ models.PromptLogFilter) ([]models.AIPromptLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, int64(len(m.entries)), nil
}

// scriptedText returns the queued responses in order, then repeats the last.
type scriptedText struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedText) Name() string { return "scripted" }

func (s *scriptedText) GenerateText(_ context.Context, _ TextRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if len(s.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

type fakeImages struct {
	err error
}

func (f *fakeImages) Name() string { return "fake-images" }

func (f *fakeImages) GenerateImage(context.Context, string, string) (*Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &Image{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}, nil
}

type memStorage struct {
	objects map[string][]byte
}

func newMemStorage() *memStorage { return &memStorage{objects: map[string][]byte{}} }

func (m *memStorage) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

type recordedEvents struct {
	mu    sync.Mutex
	types []string
}

func (r *recordedEvents) Publish(_ context.Context, _, eventType string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
	return nil
}

func newCaller(gen TextGenerator, images ImageGenerator, logs PromptLogStore) *AICaller {
	p := NewProviders()
	if gen != nil {
		p.RegisterText("scripted", gen, []string{"test-model"})
	}
	if images != nil {
		p.RegisterImage(images, "test-image")
	}
	return NewAICaller(p, logs, "scripted", "test-model", quietLogger())
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voxarena/models"
)

const (
	EventGenerationStarted   = "generation.started"
	EventGenerationAttempt   = "generation.attempt"
	EventGenerationCompleted = "generation.completed"
	EventGenerationFailed    = "generation.failed"

	maxReviewNoteChars = 4000
)

// regenerableStatuses are the states a generation run may start from.
var regenerableStatuses = []models.DebateStatus{models.StatusDraft, models.StatusFailed, models.StatusCompleted}

// GenerationConfig bounds the retry loop.
type GenerationConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	BackoffFactor  float64
	AttemptTimeout time.Duration
	MaxTokens      int
}

// GenerationService produces debate transcripts.
type GenerationService struct {
	debates  DebateStore
	personas PersonaStore
	modes    ModeStore
	taxonomy TaxonomyStore
	ai       *AICaller
	events   GenerationEvents
	cfg      GenerationConfig
	log      logrus.FieldLogger
}

func NewGenerationService(debates DebateStore, personas PersonaStore, modes ModeStore, taxonomy TaxonomyStore, ai *AICaller, events GenerationEvents, cfg GenerationConfig, log logrus.FieldLogger) *GenerationService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 2
	}
	if events == nil {
		events = noopEvents{}
	}
	return &GenerationService{
		debates:  debates,
		personas: personas,
		modes:    modes,
		taxonomy: taxonomy,
		ai:       ai,
		events:   events,
		cfg:      cfg,
		log:      log,
	}
}

// GenerationResult reports how a run ended.
type GenerationResult struct {
	Debate      *models.Debate `json:"debate"`
	Attempts    int            `json:"attempts"`
	Placeholder bool           `json:"placeholder"`
}

// Generate claims the debate with a conditional status update, then writes a
// transcript. Provider failures fall back to a placeholder transcript and
// still complete the debate; internal failures mark it FAILED.
func (s *GenerationService) Generate(ctx context.Context, id primitive.ObjectID) (*GenerationResult, error) {
	ctx, span := tracer.Start(ctx, "generation.run")
	defer span.End()
	span.SetAttributes(attribute.String("debate.id", id.Hex()))

	d, err := s.debates.TransitionStatus(ctx, id, regenerableStatuses, models.StatusGenerating)
	if errors.Is(err, models.ErrStatusConflict) {
		return nil, conflictf("debate is already generating or has been published")
	}
	if err != nil {
		return nil, err
	}

	log := s.log.WithField("debate", id.Hex())
	log.Info("Transcript generation started")
	s.publish(ctx, id, EventGenerationStarted, map[string]any{"maxAttempts": s.cfg.MaxAttempts})

	// Status writes must land even if the caller goes away.
	persistCtx := context.WithoutCancel(ctx)

	transcript, attempts, placeholder, err := s.produce(ctx, d)
	if err != nil {
		s.markFailed(persistCtx, span, log, id, err)
		log.WithError(err).Error("Transcript generation failed")
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if err := s.debates.CompleteGeneration(persistCtx, id, transcript, placeholder); err != nil {
		s.markFailed(persistCtx, span, log, id, err)
		log.WithError(err).Error("Failed to store transcript")
		return nil, fmt.Errorf("failed to store transcript: %w", err)
	}
	s.publish(persistCtx, id, EventGenerationCompleted, map[string]any{
		"attempts":    attempts,
		"placeholder": placeholder,
		"entries":     len(transcript),
	})
	log.WithFields(logrus.Fields{"attempts": attempts, "placeholder": placeholder}).Info("Transcript generation completed")

	updated, err := s.debates.Get(persistCtx, id)
	if err != nil {
		return nil, err
	}
	return &GenerationResult{Debate: updated, Attempts: attempts, Placeholder: placeholder}, nil
}

// markFailed moves the debate to FAILED and announces it. A failed write is
// logged, since the debate then stays GENERATING.
func (s *GenerationService) markFailed(ctx context.Context, span trace.Span, log logrus.FieldLogger, id primitive.ObjectID, cause error) {
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())
	reason := cause.Error()
	if ferr := s.debates.FailGeneration(ctx, id, reason); ferr != nil {
		span.RecordError(ferr)
		log.WithError(ferr).Error("Failed to mark debate as failed, it remains GENERATING")
	}
	s.publish(ctx, id, EventGenerationFailed, map[string]any{"error": reason})
}

// produce returns the transcript, the attempts used and whether it is a
// placeholder. An error means something other than the provider failed.
func (s *GenerationService) produce(ctx context.Context, d *models.Debate) ([]models.TranscriptEntry, int, bool, error) {
	cast, err := s.loadCast(ctx, d.Participants)
	if err != nil {
		return nil, 0, false, err
	}
	if len(cast) == 0 {
		return nil, 0, false, errors.New("debate has no participants")
	}
	if len(d.SegmentStructure) == 0 {
		return nil, 0, false, errors.New("debate has no segments")
	}

	mode, err := s.loadMode(ctx, d)
	if err != nil {
		return nil, 0, false, err
	}
	if err := s.ai.Ready(); err != nil {
		return nil, 0, false, err
	}

	system, prompt := BuildTranscriptPrompt(d, mode, cast, reviewNotes(d.ReviewDocuments))

	var lastErr error
	backoff := s.cfg.InitialBackoff
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, attempt - 1, false, ctx.Err()
		}
		s.publish(ctx, d.ID, EventGenerationAttempt, map[string]any{"attempt": attempt})

		entries, err := s.attempt(ctx, d, cast, system, prompt, attempt)
		if err == nil {
			return entries, attempt, false, nil
		}
		lastErr = err
		s.log.WithError(err).WithFields(logrus.Fields{
			"debate":  d.ID.Hex(),
			"attempt": attempt,
		}).Warn("Transcript attempt failed")

		if attempt < s.cfg.MaxAttempts && backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, attempt, false, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * s.cfg.BackoffFactor)
		}
	}

	s.log.WithError(lastErr).WithField("debate", d.ID.Hex()).Warn("All transcript attempts failed, using placeholder")
	return PlaceholderTranscript(d, cast), s.cfg.MaxAttempts, true, nil
}

func (s *GenerationService) attempt(ctx context.Context, d *models.Debate, cast []CastMember, system, prompt string, attempt int) ([]models.TranscriptEntry, error) {
	if s.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AttemptTimeout)
		defer cancel()
	}
	text, err := s.ai.Text(ctx, callMeta{
		Purpose:    "transcript",
		EntityType: "debate",
		EntityID:   d.ID,
		Attempt:    attempt,
	}, TextRequest{System: system, Prompt: prompt, MaxTokens: s.cfg.MaxTokens, Temperature: 0.7})
	if err != nil {
		return nil, err
	}
	return ParseTranscript(text, d, cast)
}

func (s *GenerationService) loadCast(ctx context.Context, participants []models.Participant) ([]CastMember, error) {
	ids := make([]primitive.ObjectID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.PersonaID)
	}
	personas, err := s.personas.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load personas: %w", err)
	}
	cast, err := Cast(participants, personas)
	if err != nil {
		return nil, err
	}

	categories, err := s.taxonomy.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	terms, err := s.taxonomy.ListTerms(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	for i := range cast {
		cast[i].Traits = ResolveTraits(cast[i].Persona.Traits, categories, terms)
	}
	return cast, nil
}

func (s *GenerationService) loadMode(ctx context.Context, d *models.Debate) (*models.Mode, error) {
	var (
		mode *models.Mode
		err  error
	)
	if d.ModeID != nil {
		mode, err = s.modes.Get(ctx, *d.ModeID)
	} else {
		mode, err = s.modes.GetBySlug(ctx, d.Mode.ModeSlug())
	}
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mode: %w", err)
	}
	return mode, nil
}

// GenerateTeaser writes a teaser for the debate. A provider failure leaves
// the debate unchanged and reports generated=false.
func (s *GenerationService) GenerateTeaser(ctx context.Context, id primitive.ObjectID) (*models.Debate, bool, error) {
	d, err := s.debates.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	cast, err := s.loadCast(ctx, d.Participants)
	if err != nil {
		return nil, false, newValidationError(err.Error())
	}

	text, err := s.ai.Text(ctx, callMeta{Purpose: "teaser", EntityType: "debate", EntityID: id},
		TextRequest{Prompt: BuildTeaserPrompt(d, cast), MaxTokens: 300, Temperature: 0.8, Safe: true})
	if err != nil {
		s.log.WithError(err).WithField("debate", id.Hex()).Warn("Teaser generation failed")
		return d, false, nil
	}
	if err := s.debates.SetTeaser(ctx, id, text); err != nil {
		return nil, false, err
	}
	d.Teaser = text
	return d, true, nil
}

func (s *GenerationService) publish(ctx context.Context, id primitive.ObjectID, eventType string, payload map[string]any) {
	if err := s.events.Publish(ctx, id.Hex(), eventType, payload); err != nil {
		s.log.WithError(err).WithField("event", eventType).Warn("Failed to publish generation event")
	}
}

func reviewNotes(docs []models.ReviewDocument) []string {
	var notes []string
	for _, d := range docs {
		text := d.ExtractedText
		if text == "" {
			continue
		}
		if len(text) > maxReviewNoteChars {
			text = text[:maxReviewNoteChars]
			for !utf8.ValidString(text) {
				text = text[:len(text)-1]
			}
		}
		notes = append(notes, fmt.Sprintf("%s:\n%s", d.FileName, text))
	}
	return notes
}

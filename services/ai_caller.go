package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"voxarena/models"
)

var tracer = otel.Tracer("voxarena/services")

// AICaller makes provider calls and records each one in the prompt log.
type AICaller struct {
	providers *Providers
	logs      PromptLogStore
	log       logrus.FieldLogger
	provider  string
	model     string
}

func NewAICaller(providers *Providers, logs PromptLogStore, provider, model string, log logrus.FieldLogger) *AICaller {
	return &AICaller{providers: providers, logs: logs, provider: provider, model: model, log: log}
}

// callMeta identifies what a call was for in the prompt log.
type callMeta struct {
	Purpose    string
	EntityType string
	EntityID   primitive.ObjectID
	Attempt    int
}

// Ready reports whether the default text provider is configured.
func (c *AICaller) Ready() error {
	_, err := c.providers.Text(c.provider)
	return err
}

// Text runs one text generation with the default provider and model.
func (c *AICaller) Text(ctx context.Context, meta callMeta, req TextRequest) (string, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	ctx, span := tracer.Start(ctx, "ai.text")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", c.provider),
		attribute.String("ai.model", req.Model),
		attribute.String("ai.purpose", meta.Purpose),
		attribute.Int("ai.attempt", meta.Attempt),
	)

	start := time.Now()
	gen, err := c.providers.Text(c.provider)
	var text string
	if err == nil {
		text, err = gen.GenerateText(ctx, req)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.record(ctx, meta, c.provider, req.Model, req.Prompt, text, err, time.Since(start))
	return text, err
}

// Image runs one image generation with the configured image provider.
func (c *AICaller) Image(ctx context.Context, meta callMeta, model, prompt string) (*Image, error) {
	ctx, span := tracer.Start(ctx, "ai.image")
	defer span.End()

	start := time.Now()
	gen, err := c.providers.Image()
	provider := "none"
	var img *Image
	if err == nil {
		provider = gen.Name()
		img, err = gen.GenerateImage(ctx, model, prompt)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	response := ""
	if img != nil {
		response = img.MIMEType
	}
	c.record(ctx, meta, provider, model, prompt, response, err, time.Since(start))
	return img, err
}

// record writes the prompt log. A failing log write is only logged.
func (c *AICaller) record(ctx context.Context, meta callMeta, provider, model, prompt, response string, callErr error, took time.Duration) {
	if meta.Attempt == 0 {
		meta.Attempt = 1
	}
	entry := &models.AIPromptLog{
		Provider:   provider,
		Model:      model,
		Purpose:    meta.Purpose,
		EntityType: meta.EntityType,
		EntityID:   meta.EntityID,
		Prompt:     prompt,
		Response:   response,
		Success:    callErr == nil,
		Attempt:    meta.Attempt,
		DurationMs: took.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if c.logs == nil {
		return
	}
	if err := c.logs.Insert(context.WithoutCancel(ctx), entry); err != nil {
		c.log.WithError(err).WithField("purpose", meta.Purpose).Warn("Failed to write AI prompt log")
	}
}

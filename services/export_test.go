package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

func exportFixture(t *testing.T, transcript []models.TranscriptEntry) (*ExportService, primitive.ObjectID) {
	t.Helper()
	ada := &models.Persona{Name: "Ada Lovelace", Slug: "ada"}
	personas := newMemPersonas(ada)
	debates := newMemDebates()
	d := &models.Debate{
		Title:            "Thinking Machines",
		Topic:            "Can engines compose music?",
		SegmentStructure: []models.Segment{{Key: "opening", Title: "Opening Statements"}},
		Participants:     []models.Participant{{PersonaID: ada.ID, Role: models.RoleDebater, SpeakingOrder: 1}},
		Transcript:       transcript,
	}
	if err := debates.Create(context.Background(), d); err != nil {
		t.Fatalf("Failed to create debate: %v", err)
	}
	return NewExportService(debates, personas), d.ID
}

func TestExportPDF(t *testing.T) {
	svc, id := exportFixture(t, []models.TranscriptEntry{
		{SegmentKey: "opening", Speaker: "Ada Lovelace", Text: "The engine might compose elaborate pieces – café included."},
	})
	data, name, err := svc.Export(context.Background(), id, ExportPDF)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if name != "thinking-machines.pdf" {
		t.Errorf("Expected file name thinking-machines.pdf, got %q", name)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Expected PDF output")
	}
}

func TestExportDOCX(t *testing.T) {
	svc, id := exportFixture(t, []models.TranscriptEntry{
		{SegmentKey: "opening", Speaker: "Ada Lovelace", Text: "Hello."},
	})
	data, name, err := svc.Export(context.Background(), id, ExportDOCX)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasSuffix(name, ".docx") {
		t.Errorf("Expected a .docx name, got %q", name)
	}
	// docx files are zip archives
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("Expected a zip container")
	}
}

func TestExportRequiresTranscript(t *testing.T) {
	svc, id := exportFixture(t, nil)
	var conflict *ConflictError
	if _, _, err := svc.Export(context.Background(), id, ExportPDF); !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %v", err)
	}
	var verr *ValidationError
	if _, _, err := svc.Export(context.Background(), id, "html"); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for unknown format, got %v", err)
	}
}

func TestCheckUpload(t *testing.T) {
	svc := NewReviewDocumentService(newMemDebates(), newMemStorage(), 0, quietLogger())

	cases := []struct {
		name string
		up   Upload
		ok   bool
	}{
		{"pdf", Upload{FileName: "brief.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}, true},
		{"docx", Upload{FileName: "Notes.DOCX", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Data: []byte("PK")}, true},
		{"mismatched type", Upload{FileName: "brief.pdf", ContentType: "application/msword", Data: []byte("x")}, false},
		{"wrong extension", Upload{FileName: "brief.txt", ContentType: "text/plain", Data: []byte("x")}, false},
		{"empty", Upload{FileName: "brief.pdf", ContentType: "application/pdf"}, false},
		{"too large", Upload{FileName: "brief.pdf", ContentType: "application/pdf", Data: make([]byte, MaxReviewDocumentBytes+1)}, false},
	}
	for _, tc := range cases {
		err := svc.CheckUpload(tc.up)
		if tc.ok && err != nil {
			t.Errorf("%s: expected upload to pass, got %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected upload to be rejected", tc.name)
		}
	}
}

func TestAttachDocxSkipsExtraction(t *testing.T) {
	debates := newMemDebates()
	d := &models.Debate{Title: "x"}
	_ = debates.Create(context.Background(), d)
	storage := newMemStorage()
	svc := NewReviewDocumentService(debates, storage, 0, quietLogger())

	doc, err := svc.Attach(context.Background(), d.ID, Upload{
		FileName:    "notes.doc",
		ContentType: "application/msword",
		Data:        []byte("binary"),
	})
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if doc.ExtractedText != "" {
		t.Error("Expected no extracted text for .doc")
	}
	stored, _ := debates.Get(context.Background(), d.ID)
	if len(stored.ReviewDocuments) != 1 || stored.ReviewDocuments[0].Key != doc.Key {
		t.Errorf("Expected the document to be attached, got %+v", stored.ReviewDocuments)
	}
	if _, ok := storage.objects[doc.Key]; !ok {
		t.Error("Expected the file to be uploaded")
	}
}

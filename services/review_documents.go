package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

const MaxReviewDocumentBytes = 10 << 20

var reviewDocumentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Upload is a file received from a multipart form.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type ReviewDocumentService struct {
	debates  DebateStore
	storage  ObjectStorage
	maxBytes int64
	log      logrus.FieldLogger
}

func NewReviewDocumentService(debates DebateStore, storage ObjectStorage, maxBytes int64, log logrus.FieldLogger) *ReviewDocumentService {
	if maxBytes <= 0 || maxBytes > MaxReviewDocumentBytes {
		maxBytes = MaxReviewDocumentBytes
	}
	return &ReviewDocumentService{debates: debates, storage: storage, maxBytes: maxBytes, log: log}
}

// CheckUpload verifies size, extension and MIME type. Extension and MIME type
// must agree on one of pdf, doc or docx.
func (s *ReviewDocumentService) CheckUpload(u Upload) error {
	var problems []string
	if len(u.Data) == 0 {
		problems = append(problems, "file is empty")
	}
	if int64(len(u.Data)) > s.maxBytes {
		problems = append(problems, fmt.Sprintf("file exceeds %d MB", s.maxBytes>>20))
	}
	ext := strings.ToLower(filepath.Ext(u.FileName))
	want, ok := reviewDocumentTypes[ext]
	if !ok {
		problems = append(problems, "only .pdf, .doc and .docx files are accepted")
	} else {
		got, _, err := mime.ParseMediaType(u.ContentType)
		if err != nil || got != want {
			problems = append(problems, fmt.Sprintf("content type %q does not match %s", u.ContentType, ext))
		}
	}
	if len(problems) > 0 {
		return newValidationError(problems...)
	}
	return nil
}

// Attach stores the upload and appends it to the debate's review documents.
// Text is extracted from PDFs so generation can quote it.
func (s *ReviewDocumentService) Attach(ctx context.Context, debateID primitive.ObjectID, u Upload) (*models.ReviewDocument, error) {
	if _, err := s.debates.Get(ctx, debateID); err != nil {
		return nil, err
	}
	if err := s.CheckUpload(u); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	ext := strings.ToLower(filepath.Ext(u.FileName))
	mimeType := reviewDocumentTypes[ext]
	key := objectKey("debates/"+debateID.Hex()+"/documents", ext)
	url, err := s.storage.Put(ctx, key, mimeType, u.Data)
	if err != nil {
		return nil, err
	}

	doc := models.ReviewDocument{
		Key:        key,
		URL:        url,
		FileName:   filepath.Base(u.FileName),
		MimeType:   mimeType,
		SizeBytes:  int64(len(u.Data)),
		UploadedAt: time.Now(),
	}
	if ext == ".pdf" {
		text, err := extractPDFText(u.Data)
		if err != nil {
			s.log.WithError(err).WithField("debate", debateID.Hex()).Warn("Could not extract review document text")
		}
		doc.ExtractedText = text
	}

	if err := s.debates.AddReviewDocument(ctx, debateID, doc); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.log.WithError(delErr).WithField("key", key).Warn("Failed to clean up orphaned upload")
		}
		return nil, err
	}
	return &doc, nil
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("could not read PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text layer found; the PDF may be scanned")
	}
	return text, nil
}

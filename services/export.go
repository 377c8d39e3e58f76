package services

import (
	"bytes"
	"context"
	"fmt"

	"baliance.com/gooxml/document"
	"github.com/go-pdf/fpdf"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

type ExportFormat string

const (
	ExportPDF  ExportFormat = "pdf"
	ExportDOCX ExportFormat = "docx"
)

// ContentType returns the MIME type of the rendered file.
func (f ExportFormat) ContentType() string {
	if f == ExportDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}

// ExportDocument is the renderer-independent shape of an exported debate.
type ExportDocument struct {
	Title        string
	Topic        string
	Participants []ExportParticipant
	Transcript   []ExportLine
}

type ExportParticipant struct {
	Name string
	Role string
}

type ExportLine struct {
	Segment string
	Speaker string
	Text    string
}

type ExportService struct {
	debates  DebateStore
	personas PersonaStore
}

func NewExportService(debates DebateStore, personas PersonaStore) *ExportService {
	return &ExportService{debates: debates, personas: personas}
}

// Export renders the debate in the requested format and returns the bytes
// along with a download file name.
func (s *ExportService) Export(ctx context.Context, id primitive.ObjectID, format ExportFormat) ([]byte, string, error) {
	if format != ExportPDF && format != ExportDOCX {
		return nil, "", newValidationError(fmt.Sprintf("unsupported export format %q", format))
	}
	d, err := s.debates.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if len(d.Transcript) == 0 {
		return nil, "", conflictf("debate has no transcript to export")
	}
	doc, err := s.normalize(ctx, d)
	if err != nil {
		return nil, "", err
	}

	var data []byte
	if format == ExportDOCX {
		data, err = RenderDOCX(doc)
	} else {
		data, err = RenderPDF(doc)
	}
	if err != nil {
		return nil, "", err
	}
	name := Slug(d.Title)
	if name == "" {
		name = d.ID.Hex()
	}
	return data, name + "." + string(format), nil
}

func (s *ExportService) normalize(ctx context.Context, d *models.Debate) (*ExportDocument, error) {
	ids := make([]primitive.ObjectID, 0, len(d.Participants))
	for _, p := range d.Participants {
		ids = append(ids, p.PersonaID)
	}
	personas, err := s.personas.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(personas))
	for _, p := range personas {
		names[p.ID] = p.Name
	}

	titles := make(map[string]string, len(d.SegmentStructure))
	for _, seg := range d.SegmentStructure {
		titles[seg.Key] = seg.Title
	}

	doc := &ExportDocument{Title: d.Title, Topic: d.Topic}
	for _, p := range d.Participants {
		name := names[p.PersonaID]
		if name == "" {
			name = "Unknown persona"
		}
		doc.Participants = append(doc.Participants, ExportParticipant{Name: name, Role: string(p.Role)})
	}
	for _, e := range d.Transcript {
		segment := titles[e.SegmentKey]
		if segment == "" {
			segment = e.SegmentKey
		}
		doc.Transcript = append(doc.Transcript, ExportLine{Segment: segment, Speaker: e.Speaker, Text: e.Text})
	}
	return doc, nil
}

// RenderPDF lays the document out on A4 pages with the core Helvetica font.
func RenderPDF(doc *ExportDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(doc.Title), "", "L", false)
	pdf.SetFont("Helvetica", "I", 12)
	pdf.MultiCell(0, 7, tr(doc.Topic), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Participants", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, p := range doc.Participants {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s (%s)", p.Name, p.Role)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	segment := ""
	for _, line := range doc.Transcript {
		if line.Segment != segment {
			segment = line.Segment
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 8, tr(segment), "", "L", false)
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr(line.Speaker), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(line.Text), "", "L", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDOCX writes the document with the default Word styles.
func RenderDOCX(doc *ExportDocument) ([]byte, error) {
	d := document.New()

	title := d.AddParagraph()
	title.SetStyle("Title")
	title.AddRun().AddText(doc.Title)

	topic := d.AddParagraph()
	topic.SetStyle("Subtitle")
	topic.AddRun().AddText(doc.Topic)

	heading := d.AddParagraph()
	heading.SetStyle("Heading1")
	heading.AddRun().AddText("Participants")
	for _, p := range doc.Participants {
		d.AddParagraph().AddRun().AddText(fmt.Sprintf("%s (%s)", p.Name, p.Role))
	}

	segment := ""
	for _, line := range doc.Transcript {
		if line.Segment != segment {
			segment = line.Segment
			h := d.AddParagraph()
			h.SetStyle("Heading2")
			h.AddRun().AddText(segment)
		}
		para := d.AddParagraph()
		speaker := para.AddRun()
		speaker.Properties().SetBold(true)
		speaker.AddText(line.Speaker + ": ")
		para.AddRun().AddText(line.Text)
	}

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}

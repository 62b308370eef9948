package resumes

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/careerlift/internal/apperr"
	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/models"
)

// Preview bounds.
const (
	DefaultPreviewDPI = 150
	MaxPreviewDPI     = 600
)

// ToResumeData seeds an editor document from a career graph. Only person,
// education, experiences and skills are carried over; the rest start empty.
func ToResumeData(g *models.GraphData) models.ResumeData {
	out := models.NewResumeData()
	if g == nil {
		return out
	}

	first, last, _ := strings.Cut(strings.Join(strings.Fields(g.PersonName()), " "), " ")
	out.Person = models.PersonData{
		FirstName: first,
		LastName:  last,
		Email:     g.Person.Text("email"),
		Phone:     g.Person.Text("phone"),
		Location:  g.Person.Text("location"),
		Profile:   g.Person.Text("summary"),
	}

	for _, edu := range g.Education {
		out.Education = append(out.Education, models.EducationEntry{
			Degree:      edu.Text("degree"),
			Institution: edu.Text("institution"),
			Dates:       edu.Text("year"),
			Details:     []string{},
		})
	}

	for _, exp := range g.Experiences {
		bullets := []string{}
		if d := exp.Text("description"); d != "" {
			bullets = append(bullets, d)
		}
		out.Experiences = append(out.Experiences, models.ExperienceEntry{
			Title:   exp.Text("title"),
			Company: exp.Text("company"),
			Dates:   exp.Text("duration"),
			Bullets: bullets,
		})
	}

	for _, s := range g.Skills {
		if v := s.String(); v != "" {
			out.Skills.Flat = append(out.Skills.Flat, v)
		}
	}
	return out
}

// ResumeData loads a person's graph and maps it into an editor document.
func (s *Service) ResumeData(ctx context.Context, person string) (*models.ResumeData, error) {
	g, err := s.Graph(ctx, person)
	if err != nil {
		return nil, err
	}
	data := ToResumeData(g)
	return &data, nil
}

// Templates lists the LaTeX templates.
func (s *Service) Templates(ctx context.Context) ([]models.TemplateInfo, error) {
	return s.backend.LatexTemplates(ctx)
}

// Compile renders the document to a PDF.
func (s *Service) Compile(ctx context.Context, req models.CompileRequest) ([]byte, error) {
	if err := checkCompile(req); err != nil {
		return nil, err
	}
	return s.backend.CompileLatex(ctx, req)
}

// Preview renders one page of the document as a PNG. A zero dpi selects
// DefaultPreviewDPI.
func (s *Service) Preview(ctx context.Context, req models.CompileRequest, page, dpi int) (*backend.Preview, error) {
	if err := checkCompile(req); err != nil {
		return nil, err
	}
	if dpi == 0 {
		dpi = DefaultPreviewDPI
	}
	if page < 0 || dpi < 1 || dpi > MaxPreviewDPI {
		return nil, fmt.Errorf("resumes: preview page %d dpi %d out of range: %w", page, dpi, apperr.ErrInvalid)
	}
	return s.backend.CompileLatexPreview(ctx, req, page, dpi)
}

func checkCompile(req models.CompileRequest) error {
	if strings.TrimSpace(req.TemplateID) == "" {
		return fmt.Errorf("resumes: template id is required: %w", apperr.ErrInvalid)
	}
	return nil
}

package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/careerlift/internal/models"
	"github.com/starford/careerlift/internal/resumes"
)

func (s *Server) addLatexTools() {
	s.mcp.AddTool(mcp.NewTool("latex_templates",
		mcp.WithDescription("List the LaTeX resume templates and the sections each one renders."),
	), s.latexTemplates)

	s.mcp.AddTool(mcp.NewTool("resume_data",
		mcp.WithDescription("Return the resume editor document seeded from a person's career graph."),
		mcp.WithString("person", mcp.Required(), mcp.Description("Person name as stored in the graph")),
	), s.resumeData)

	s.mcp.AddTool(mcp.NewTool("preview_resume",
		mcp.WithDescription("Render one page of a person's graph-seeded resume with a LaTeX template as a PNG image."),
		mcp.WithString("person", mcp.Required(), mcp.Description("Person name as stored in the graph")),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template id from latex_templates")),
		mcp.WithNumber("page", mcp.Description("Zero-based page index")),
		mcp.WithNumber("dpi", mcp.Description(fmt.Sprintf("Resolution, default %d, max %d",
			resumes.DefaultPreviewDPI, resumes.MaxPreviewDPI))),
	), s.previewResume)
}

func (s *Server) latexTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.resumes.Templates(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("no templates available"), nil
	}
	return jsonResult(list), nil
}

func (s *Server) resumeData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	person, err := req.RequireString("person")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.resumes.ResumeData(ctx, person)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(data), nil
}

func (s *Server) previewResume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	person, err := req.RequireString("person")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	templateID, err := req.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page := req.GetInt("page", 0)

	data, err := s.resumes.ResumeData(ctx, person)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.resumes.Preview(ctx, models.CompileRequest{TemplateID: templateID, ResumeData: *data},
		page, req.GetInt("dpi", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultImage(
		fmt.Sprintf("page %d of %d", page+1, p.PageCount),
		base64.StdEncoding.EncodeToString(p.PNG),
		"image/png",
	), nil
}

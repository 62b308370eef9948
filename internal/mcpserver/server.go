// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes CareerLift job search tools for LLM integration via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/careerlift/internal/jobs"
	"github.com/starford/careerlift/internal/models"
	"github.com/starford/careerlift/internal/resumes"
	"github.com/starford/careerlift/internal/sections"
)

// Server wraps the MCP server with CareerLift tools.
type Server struct {
	mcp     *server.MCPServer
	jobs    *jobs.Controller
	resumes *resumes.Service
	limits  jobs.Config
}

// New creates a new MCP server with all CareerLift tools registered.
func New(ctrl *jobs.Controller, svc *resumes.Service, limits jobs.Config) *Server {
	s := &Server{jobs: ctrl, resumes: svc, limits: limits}

	s.mcp = server.NewMCPServer(
		"CareerLift",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_jobs",
		mcp.WithDescription("Search every job source in order and return the listings per source."),
		mcp.WithString("keyword", mcp.Description("Keyword filter, e.g. a job title")),
		mcp.WithString("location", mcp.Description("Location filter, e.g. a city or Remote")),
	), s.searchJobs)

	s.mcp.AddTool(mcp.NewTool("refresh_source",
		mcp.WithDescription("Refetch one job source at the default page size, bypassing caches."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source key"),
			mcp.Enum(sourceKeys()...)),
	), s.refreshSource)

	s.mcp.AddTool(mcp.NewTool("load_more",
		mcp.WithDescription("Fetch a larger page from one job source."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source key"),
			mcp.Enum(sourceKeys()...)),
	), s.loadMore)

	s.mcp.AddTool(mcp.NewTool("add_job_to_graph",
		mcp.WithDescription("Add a listing to the knowledge graph. With a resume selected the job is also saved to it."),
		mcp.WithString("apply_url", mcp.Required(), mcp.Description("Apply or source URL of the listing")),
		mcp.WithString("title", mcp.Description("Job title")),
		mcp.WithString("company", mcp.Description("Company name")),
		mcp.WithString("source", mcp.Description("Source key")),
	), s.addJobToGraph)

	s.mcp.AddTool(mcp.NewTool("list_resumes",
		mcp.WithDescription("List the uploaded resumes."),
	), s.listResumes)

	s.mcp.AddTool(mcp.NewTool("select_resume",
		mcp.WithDescription("Select the resume used for ATS scoring. An empty id clears the selection."),
		mcp.WithString("resume_id", mcp.Description("Resume id from list_resumes")),
	), s.selectResume)

	s.mcp.AddTool(mcp.NewTool("resume_graph",
		mcp.WithDescription("Return the career graph of a person as display nodes and edges."),
		mcp.WithString("person", mcp.Required(), mcp.Description("Person name as stored in the graph")),
	), s.resumeGraph)

	s.mcp.AddTool(mcp.NewTool("detect_sections",
		mcp.WithDescription("Detect resume section regions from positioned text fragments of one page."),
		mcp.WithNumber("page_height", mcp.Required(), mcp.Description("Page height in document units")),
		mcp.WithNumber("page", mcp.Description("Zero-based page index")),
		mcp.WithArray("fragments", mcp.Required(),
			mcp.Description("Text fragments as {text, y}; y grows upwards from the page bottom")),
	), s.detectSections)

	s.mcp.AddTool(uploadResumeTool(), s.uploadResume)
	s.addLatexTools()

	s.mcp.AddResource(
		mcp.NewResource(sourcesURI, "Job Sources",
			mcp.WithResourceDescription("Job sources in fetch order and the paging limits."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSourcesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func sourceKeys() []string {
	var keys []string
	for _, src := range jobs.Sources() {
		keys = append(keys, src.Key())
	}
	return keys
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// failure prefers the user-facing message carried by err.
func (s *Server) failure(err error) *mcp.CallToolResult {
	if msg := jobs.UserMessage(err); msg != "" {
		return mcp.NewToolResultError(msg)
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) searchJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := jobs.Query{
		Keyword:  strings.TrimSpace(req.GetString("keyword", "")),
		Location: strings.TrimSpace(req.GetString("location", "")),
	}
	if err := s.jobs.Search(ctx, q); err != nil {
		return s.failure(err), nil
	}
	return jsonResult(s.jobs.Snapshot()), nil
}

func (s *Server) sourceArg(req mcp.CallToolRequest) (jobs.Source, *mcp.CallToolResult) {
	key, err := req.RequireString("source")
	if err != nil {
		return 0, mcp.NewToolResultError(err.Error())
	}
	src, err := jobs.ParseSource(key)
	if err != nil {
		return 0, mcp.NewToolResultError(err.Error())
	}
	return src, nil
}

func (s *Server) refreshSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, bad := s.sourceArg(req)
	if bad != nil {
		return bad, nil
	}
	if err := s.jobs.RefreshSource(ctx, src); err != nil {
		return s.failure(err), nil
	}
	return jsonResult(sourceView(s.jobs.Snapshot(), src)), nil
}

func (s *Server) loadMore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, bad := s.sourceArg(req)
	if bad != nil {
		return bad, nil
	}
	if err := s.jobs.LoadMore(ctx, src); err != nil {
		return s.failure(err), nil
	}
	return jsonResult(sourceView(s.jobs.Snapshot(), src)), nil
}

func sourceView(snap jobs.Snapshot, src jobs.Source) jobs.SourceView {
	for _, v := range snap.Sources {
		if v.Source == src.Key() {
			return v
		}
	}
	return jobs.SourceView{}
}

func (s *Server) addJobToGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applyURL, err := req.RequireString("apply_url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	job := models.JobListing{
		ApplyURL: applyURL,
		Title:    req.GetString("title", ""),
		Company:  req.GetString("company", ""),
		Source:   req.GetString("source", ""),
	}
	if err := s.jobs.AddToGraph(ctx, job); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s", job.URL())), nil
}

func (s *Server) listResumes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.resumes.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("no resumes uploaded"), nil
	}
	return jsonResult(list), nil
}

func (s *Server) selectResume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("resume_id", "")
	var selected *models.ResumeSummary
	if id != "" {
		found, err := s.resumes.Find(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		selected = found
	}
	if err := s.jobs.SelectResume(ctx, selected); err != nil {
		return s.failure(err), nil
	}
	if selected == nil {
		return mcp.NewToolResultText("selection cleared"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("selected: %s", selected.ResumeID)), nil
}

func (s *Server) resumeGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	person, err := req.RequireString("person")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.resumes.VisualGraph(ctx, person)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(g), nil
}

func (s *Server) detectSections(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	height, err := req.RequireFloat("page_height")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if height <= 0 {
		return mcp.NewToolResultError("page_height must be positive"), nil
	}
	page := req.GetInt("page", 0)

	raw, err := json.Marshal(req.GetArguments()["fragments"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var fragments []sections.Fragment
	if err := json.Unmarshal(raw, &fragments); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid fragments: %v", err)), nil
	}

	regions := sections.Detect(fragments, height, page)
	if len(regions) == 0 {
		return mcp.NewToolResultText("no section headings found"), nil
	}
	return jsonResult(regions), nil
}

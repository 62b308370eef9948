package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/careerlift/internal/jobs"
)

const sourcesURI = "careerlift://sources"

// SourcesGuide describes the job sources and paging rules for LLM clients.
func SourcesGuide(limits jobs.Config) string {
	var b strings.Builder
	b.WriteString("# CareerLift Job Sources\n\n")
	b.WriteString("Sources are always fetched in this order:\n\n")
	for i, src := range jobs.Sources() {
		fmt.Fprintf(&b, "%d. `%s` (%s)\n", i+1, src.Key(), src.Label())
	}
	fmt.Fprintf(&b, "\n## Paging\n\n"+
		"- A search fetches up to %d listings per source.\n"+
		"- `load_more` grows one source by %d, up to %d. At the maximum it does nothing.\n"+
		"- `refresh_source` resets one source to %d and bypasses caches.\n",
		limits.DefaultLimit, limits.Increment, limits.MaxLimit, limits.DefaultLimit)
	b.WriteString("\n## Scoring\n\n" +
		"Select a resume with `select_resume` to get `ats_score` (0-100) on every listing.\n")
	return b.String()
}

func (s *Server) readSourcesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      sourcesURI,
			MIMEType: "text/markdown",
			Text:     SourcesGuide(s.limits),
		},
	}, nil
}

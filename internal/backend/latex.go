package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/starford/careerlift/internal/models"
)

// maxRenderBytes bounds a compiled PDF or preview image.
const maxRenderBytes = 32 << 20

// Preview is one rendered page of a compiled resume.
type Preview struct {
	PNG       []byte
	PageCount int
}

// LatexTemplates lists the resume templates the backend can compile.
func (c *Client) LatexTemplates(ctx context.Context) ([]models.TemplateInfo, error) {
	var out []models.TemplateInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/latex/templates", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.TemplateInfo{}
	}
	return out, nil
}

// CompileLatex renders req to a PDF.
func (c *Client) CompileLatex(ctx context.Context, req models.CompileRequest) ([]byte, error) {
	body, _, err := c.render(ctx, "/api/latex/compile", nil, req)
	return body, err
}

// CompileLatexPreview renders one page of req as a PNG at dpi. The backend
// reports the document's page count in X-Page-Count.
func (c *Client) CompileLatexPreview(ctx context.Context, req models.CompileRequest, page, dpi int) (*Preview, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("dpi", strconv.Itoa(dpi))
	body, header, err := c.render(ctx, "/api/latex/compile/preview", q, req)
	if err != nil {
		return nil, err
	}
	pages, err := strconv.Atoi(header.Get("X-Page-Count"))
	if err != nil {
		pages = 1
	}
	return &Preview{PNG: body, PageCount: pages}, nil
}

func (c *Client) render(ctx context.Context, path string, query url.Values, in models.CompileRequest) ([]byte, http.Header, error) {
	buf, err := json.Marshal(in)
	if err != nil {
		return nil, nil, fmt.Errorf("backend: encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, query), bytes.NewReader(buf))
	if err != nil {
		return nil, nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send(req, path)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRenderBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("backend: read %s: %w", path, err)
	}
	return body, resp.Header, nil
}

package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/careerlift/internal/resumes"
)

const maxResumeSize = 10 << 20 // 10 MB

var (
	mimeToExt = map[string]string{
		"text/plain":         ".txt",
		"text/markdown":      ".md",
		"application/pdf":    ".pdf",
		"application/msword": ".doc",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	}

	safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

func uploadResumeTool() mcp.Tool {
	return mcp.NewTool("upload_resume",
		mcp.WithDescription("Upload a resume given as a base64 data URI "+
			"(data:application/pdf;base64,...). Allowed types: "+strings.Join(resumes.AllowedExtensions, " ")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Base64 data URI of the file")),
		mcp.WithString("filename", mcp.Description("File name; derived from the MIME type when empty")),
		mcp.WithString("person_name", mcp.Description("Name of the person the resume belongs to")),
		mcp.WithString("resume_name", mcp.Description("Display name of the resume")),
	)
}

func (s *Server) uploadResume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, ext, err := decodeDataURI(uri)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxResumeSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), maxResumeSize)), nil
	}

	filename := req.GetString("filename", "")
	if filename == "" {
		filename = "resume-" + uuid.NewString()[:8] + ext
	}
	filename = sanitizeFilename(filename)

	res, err := s.resumes.Upload(ctx, resumes.Upload{
		Filename:   filename,
		Content:    bytes.NewReader(data),
		PersonName: req.GetString("person_name", ""),
		ResumeName: req.GetString("resume_name", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

// decodeDataURI parses a data:<mediatype>;base64,<data> URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("expected a data URI")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 data: %w", err)
		}
	}

	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	ext := mimeToExt[mime]
	if ext == "" {
		return nil, "", fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}
	return data, ext, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	ext := filepath.Ext(name)
	base := safeFilenameRe.ReplaceAllString(strings.TrimSuffix(name, ext), "_")
	if base == "" || base == "." {
		base = "resume"
	}
	return base + strings.ToLower(ext)
}

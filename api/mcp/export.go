package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/quire/pkg/export"
)

var (
	exportToolName    = "export_document"
	exportDescription = "Export research text as a markdown, html or plain text document named after the topic."
)

// ExportInput represents the input arguments for the export_document tool.
type ExportInput struct {
	Topic   string `json:"topic" jsonschema:"the research topic, used for the title and file name"`
	Content string `json:"content" jsonschema:"the accumulated research text"`
	Format  string `json:"format,omitempty" jsonschema:"markdown, html or text (default: markdown)"`
}

// ExportOutput represents the structured output of export_document.
type ExportOutput struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// handleExport processes an export_document request.
func (s *Server) handleExport(_ context.Context, _ *mcp.CallToolRequest, input ExportInput) (*mcp.CallToolResult, ExportOutput, error) {
	format := export.FormatMarkdown
	if input.Format != "" {
		var err error
		format, err = export.ParseFormat(input.Format)
		if err != nil {
			return toolError(err.Error()), ExportOutput{}, nil
		}
	}

	doc, err := export.Render(input.Topic, input.Content, format)
	if err != nil {
		s.config.Logger.Error("MCP export failed", "error", err)
		return toolError(fmt.Sprintf("Export failed: %v", err)), ExportOutput{}, nil
	}

	output := ExportOutput{
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Body:        string(doc.Body),
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: output.Body},
		},
	}, output, nil
}

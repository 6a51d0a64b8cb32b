package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/quire/pkg/render"
)

var (
	renderToolName    = "render_sections"
	renderDescription = "Split markdown-like research text into sections on '## ' headings. Each section is classified (generic, images, videos, sources) and its body parsed into paragraphs, list items, bold spans and links."
)

// RenderInput represents the input arguments for the render_sections tool.
type RenderInput struct {
	Content string `json:"content" jsonschema:"the accumulated research text to split into sections"`
}

// RenderOutput represents the structured output of render_sections.
type RenderOutput struct {
	Sections []render.View `json:"sections"`
	Count    int           `json:"count"`
}

// handleRender processes a render_sections request.
func (s *Server) handleRender(_ context.Context, _ *mcp.CallToolRequest, input RenderInput) (*mcp.CallToolResult, RenderOutput, error) {
	views := render.Views(input.Content)
	output := RenderOutput{
		Sections: views,
		Count:    len(views),
	}

	s.config.Logger.Debug("MCP render request", "bytes", len(input.Content), "sections", len(views))

	// Structured output is also serialised into a text block for clients
	// that only read content.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return toolError(fmt.Sprintf("Failed to serialize sections: %v", err)), RenderOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

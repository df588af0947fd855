package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/voici5986/lumina-layout/internal/parse"
)

// NewMCPServer exposes the parse pipeline as the parse_pdf MCP tool.
func (a *API) NewMCPServer(version string) *server.MCPServer {
	s := server.NewMCPServer("lumina-layout", version, server.WithToolCapabilities(false))
	tool := mcp.NewTool("parse_pdf",
		mcp.WithDescription("Analyse the layout of a PDF on the server filesystem and return its blocks as JSON"),
		mcp.WithString("pdf_path", mcp.Required(), mcp.Description("Path of the PDF to parse")),
		mcp.WithBoolean("layout_analysis", mcp.Description("Run layout analysis (default true)")),
		mcp.WithBoolean("table_recognition", mcp.Description("Run table recognition (default true)")),
		mcp.WithString("ocr_engine", mcp.Description("Engine name; empty selects the default")),
		mcp.WithString("language", mcp.Description("OCR language hint")),
	)
	s.AddTool(tool, a.parseTool)
	return s
}

// MCPHandler returns the streamable HTTP transport for the MCP server.
func (a *API) MCPHandler(version string) http.Handler {
	return server.NewStreamableHTTPServer(a.NewMCPServer(version))
}

func (a *API) parseTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	preq := parse.Request{
		PDFPath:   req.GetString("pdf_path", ""),
		OCREngine: req.GetString("ocr_engine", ""),
		Language:  req.GetString("language", ""),
	}
	if _, ok := args["layout_analysis"]; ok {
		v := req.GetBool("layout_analysis", true)
		preq.LayoutAnalysis = &v
	}
	if _, ok := args["table_recognition"]; ok {
		v := req.GetBool("table_recognition", true)
		preq.TableRecognition = &v
	}

	ctx, cancel := a.parseContext(ctx)
	defer cancel()
	st, err := a.Parser.Parse(ctx, preq, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := json.Marshal(parseResponse{Structure: st})
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

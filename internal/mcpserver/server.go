// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the modal logic K prover for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/modalk/internal/prover"
)

// SyntaxURI is the resource holding SyntaxContract.
const SyntaxURI = "modalk://syntax"

// Server wraps the MCP server with prover tools.
type Server struct {
	mcp *server.MCPServer
	svc *prover.Service
}

// New creates a new MCP server with all prover tools registered.
func New(svc *prover.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"modalk",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("prove_formula",
		mcp.WithDescription("Decide whether a modal logic K formula is valid. "+
			"Returns the derivation trace, the verdict and, for invalid formulas, "+
			"a Kripke counter-model. Read the syntax contract first via "+
			"get_syntax_contract or the "+SyntaxURI+" resource."),
		mcp.WithString("formula", mcp.Required(), mcp.Description("Formula, e.g. [](p -> q) -> ([]p -> []q)")),
		mcp.WithString("notation", mcp.Description("Output notation: symbolic (default) or ascii"), mcp.Enum("symbolic", "ascii")),
		mcp.WithString("successors", mcp.Description("Counter-model successor policy: shallowest (default) or all"), mcp.Enum("shallowest", "all")),
	), s.proveFormula)

	s.mcp.AddTool(mcp.NewTool("get_syntax_contract",
		mcp.WithDescription("Returns the formula syntax accepted by prove_formula and workspace files."),
	), s.getSyntaxContract)

	s.mcp.AddTool(mcp.NewTool("get_proof",
		mcp.WithDescription("Read a recorded proof by checksum."),
		mcp.WithString("checksum", mcp.Required(), mcp.Description("Checksum returned by prove_formula or list_proofs")),
	), s.getProof)

	s.mcp.AddTool(mcp.NewTool("list_proofs",
		mcp.WithDescription("List recorded proofs, newest first."),
		mcp.WithString("verdict", mcp.Description("Optional filter"), mcp.Enum("valid", "invalid")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of proofs (default 50)")),
	), s.listProofs)

	s.mcp.AddTool(mcp.NewTool("search_proofs",
		mcp.WithDescription("Full-text search through recorded formulas and traces."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchProofs)

	s.mcp.AddTool(mcp.NewTool("create_formula_file",
		mcp.WithDescription("Create a workspace file of formulas and prove each line. "+
			"Content follows the workspace file format in the syntax contract."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new file (must end with .modal)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Optional YAML frontmatter, then one formula per line")),
	), s.createFormulaFile)

	s.mcp.AddTool(mcp.NewTool("list_formula_files",
		mcp.WithDescription("List workspace formula files."),
	), s.listFormulaFiles)

	s.mcp.AddResource(
		mcp.NewResource(SyntaxURI, "Formula Syntax Contract",
			mcp.WithResourceDescription("Formula syntax and workspace file format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
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

func (s *Server) proveFormula(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := req.RequireString("formula")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.svc.Prove(ctx, prover.Request{
		Formula:    f,
		Notation:   req.GetString("notation", ""),
		Successors: req.GetString("successors", ""),
		Source:     prover.SourceMCP,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return reportResult(rep)
}

func (s *Server) getProof(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cs, err := req.RequireString("checksum")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.svc.Get(ctx, cs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return reportResult(rep)
}

func reportResult(rep *prover.Report) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "checksum: %s\n", rep.Checksum)
	if err := rep.WriteText(&buf, prover.TextOptions{}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) listProofs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.List(ctx, req.GetInt("limit", 50), 0, req.GetString("verdict", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{"proofs": items, "total": total}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchProofs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createFormulaFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fd, err := s.svc.CreateFile(ctx, path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "created: %s\n", path)
	for _, r := range fd.Results {
		verdict := "INVALID"
		if r.Valid {
			verdict = "VALID"
		}
		fmt.Fprintf(&b, "line %d: %s", r.Line, verdict)
		if r.Mismatch() {
			fmt.Fprintf(&b, " (expected %s)", r.Expect)
		}
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listFormulaFiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.svc.ListFiles(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, len(metas))
	for i, m := range metas {
		paths[i] = m.Path
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getSyntaxContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SyntaxContract), nil
}

func (s *Server) readSyntaxResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SyntaxURI,
			MIMEType: "text/markdown",
			Text:     SyntaxContract,
		},
	}, nil
}

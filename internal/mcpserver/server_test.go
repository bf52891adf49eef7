package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/modalk/internal/prover"
	"github.com/starford/modalk/internal/storage"
	"github.com/starford/modalk/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()
	db := testutil.TestDB(t)
	_, store := testutil.TestWorkspace(t)
	svc := prover.NewService(prover.WithHistory(db), prover.WithStore(store))
	return New(svc, "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "prove_formula":
		result, err = srv.proveFormula(ctx, req)
	case "get_proof":
		result, err = srv.getProof(ctx, req)
	case "list_proofs":
		result, err = srv.listProofs(ctx, req)
	case "search_proofs":
		result, err = srv.searchProofs(ctx, req)
	case "create_formula_file":
		result, err = srv.createFormulaFile(ctx, req)
	case "list_formula_files":
		result, err = srv.listFormulaFiles(ctx, req)
	case "get_syntax_contract":
		result, err = srv.getSyntaxContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestProveFormula_Valid(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "prove_formula", map[string]any{"formula": "[](p -> q) -> ([]p -> []q)"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.HasPrefix(text, "checksum: ") {
		t.Errorf("missing checksum line: %q", text)
	}
	if !strings.Contains(text, "\nVALID\n") {
		t.Errorf("missing verdict: %q", text)
	}
}

func TestProveFormula_InvalidAscii(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "prove_formula", map[string]any{"formula": "[]p -> p", "notation": "ascii"})
	text := resultText(r)
	if !strings.Contains(text, "Given: []p->p\n") {
		t.Errorf("given line not ascii: %q", text)
	}
	if !strings.Contains(text, "INVALID\nModel:\n") {
		t.Errorf("missing counter-model: %q", text)
	}
}

func TestProveFormula_Errors(t *testing.T) {
	srv, _ := testServer(t)

	if r := callTool(t, srv, "prove_formula", map[string]any{}); !r.IsError {
		t.Error("expected error for missing formula")
	}
	if r := callTool(t, srv, "prove_formula", map[string]any{"formula": "p &"}); !r.IsError {
		t.Error("expected error for unparsable formula")
	}
}

func TestGetProof(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "prove_formula", map[string]any{"formula": "<>T"})
	first := strings.SplitN(resultText(r), "\n", 2)[0]
	cs := strings.TrimPrefix(first, "checksum: ")

	r = callTool(t, srv, "get_proof", map[string]any{"checksum": cs})
	if r.IsError || !strings.Contains(resultText(r), "INVALID") {
		t.Errorf("get_proof = %q", resultText(r))
	}

	if r := callTool(t, srv, "get_proof", map[string]any{"checksum": "nope"}); !r.IsError {
		t.Error("expected error for unknown checksum")
	}
}

func TestListAndSearchProofs(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "prove_formula", map[string]any{"formula": "[]r -> r"})
	callTool(t, srv, "prove_formula", map[string]any{"formula": "p V -p"})

	r := callTool(t, srv, "list_proofs", map[string]any{"verdict": "valid"})
	if !strings.Contains(resultText(r), `"total": 1`) {
		t.Errorf("list_proofs = %q", resultText(r))
	}

	r = callTool(t, srv, "search_proofs", map[string]any{"query": "r"})
	if !strings.Contains(resultText(r), `"checksum"`) {
		t.Errorf("search_proofs = %q", resultText(r))
	}
}

func TestCreateAndListFormulaFiles(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "create_formula_file", map[string]any{
		"path":    "k.modal",
		"content": "---\nexpect: valid\n---\n[](p -> q) -> ([]p -> []q)\n[]p -> p\n",
	})
	want := "created: k.modal\nline 4: VALID\nline 5: INVALID (expected valid)\n"
	if text := resultText(r); text != want {
		t.Errorf("create result = %q, want %q", text, want)
	}

	_ = store.Write("other.modal", []byte("p"))
	r = callTool(t, srv, "list_formula_files", map[string]any{})
	if text := resultText(r); text != "k.modal\nother.modal" {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "create_formula_file", map[string]any{"path": "k.modal", "content": "p"})
	if !r.IsError {
		t.Error("expected error for existing file")
	}
}

func TestSyntaxContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_syntax_contract", map[string]any{})
	if resultText(r) != SyntaxContract {
		t.Error("contract tool should return SyntaxContract")
	}

	contents, err := srv.readSyntaxResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != SyntaxURI || tc.Text != SyntaxContract {
		t.Errorf("resource = %+v", contents[0])
	}
}

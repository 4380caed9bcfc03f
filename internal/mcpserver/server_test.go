package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/collabeat/internal/beatservice"
	"github.com/starford/collabeat/internal/models"
	"github.com/starford/collabeat/internal/payload"
	"github.com/starford/collabeat/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.StubFetcher) {
	t.Helper()
	fetcher := testutil.NewStubFetcher()
	return New(beatservice.NewService(fetcher, nil), "test"), fetcher
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; call the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "on_execute":
		result, err = srv.onExecute(ctx, req)
	case "on_mint":
		result, err = srv.onMint(ctx, req)
	case "on_clone":
		result, err = srv.onClone(ctx, req)
	case "decode_payload":
		result, err = srv.decodePayload(ctx, req)
	case "get_ownership_contract":
		result, err = srv.getOwnershipContract(ctx, req)
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

func callResult(t *testing.T, r *mcp.CallToolResult) models.CallResult {
	t.Helper()
	var res models.CallResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return res
}

var contractArg = map[string]interface{}{
	"token_key":        "tk",
	"meta_contract_id": "mc-1",
	"public_key":       "0xowner",
}

func TestOnExecute(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "on_execute", map[string]interface{}{
		"contract":    contractArg,
		"metadatas":   []interface{}{},
		"transaction": map[string]interface{}{"token_id": "9", "public_key": "0xpk", "alias": "a", "data": "d"},
	})
	res := callResult(t, r)
	if !res.Succeeded || len(res.Entries) != 4 {
		t.Fatalf("result = %+v", res)
	}
	if res.Entries[0].Content != "Collabeat #9" || res.Entries[0].PublicKey != "0xowner" {
		t.Errorf("name entry = %+v", res.Entries[0])
	}
}

func TestOnExecute_TooManyBeats(t *testing.T) {
	srv, _ := testServer(t)

	history := make([]interface{}, 14)
	for i := range history {
		history[i] = map[string]interface{}{"alias": "x"}
	}
	r := callTool(t, srv, "on_execute", map[string]interface{}{
		"contract":    contractArg,
		"metadatas":   history,
		"transaction": map[string]interface{}{},
	})
	res := callResult(t, r)
	if res.Succeeded || res.ErrorText != "Can not be more than 10 beats" {
		t.Errorf("result = %+v", res)
	}
}

func TestOnExecute_BadArguments(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "on_execute", map[string]interface{}{"metadatas": "not an array"})
	if !r.IsError {
		t.Error("expected error for malformed arguments")
	}
}

func TestOnMint_PlainCID(t *testing.T) {
	srv, fetcher := testServer(t)
	fetcher.Set("bafyrec", []byte(`[{"owner":"0xa","data_key":"k","cid":"c1"},{"owner":"0xb","data_key":"k","cid":"c2"}]`))

	r := callTool(t, srv, "on_mint", map[string]interface{}{
		"contract":       contractArg,
		"token_id":       "3",
		"cid":            "bafyrec",
		"ipfs_multiaddr": "/ip4/1.2.3.4/tcp/5001",
	})
	res := callResult(t, r)
	if len(res.Entries) != 5 {
		t.Fatalf("entries = %+v", res.Entries)
	}
	if res.Entries[4].PublicKey != "0xb" || res.Entries[4].Content != "c2" {
		t.Errorf("last entry = %+v", res.Entries[4])
	}
}

func TestOnMint_TransactionEcho(t *testing.T) {
	srv, fetcher := testServer(t)

	r := callTool(t, srv, "on_mint", map[string]interface{}{
		"contract":    contractArg,
		"transaction": map[string]interface{}{"token_id": "5", "public_key": "0xpk", "alias": "al", "data": "dd"},
	})
	res := callResult(t, r)
	if len(res.Entries) != 4 || res.Entries[0].Content != "Collabeat #5" {
		t.Fatalf("entries = %+v", res.Entries)
	}
	if len(fetcher.Calls()) != 0 {
		t.Errorf("unexpected fetch: %+v", fetcher.Calls())
	}
}

func TestOnClone(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "on_clone", nil)
	if !strings.Contains(resultText(r), `"result": true`) {
		t.Errorf("clone = %q", resultText(r))
	}
}

func TestDecodePayload(t *testing.T) {
	srv, _ := testServer(t)
	data, err := payload.Encode(payload.Payload{Name: "n", Address: "/ip4/127.0.0.1/tcp/5001", Identifier: "bafy"})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "decode_payload", map[string]interface{}{"data": data})
	var got map[string]string
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if got["name"] != "n" || got["cid"] != "bafy" {
		t.Errorf("decoded = %v", got)
	}

	r = callTool(t, srv, "decode_payload", map[string]interface{}{"data": "zz"})
	if !r.IsError {
		t.Error("expected error for invalid hex")
	}
}

func TestOwnershipContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_ownership_contract", nil)
	if resultText(r) != OwnershipFormatContract {
		t.Error("contract text mismatch")
	}

	contents, err := srv.readOwnershipFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
}

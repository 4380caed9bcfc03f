// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the collabeat entry points via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/collabeat/internal/beatservice"
	"github.com/starford/collabeat/internal/models"
	"github.com/starford/collabeat/internal/payload"
)

const ownershipFormatURI = "collabeat://ownership-format"

// Server wraps the MCP server with the collabeat tools.
type Server struct {
	mcp *server.MCPServer
	svc *beatservice.Service
}

// New creates a new MCP server with all collabeat tools registered.
func New(svc *beatservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Collabeat",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("on_execute",
		mcp.WithDescription("Resolve the metadata entries a transaction adds to a beat. "+
			"Fails when the beat already carries more than 13 metadata entries."),
		mcp.WithObject("contract", mcp.Required(), mcp.Description("Meta contract: token_key, meta_contract_id, public_key")),
		mcp.WithArray("metadatas", mcp.Description("Metadata already recorded for the beat")),
		mcp.WithObject("transaction", mcp.Required(), mcp.Description("Triggering transaction; public_key, alias, data and token_id are used")),
	), s.onExecute)

	s.mcp.AddTool(mcp.NewTool("on_mint",
		mcp.WithDescription("Resolve the initial metadata of a new beat. "+
			"Set transaction to echo it, data to pass an ABI-encoded (name, address, cid) payload, "+
			"or cid and ipfs_multiaddr to import ownership records. Read the record format via "+
			"the get_ownership_contract tool or the "+ownershipFormatURI+" resource."),
		mcp.WithObject("contract", mcp.Required(), mcp.Description("Meta contract: token_key, meta_contract_id, public_key")),
		mcp.WithString("token_id", mcp.Description("Token identifier used in the default name")),
		mcp.WithString("ipfs_multiaddr", mcp.Description("IPFS API multiaddress (empty for the configured default)")),
		mcp.WithString("cid", mcp.Description("CID of an ownership record array")),
		mcp.WithString("data", mcp.Description("Hex ABI-encoded (name, address, cid) payload")),
		mcp.WithObject("transaction", mcp.Description("Transaction whose entry is echoed after the base entries")),
	), s.onMint)

	s.mcp.AddTool(mcp.NewTool("on_clone",
		mcp.WithDescription("Acknowledge a contract clone. Always returns true."),
	), s.onClone)

	s.mcp.AddTool(mcp.NewTool("decode_payload",
		mcp.WithDescription("Decode a hex ABI-encoded (name, address, cid) mint payload."),
		mcp.WithString("data", mcp.Required(), mcp.Description("Hex string, with or without 0x prefix")),
	), s.decodePayload)

	s.mcp.AddTool(mcp.NewTool("get_ownership_contract",
		mcp.WithDescription("Returns the ownership record format imported by on_mint."),
	), s.getOwnershipContract)

	s.mcp.AddResource(
		mcp.NewResource(ownershipFormatURI, "Ownership Record Format",
			mcp.WithResourceDescription("JSON shape of the ownership records imported on mint."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readOwnershipFormatResource,
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

// bindArguments re-decodes the tool arguments into a wire call struct.
func bindArguments(req mcp.CallToolRequest, v any) error {
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func resultJSON(res any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) onExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var call models.ExecuteCall
	if err := bindArguments(req, &call); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(s.svc.Execute(ctx, call.Contract, call.Metadatas, call.Transaction)), nil
}

func (s *Server) onMint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var call models.MintCall
	if err := bindArguments(req, &call); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(s.svc.Mint(ctx, call.Contract, beatservice.NewMintRequest(call))), nil
}

func (s *Server) onClone(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return resultJSON(map[string]bool{"result": s.svc.Clone()}), nil
}

func (s *Server) decodePayload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := payload.Decode(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(map[string]string{"name": p.Name, "address": p.Address, "cid": p.Identifier}), nil
}

func (s *Server) getOwnershipContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OwnershipFormatContract), nil
}

func (s *Server) readOwnershipFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ownershipFormatURI,
			MIMEType: "text/markdown",
			Text:     OwnershipFormatContract,
		},
	}, nil
}

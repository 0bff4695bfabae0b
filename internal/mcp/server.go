// Package mcp exposes the WML pipeline as an MCP server: preprocess,
// parse, diff, patch, and binary/text codec operations as tools, so an
// editor-embedded model can drive wmlc without shelling out.
package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
	"github.com/battle-for-wesnoth/wmlc/internal/idcodec"
	"github.com/battle-for-wesnoth/wmlc/internal/types"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/binarycodec"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/parse"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/preprocess"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/textcodec"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/tree"
)

// nodeRegistry implements idcodec.Registry[*tree.Node] over an
// in-memory map of NodeIDs minted within this server's lifetime, so a
// model can ask for a node it was handed by a prior wml_parse/wml_diff
// call without re-reading and re-parsing the file from disk.
type nodeRegistry struct {
	mu     sync.RWMutex
	nodes  map[types.NodeID]*tree.Node
	nextID atomic.Uint64
}

func newNodeRegistry() *nodeRegistry {
	return &nodeRegistry{nodes: make(map[types.NodeID]*tree.Node)}
}

func (r *nodeRegistry) register(node *tree.Node) types.NodeID {
	id := types.NodeID(r.nextID.Add(1))
	r.mu.Lock()
	r.nodes[id] = node
	r.mu.Unlock()
	return id
}

func (r *nodeRegistry) Lookup(id types.NodeID) (*tree.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	node, ok := r.nodes[id]
	return node, ok
}

// Server wraps an *mcp.Server with the handlers that back wmlc's tools.
// CRITICAL: stdio is the transport, so nothing may write to stdout or
// stderr on this path - any diagnostics go through internal/debug's
// MCP-mode-safe logger instead.
type Server struct {
	server *mcp.Server
	nodes  *nodeRegistry
	lookup *idcodec.NodeLookup[*tree.Node]
}

// NewServer builds the MCP server and registers all wmlc tools. It does
// not start serving; call Run to begin the stdio transport loop.
func NewServer() *Server {
	registry := newNodeRegistry()
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "wmlc-mcp-server",
			Version: "0.1.0",
		}, nil),
		nodes:  registry,
		lookup: idcodec.NewNodeLookup[*tree.Node](registry),
	}
	s.registerTools()
	return s
}

// Run blocks serving tool calls over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "wml_preprocess",
		Description: "Run the WML macro preprocessor over a file or directory, expanding #define macros and #ifdef blocks, and return the flattened source text.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "File or directory to preprocess",
				},
				"defines": {
					Type:                 "object",
					Description:          "Predefined zero-argument macros, name to body",
					AdditionalProperties: &jsonschema.Schema{Type: "string"},
				},
				"initial_textdomain": {
					Type:        "string",
					Description: "Textdomain active before any #textdomain directive is seen",
				},
			},
			Required: []string{"path"},
		},
	}, s.handlePreprocess)

	s.server.AddTool(&mcp.Tool{
		Name:        "wml_parse",
		Description: "Preprocess and parse a WML file or directory into a config tree, returned as YAML.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "File or directory to preprocess and parse",
				},
				"initial_textdomain": {
					Type:        "string",
					Description: "Textdomain active before any #textdomain directive is seen",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleParse)

	s.server.AddTool(&mcp.Tool{
		Name:        "wml_diff",
		Description: "Preprocess and parse two WML sources and compute a diff tree between them, returned as YAML.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"base_path": {
					Type:        "string",
					Description: "File or directory holding the base config tree",
				},
				"other_path": {
					Type:        "string",
					Description: "File or directory holding the changed config tree",
				},
				"initial_textdomain": {
					Type:        "string",
					Description: "Textdomain active before any #textdomain directive is seen",
				},
			},
			Required: []string{"base_path", "other_path"},
		},
	}, s.handleDiff)

	s.server.AddTool(&mcp.Tool{
		Name:        "wml_write_text",
		Description: "Serialize a config tree previously returned by wml_parse or wml_diff (by its node_id) back to canonical WML text.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"node_id": {
					Type:        "string",
					Description: "node_id returned by a prior wml_parse or wml_diff call",
				},
				"initial_textdomain": {
					Type:        "string",
					Description: "Textdomain assumed already in effect before the first translatable string",
				},
			},
			Required: []string{"node_id"},
		},
	}, s.handleWriteText)

	s.server.AddTool(&mcp.Tool{
		Name:        "wml_patch",
		Description: "Apply a WML diff tree (as produced by wml_diff and written with wml_write_text) onto a base WML source, returning the patched source as text.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"base_path": {
					Type:        "string",
					Description: "File holding the base WML text",
				},
				"patch_path": {
					Type:        "string",
					Description: "File holding the diff tree as WML text",
				},
			},
			Required: []string{"base_path", "patch_path"},
		},
	}, s.handlePatch)

	s.server.AddTool(&mcp.Tool{
		Name:        "wml_binary_encode",
		Description: "Preprocess, parse, and encode a WML source to the binary wire format. Returns the encoded bytes base64-encoded, plus any non-fatal schema warnings.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "File or directory to preprocess, parse, and encode",
				},
				"schema_path": {
					Type:        "string",
					Description: "TOML schema file to seed the word dictionary from, if one exists",
				},
				"initial_textdomain": {
					Type:        "string",
					Description: "Textdomain active before any #textdomain directive is seen",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleBinaryEncode)

	s.server.AddTool(&mcp.Tool{
		Name:        "wml_get_node",
		Description: "Re-fetch a config tree previously returned by wml_parse or wml_diff by its node_id, without re-reading the source file.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"node_id": {
					Type:        "string",
					Description: "node_id returned by a prior wml_parse or wml_diff call",
				},
			},
			Required: []string{"node_id"},
		},
	}, s.handleGetNode)

	s.server.AddTool(&mcp.Tool{
		Name:        "wml_binary_decode",
		Description: "Decode a base64-encoded binary WML blob back into WML text.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"data": {
					Type:        "string",
					Description: "Base64-encoded binary WML data",
				},
				"schema_path": {
					Type:        "string",
					Description: "TOML schema file the data was encoded against",
				},
			},
			Required: []string{"data", "schema_path"},
		},
	}, s.handleBinaryDecode)
}

type preprocessParams struct {
	Path              string            `json:"path"`
	Defines           map[string]string `json:"defines,omitempty"`
	InitialTextdomain string            `json:"initial_textdomain,omitempty"`
}

func (s *Server) runPreprocess(params preprocessParams) (*preprocess.Result, error) {
	fp := &preprocess.OSFileProvider{Root: params.Path}
	macros := make(preprocess.MacroTable, len(params.Defines))
	for name, body := range params.Defines {
		macros[name] = &preprocess.MacroDefinition{Name: name, Body: body}
	}

	return preprocess.Run(params.Path, fp, macros, types.TextDomain(params.InitialTextdomain), 0)
}

func (s *Server) handlePreprocess(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params preprocessParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("preprocess", fmt.Errorf("invalid parameters: %w", err))
	}

	result, err := s.runPreprocess(params)
	if err != nil {
		return createErrorResponse("preprocess", err)
	}

	return createJSONResponse(map[string]interface{}{
		"success": true,
		"output":  string(result.Output),
	})
}

type parseParams struct {
	Path              string `json:"path"`
	InitialTextdomain string `json:"initial_textdomain,omitempty"`
}

func (s *Server) parseToTree(path, initialTextdomain string) (*tree.Node, error) {
	domain := types.TextDomain(initialTextdomain)
	result, err := s.runPreprocess(preprocessParams{Path: path, InitialTextdomain: initialTextdomain})
	if err != nil {
		return nil, err
	}
	return parse.Parse(result.Output, path, domain, result.Map)
}

func (s *Server) handleParse(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params parseParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("parse", fmt.Errorf("invalid parameters: %w", err))
	}

	node, err := s.parseToTree(params.Path, params.InitialTextdomain)
	if err != nil {
		return createErrorResponse("parse", err)
	}

	var buf bytes.Buffer
	if err := node.DumpYAML(&buf); err != nil {
		return createErrorResponse("parse", err)
	}

	id := s.nodes.register(node)
	return createJSONResponse(map[string]interface{}{
		"success": true,
		"tree":    buf.String(),
		"node_id": idcodec.EncodeNodeID(id),
	})
}

type getNodeParams struct {
	NodeID string `json:"node_id"`
}

func (s *Server) handleGetNode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params getNodeParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("get_node", fmt.Errorf("invalid parameters: %w", err))
	}

	node, err := s.lookup.DecodeAndGet(params.NodeID)
	if err != nil {
		return createErrorResponse("get_node", err)
	}

	var buf bytes.Buffer
	if err := node.DumpYAML(&buf); err != nil {
		return createErrorResponse("get_node", err)
	}

	return createJSONResponse(map[string]interface{}{
		"success": true,
		"tree":    buf.String(),
	})
}

type writeTextParams struct {
	NodeID            string `json:"node_id"`
	InitialTextdomain string `json:"initial_textdomain,omitempty"`
}

func (s *Server) handleWriteText(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params writeTextParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("write_text", fmt.Errorf("invalid parameters: %w", err))
	}

	node, err := s.lookup.DecodeAndGet(params.NodeID)
	if err != nil {
		return createErrorResponse("write_text", err)
	}

	var buf bytes.Buffer
	if err := textcodec.Write(&buf, node, types.TextDomain(params.InitialTextdomain)); err != nil {
		return createErrorResponse("write_text", err)
	}

	return createJSONResponse(map[string]interface{}{
		"success": true,
		"output":  buf.String(),
	})
}

type diffParams struct {
	BasePath          string `json:"base_path"`
	OtherPath         string `json:"other_path"`
	InitialTextdomain string `json:"initial_textdomain,omitempty"`
}

func (s *Server) handleDiff(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params diffParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("diff", fmt.Errorf("invalid parameters: %w", err))
	}

	base, err := s.parseToTree(params.BasePath, params.InitialTextdomain)
	if err != nil {
		return createErrorResponse("diff", fmt.Errorf("parsing base: %w", err))
	}
	other, err := s.parseToTree(params.OtherPath, params.InitialTextdomain)
	if err != nil {
		return createErrorResponse("diff", fmt.Errorf("parsing other: %w", err))
	}

	patch := tree.Diff(base, other)

	var buf bytes.Buffer
	if err := patch.DumpYAML(&buf); err != nil {
		return createErrorResponse("diff", err)
	}

	id := s.nodes.register(patch)
	return createJSONResponse(map[string]interface{}{
		"success": true,
		"diff":    buf.String(),
		"node_id": idcodec.EncodeNodeID(id),
	})
}

type patchParams struct {
	BasePath  string `json:"base_path"`
	PatchPath string `json:"patch_path"`
}

func (s *Server) handlePatch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params patchParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("patch", fmt.Errorf("invalid parameters: %w", err))
	}

	baseSrc, err := readFile(params.BasePath)
	if err != nil {
		return createErrorResponse("patch", err)
	}
	patchSrc, err := readFile(params.PatchPath)
	if err != nil {
		return createErrorResponse("patch", err)
	}

	base, _, err := textcodec.Read(baseSrc, params.BasePath, "")
	if err != nil {
		return createErrorResponse("patch", fmt.Errorf("parsing base: %w", err))
	}
	patch, _, err := textcodec.Read(patchSrc, params.PatchPath, "")
	if err != nil {
		return createErrorResponse("patch", fmt.Errorf("parsing patch: %w", err))
	}

	if err := base.ApplyDiff(patch); err != nil {
		return createErrorResponse("patch", err)
	}

	var buf bytes.Buffer
	if err := textcodec.Write(&buf, base, ""); err != nil {
		return createErrorResponse("patch", err)
	}

	return createJSONResponse(map[string]interface{}{
		"success": true,
		"output":  buf.String(),
	})
}

type binaryEncodeParams struct {
	Path              string `json:"path"`
	SchemaPath        string `json:"schema_path,omitempty"`
	InitialTextdomain string `json:"initial_textdomain,omitempty"`
}

func (s *Server) handleBinaryEncode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params binaryEncodeParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("binary_encode", fmt.Errorf("invalid parameters: %w", err))
	}

	node, err := s.parseToTree(params.Path, params.InitialTextdomain)
	if err != nil {
		return createErrorResponse("binary_encode", err)
	}

	schema, err := loadOrNewSchema(params.SchemaPath)
	if err != nil {
		return createErrorResponse("binary_encode", err)
	}

	data, warnings, err := binarycodec.Encode(node, schema)
	if err != nil {
		return createErrorResponse("binary_encode", err)
	}

	if params.SchemaPath != "" {
		if err := schema.SaveTOML(params.SchemaPath); err != nil {
			return createErrorResponse("binary_encode", fmt.Errorf("saving schema: %w", err))
		}
	}

	return createJSONResponse(map[string]interface{}{
		"success":  true,
		"data":     base64.StdEncoding.EncodeToString(data),
		"warnings": warningMessages(warnings),
	})
}

type binaryDecodeParams struct {
	Data       string `json:"data"`
	SchemaPath string `json:"schema_path"`
}

func (s *Server) handleBinaryDecode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params binaryDecodeParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("binary_decode", fmt.Errorf("invalid parameters: %w", err))
	}

	data, err := base64.StdEncoding.DecodeString(params.Data)
	if err != nil {
		return createErrorResponse("binary_decode", fmt.Errorf("invalid base64 data: %w", err))
	}

	schema, err := binarycodec.LoadSchemaTOML(params.SchemaPath)
	if err != nil {
		return createErrorResponse("binary_decode", fmt.Errorf("loading schema: %w", err))
	}

	node, err := binarycodec.Decode(data, schema)
	if err != nil {
		return createErrorResponse("binary_decode", err)
	}

	var buf bytes.Buffer
	if err := textcodec.Write(&buf, node, ""); err != nil {
		return createErrorResponse("binary_decode", err)
	}

	return createJSONResponse(map[string]interface{}{
		"success": true,
		"output":  buf.String(),
	})
}

func loadOrNewSchema(path string) (*binarycodec.Schema, error) {
	if path == "" {
		return binarycodec.NewSchema(), nil
	}
	schema, err := binarycodec.LoadSchemaTOML(path)
	if err != nil {
		return binarycodec.NewSchema(), nil
	}
	return schema, nil
}

func warningMessages(warnings []*wmlerrors.WMLError) []string {
	msgs := make([]string, len(warnings))
	for i, w := range warnings {
		msgs[i] = w.Error()
	}
	return msgs
}

func readFile(path string) ([]byte, error) {
	fp := &preprocess.OSFileProvider{}
	return fp.ReadFile(path)
}

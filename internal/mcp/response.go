package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createJSONResponse marshals data as the single text block of a tool result.
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result object rather
// than as a protocol-level error, per the MCP spec: only that way can the
// calling model see the error and self-correct.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}

	if help := operationHelp[operation]; help != "" {
		errorData["help"] = help
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}

	response.IsError = true
	return response, nil
}

// operationHelp gives each tool a one-line hint surfaced alongside its errors.
var operationHelp = map[string]string{
	"preprocess":    "Preprocesses a WML source file or directory, expanding #define macros and #ifdef blocks.",
	"parse":         "Preprocesses and parses a WML file or directory into a config tree and reports it as YAML.",
	"diff":          "Diffs two WML config trees and reports the patch as a WML diff tree.",
	"patch":         "Applies a WML diff tree (from 'diff') to a base config tree.",
	"write_text":    "Serializes a config tree (by node_id, from 'parse' or 'diff') to canonical WML text.",
	"binary_encode": "Serializes a config tree to the binary WML wire format.",
	"binary_decode": "Decodes a binary WML blob back into a config tree.",
	"get_node":      "Resolves a node_id from a prior wml_parse or wml_diff call back to its config tree.",
}

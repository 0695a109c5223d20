package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(val)
}

// requireID extracts a positive integer ID argument.
func requireID(req mcp.CallToolRequest, key string) (int64, *mcp.CallToolResult) {
	args, _ := req.Params.Arguments.(map[string]any)
	val, ok := args[key].(float64)
	if !ok {
		return 0, NewErrorResult("invalid_parameters", fmt.Sprintf("parameter %q is required and must be a number", key))
	}
	if val <= 0 || val != float64(int64(val)) {
		return 0, NewErrorResult("invalid_parameters", fmt.Sprintf("parameter %q must be a positive integer", key))
	}
	return int64(val), nil
}

// requireDate extracts a required YYYY-MM-DD argument.
func requireDate(req mcp.CallToolRequest, key string) (models.Date, *mcp.CallToolResult) {
	raw, err := req.RequireString(key)
	if err != nil {
		return models.Date{}, NewErrorResult("invalid_parameters", err.Error())
	}
	d, err := models.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return models.Date{}, NewErrorResult("invalid_parameters", err.Error())
	}
	return d, nil
}

// jsonResult marshals v as the text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

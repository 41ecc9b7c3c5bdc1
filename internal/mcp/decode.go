package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode maps a tool call's argument map onto a typed request struct
// by round-tripping it through JSON, so every handler gets the same
// field validation the wire format defines.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var parsed T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return parsed, fmt.Errorf("encode tool arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return parsed, fmt.Errorf("decode tool arguments: %w", err)
	}
	return parsed, nil
}

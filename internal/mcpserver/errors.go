// SPDX-License-Identifier: Apache-2.0

// Package mcpserver implements the MCP transport of §6: newline-delimited
// JSON-RPC 2.0 over stdio, built on top of the go-sdk's jsonrpc/session
// types (the same dependency the sibling pack's internal/mcp wires)
// rather than hand-rolled framing. internal/mcptools supplies the actual
// tool logic; this package only adapts it to the wire protocol.
package mcpserver

import (
	"errors"
	"fmt"

	"github.com/kraklabs/cie-core/internal/cieerrors"
)

// Standard JSON-RPC error codes, per §6.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// MCPError is a JSON-RPC-shaped error returned from a tool call.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError builds a CodeInvalidParams error with msg.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: CodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError builds a CodeMethodNotFound error for an unknown
// tool name.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: CodeMethodNotFound, Message: fmt.Sprintf("tool %q not found", name)}
}

// MapError converts a core error (usually a *cieerrors.Error) into the
// JSON-RPC error code the MCP transport surfaces, per §7's error taxonomy.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}
	var ce *cieerrors.Error
	if errors.As(err, &ce) {
		return &MCPError{Code: codeForKind(ce.Kind), Message: ce.Error()}
	}
	return &MCPError{Code: CodeInternalError, Message: err.Error()}
}

func codeForKind(kind cieerrors.Kind) int {
	switch kind {
	case cieerrors.InvalidArgument:
		return CodeInvalidParams
	case cieerrors.NotFound, cieerrors.MissingEndpoint:
		return CodeMethodNotFound
	default:
		return CodeInternalError
	}
}

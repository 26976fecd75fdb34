package tools

import "errors"

var (
	// ErrUnknownTool is returned for tool ids with no registered adapter.
	ErrUnknownTool = errors.New("tools: unknown tool")

	ErrNilCatalog = errors.New("tools: catalog is nil")
	ErrNilManager = errors.New("tools: manager is nil")
)

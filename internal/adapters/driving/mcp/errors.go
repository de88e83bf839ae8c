// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// factsheet knowledge base. It lets AI assistants look up substances, list
// categories and read combination warnings.
package mcp

import "errors"

// ErrMissingFactsheetService is returned when the factsheet service is not provided.
var ErrMissingFactsheetService = errors.New("mcp: factsheet service is required")

// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the clinical pipeline as MCP tools.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register adds every clinical tool to srv.
func Register(srv *mcp.Server) {
	mcp.AddTool(srv, MetadataClassifyClinicalDocument, ClassifyClinicalDocument)
	mcp.AddTool(srv, MetadataProcessClinicalDocument, ProcessClinicalDocument)
	mcp.AddTool(srv, MetadataChunkClinicalText, ChunkClinicalText)
}

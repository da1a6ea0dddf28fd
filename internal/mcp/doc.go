// Package mcp implements the Model Context Protocol (MCP) server for Memoria.
//
// The MCP server exposes four tools to AI coding assistants (Claude Code, Codex CLI):
//   - memoria_recall: Surface archived items relevant to the current context
//   - memoria_capture: Archive a URL or raw text with LLM summary and tags
//   - memoria_patterns: Analyze the archive for themes, gaps, and recommendations
//   - get_status: Check archive statistics and storage health
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output.
// All application logging goes to stderr so stdout stays clean for the
// protocol stream.
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	memoria serve
//
// It then listens on stdin for MCP protocol messages and writes responses to stdout.
//
// # Tool: memoria_recall
//
// Surface archived research relevant to the current working context:
//
//	Request:
//	{
//	  "name": "memoria_recall",
//	  "arguments": {
//	    "tags": ["go", "sqlite"],
//	    "description": "embedding a database in a CLI tool",
//	    "query": "migrations"
//	  }
//	}
//
//	Response:
//	{
//	  "matches": [
//	    {
//	      "archiveItemId": "…",
//	      "title": "SQLite WAL mode explained",
//	      "matchReason": "Matches 2 tags: GO, SQLITE",
//	      "relevanceScore": 0.72
//	    }
//	  ],
//	  "explanation": "Found 1 relevant items based on go, sqlite and query \"migrations\".",
//	  "timestamp": 1735689600000
//	}
//
// # Tool: memoria_capture
//
// Archive a URL (fetched and summarized) or raw text:
//
//	Request:
//	{
//	  "name": "memoria_capture",
//	  "arguments": {"content": "https://example.com/article"}
//	}
//
// # Error Handling
//
// Tool failures return JSON-RPC errors with the standard codes
// (-32602 invalid params, -32603 internal) plus server-specific codes
// for rate limiting (-32001) and empty capture content (-32002).
package mcp

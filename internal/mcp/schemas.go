package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// recallTool returns the tool definition for memoria_recall
func recallTool() mcp.Tool {
	return mcp.Tool{
		Name:        "memoria_recall",
		Description: "Surface archived research items relevant to the current working context",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Tags describing the current context (e.g. languages, frameworks, topics)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Free-text description of what is being worked on",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Explicit search query matched against item titles and summaries",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Archive owner; defaults to the shared MCP user",
				},
			},
			Required: []string{"tags"},
		},
	}
}

// captureTool returns the tool definition for memoria_capture
func captureTool() mcp.Tool {
	return mcp.Tool{
		Name:        "memoria_capture",
		Description: "Capture a URL or raw text into the research archive with an LLM-generated summary and tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "A URL to fetch and summarize, or raw text to archive directly",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Archive owner; defaults to the shared MCP user",
				},
			},
			Required: []string{"content"},
		},
	}
}

// patternsTool returns the tool definition for memoria_patterns
func patternsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "memoria_patterns",
		Description: "Analyze the research archive for recurring themes, gaps, and recommendations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Archive owner; defaults to the shared MCP user",
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query archive statistics and storage health",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Archive owner; defaults to the shared MCP user",
				},
			},
		},
	}
}

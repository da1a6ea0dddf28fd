package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/clewlabs/memoria/internal/ratelimit"
	"github.com/clewlabs/memoria/internal/recall"
	"github.com/clewlabs/memoria/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeRateLimited   = -32001 // Caller exhausted its tool-call budget
	ErrorCodeEmptyContent  = -32002 // Capture content is empty
)

// handleRecall handles the memoria_recall tool invocation
func (s *Server) handleRecall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	userID := getStringDefault(args, "user_id", DefaultUserID)
	if err := s.checkLimit(userID); err != nil {
		return nil, err
	}

	tags, err := getStringSlice(args, "tags")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "tags must be an array of strings", map[string]interface{}{
			"param":  "tags",
			"reason": err.Error(),
		})
	}

	result, err := s.engine.Recall(ctx, recall.Request{
		UserID: userID,
		ContextQuery: types.ContextQuery{
			ContextTags: tags,
			Description: getStringDefault(args, "description", ""),
			Query:       getStringDefault(args, "query", ""),
		},
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "recall failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Info("recall tool served", "userId", userID, "matchCount", len(result.Matches))

	response := map[string]interface{}{
		"matches":     result.Matches,
		"explanation": result.Explanation,
		"timestamp":   result.Timestamp,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCapture handles the memoria_capture tool invocation
func (s *Server) handleCapture(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, newMCPError(ErrorCodeEmptyContent, "content parameter is required and cannot be empty", map[string]interface{}{
			"param":  "content",
			"reason": "missing or empty",
		})
	}

	userID := getStringDefault(args, "user_id", DefaultUserID)
	if err := s.checkLimit(userID); err != nil {
		return nil, err
	}

	item, err := s.capture.Capture(ctx, userID, content)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "capture failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Info("capture tool served", "userId", userID, "itemId", item.ID)

	response := map[string]interface{}{
		"captured": true,
		"item":     item,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handlePatterns handles the memoria_patterns tool invocation
func (s *Server) handlePatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	userID := getStringDefault(args, "user_id", DefaultUserID)
	if err := s.checkLimit(userID); err != nil {
		return nil, err
	}

	analysis, err := s.pattern.Analyze(ctx, userID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "pattern analysis failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"themes":          analysis.Themes,
		"gaps":            analysis.Gaps,
		"recommendations": analysis.Recommendations,
		"summary":         analysis.Summary,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.store.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"item_count":      status.ItemCount,
			"log_count":       status.LogCount,
			"last_capture_at": status.LastCaptureAt,
		},
		"health": map[string]interface{}{
			"database_accessible": true,
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// checkLimit consumes one MCP tool-call token for the caller.
func (s *Server) checkLimit(userID string) error {
	rl := s.limiter.Check(ratelimit.ActionMCP, userID)
	if rl.Allowed {
		return nil
	}
	return newMCPError(ErrorCodeRateLimited, "rate limit exceeded", map[string]interface{}{
		"resetSeconds": rl.ResetSeconds,
	})
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string-array parameter. A missing key
// yields an empty slice; a present key with the wrong shape errors.
func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", raw)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("expected string element, got %T", it)
		}
		out = append(out, s)
	}
	return out, nil
}

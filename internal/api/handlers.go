package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clewlabs/memoria/internal/ratelimit"
	"github.com/clewlabs/memoria/internal/recall"
	"github.com/clewlabs/memoria/internal/storage"
)

const archiveListLimit = 50

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCapture(c *gin.Context) {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.BindJSON(&body); err != nil || body.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content required"})
		return
	}

	userID := clientID(c)
	if rl := s.limiter.Check(ratelimit.ActionCapture, userID); !rl.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        "Rate limit exceeded",
			"resetSeconds": rl.ResetSeconds,
		})
		return
	}

	item, err := s.capture.Capture(c.Request.Context(), userID, body.URL)
	if err != nil {
		s.logger.Error("capture failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Capture failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
		"message": "Content captured and archived",
	})
}

func (s *Server) handleArchive(c *gin.Context) {
	userID := clientID(c)
	items, err := s.store.ListRecentItems(c.Request.Context(), userID, archiveListLimit)
	if err != nil {
		s.logger.Error("archive fetch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch archive",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

func (s *Server) handleRecall(c *gin.Context) {
	clientIP := clientID(c)
	// Loopback skips the limiter so local dev refreshes stay snappy.
	if clientIP != "::1" && clientIP != "127.0.0.1" {
		if rl := s.limiter.Check(ratelimit.ActionRecall, clientIP); !rl.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":        "Rate limit exceeded",
				"resetSeconds": rl.ResetSeconds,
			})
			return
		}
	}

	req, errMsg := parseRecallBody(c.Request.Body, clientIP)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	result, err := s.engine.Recall(c.Request.Context(), *req)
	if err != nil {
		s.logger.Error("recall failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Recall failed",
			"details": err.Error(),
		})
		return
	}

	s.logger.Info("recall request processed",
		"matchCount", len(result.Matches),
		"userId", req.UserID,
		"tags", req.ContextTags,
		"hasMatches", len(result.Matches) > 0,
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"matches":     result.Matches,
			"explanation": result.Explanation,
			"timestamp":   result.Timestamp,
		},
		"message": foundMessage(len(result.Matches)),
	})
}

// parseRecallBody decodes the recall request loosely so each field can
// be shape-checked with a precise error message. An empty or absent
// body is valid: every field has a default.
func parseRecallBody(r io.Reader, defaultUserID string) (*recall.Request, string) {
	raw := map[string]json.RawMessage{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, "invalid JSON body"
	}

	req := &recall.Request{UserID: defaultUserID}

	if v, ok := raw["userId"]; ok {
		if err := json.Unmarshal(v, &req.UserID); err != nil {
			return nil, "userId must be a string"
		}
	}
	if v, ok := raw["tags"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &req.ContextTags); err != nil {
			return nil, "tags must be an array"
		}
	}
	if v, ok := raw["description"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &req.Description); err != nil {
			return nil, "description must be a string"
		}
	}
	if v, ok := raw["query"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &req.Query); err != nil {
			return nil, "query must be a string"
		}
	}
	return req, ""
}

func isNull(v json.RawMessage) bool {
	return string(v) == "null"
}

func foundMessage(n int) string {
	return fmt.Sprintf("Found %d relevant items", n)
}

func (s *Server) handlePatterns(c *gin.Context) {
	userID := c.GetHeader("x-user-id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x-user-id header required"})
		return
	}

	analysis, err := s.pattern.Analyze(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("pattern analysis endpoint failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Pattern analysis failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    analysis,
	})
}

func (s *Server) handleContextSync(c *gin.Context) {
	if rl := s.limiter.Check(ratelimit.ActionGitHub, s.cfg.GitHubUsername); !rl.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        "Rate limit exceeded",
			"resetSeconds": rl.ResetSeconds,
		})
		return
	}

	result, err := s.github.Seed(c.Request.Context(), s.cfg.GitHubToken, s.cfg.GitHubUsername)
	if err != nil {
		s.logger.Error("context sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to sync GitHub context",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
		"message": "GitHub context seeded successfully",
	})
}

func (s *Server) handleContext(c *gin.Context) {
	ctx, err := s.github.Get(c.Request.Context(), s.cfg.GitHubUsername)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "No cached context found",
				"message": "Run /api/context/sync first",
			})
			return
		}
		s.logger.Error("get context failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve context",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ctx,
	})
}

// clientID keys rate limits and per-user data by caller IP, matching
// the MVP auth model. An explicit x-user-id header wins when present.
func clientID(c *gin.Context) string {
	if id := c.GetHeader("x-user-id"); id != "" {
		return id
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "anonymous"
}

package storage

import (
	"context"

	"github.com/clewlabs/memoria/pkg/types"
)

// Store defines the interface for persisting and querying archive data.
// The recall engine consumes only ListRecentItems; the rest serves the
// capture pipeline, context seeder, and operational surfaces.
type Store interface {
	// Item operations
	InsertItem(ctx context.Context, userID string, item *types.ArchiveItem) error
	GetItem(ctx context.Context, itemID string) (*types.ArchiveItem, error)
	ListRecentItems(ctx context.Context, userID string, limit int) ([]*types.ArchiveItem, error)

	// System log operations
	AppendLog(ctx context.Context, entry *LogEntry) error
	ListRecentLogs(ctx context.Context, userID string, limit int) ([]*LogEntry, error)

	// Context document operations
	PutContextDoc(ctx context.Context, doc *ContextDoc) error
	GetContextDoc(ctx context.Context, key string) (*ContextDoc, error)

	// Status operations
	GetStatus(ctx context.Context) (*ArchiveStatus, error)

	// Database operations
	Close() error
}

// LogAction enumerates auditable system events.
type LogAction string

const (
	LogActionCapture LogAction = "capture"
	LogActionRecall  LogAction = "recall"
	LogActionSync    LogAction = "sync"
	LogActionScan    LogAction = "scan"
	LogActionError   LogAction = "error"
)

// LogStatus is the outcome of a logged event.
type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusFailure LogStatus = "failure"
)

// LogEntry is one system log record.
type LogEntry struct {
	ID        int64
	UserID    string
	Action    LogAction
	Status    LogStatus
	Details   string
	Timestamp int64 // epoch ms
}

// ContextDoc is an opaque cached context blob keyed by caller-chosen key,
// e.g. "github-context-<username>".
type ContextDoc struct {
	Key       string
	Data      []byte // JSON payload owned by the producer
	Timestamp int64  // epoch ms at write time
}

// ArchiveStatus contains statistics about the stored archive.
type ArchiveStatus struct {
	ItemCount     int
	LogCount      int
	LastCaptureAt int64 // epoch ms; 0 when the archive is empty
}

// Package storage provides SQLite-based persistence for the Memoria archive.
//
// The storage layer manages:
//   - Archive items (captured knowledge units, per user)
//   - System event logs (capture/recall/sync audit trail)
//   - Context documents (cached derived-context blobs, e.g. the GitHub
//     technology fingerprint)
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStore("~/.memoria/memoria.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	items, err := db.ListRecentItems(ctx, userID, 100)
//
// Two SQLite drivers are supported via build tags: mattn/go-sqlite3 under
// CGO builds and modernc.org/sqlite for pure-Go builds. See build_cgo.go
// and build_purego.go.
package storage

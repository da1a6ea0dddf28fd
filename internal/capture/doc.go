// Package capture implements the ingestion pipeline: it takes a URL or a
// raw text snippet, optionally fetches and reduces the page to text,
// summarizes it into structured metadata, and stores the resulting archive
// item. Capture is a decorator on archive storage; the recall engine never
// writes, so capture is also the point where the per-user recall snapshot
// is invalidated.
package capture

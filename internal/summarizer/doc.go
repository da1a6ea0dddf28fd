// Package summarizer turns captured raw content into structured archive
// metadata (summary, topic tags, detected tools) using an LLM provider.
//
// Providers are selected from the environment (Gemini or OpenAI) and all
// transport calls go through a shared exponential-backoff retry helper.
// Callers are expected to degrade gracefully when no provider is
// configured; summarization failure never fails a capture.
package summarizer

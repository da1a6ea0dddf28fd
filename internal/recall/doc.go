// Package recall implements the recall matching engine: given the user's
// current context (tags, an optional free-text query, an optional project
// description) and the archived corpus, it computes a relevance-ranked set
// of matches with human-readable justifications.
//
// The engine is composed of four pieces:
//   - a relevance scorer combining tag overlap, query/description keyword
//     hits, detected-tool matches, and a recency boost into a score in [0,1]
//   - a reason generator producing the per-match justification string
//   - a ranker that sorts, truncates, and backfills thin result sets with
//     low-confidence recency-ordered items
//   - a per-user snapshot cache in front of the archive store, trading a
//     bounded staleness window (5 minutes) for read throughput
//
// # Basic Usage
//
//	cache := recall.NewSnapshotCache(store.ListRecentItems, recall.CacheConfig{}, logger)
//	engine := recall.NewEngine(cache, nil, logger)
//
//	result, err := engine.Recall(ctx, recall.Request{
//	    UserID: "u1",
//	    ContextQuery: types.ContextQuery{
//	        ContextTags: []string{"react", "typescript"},
//	        Query:       "hooks",
//	    },
//	})
//
// Given a fixed snapshot, clock, and inputs the engine is deterministic;
// the only shared state is the cache, whose entries are replaced as whole
// values so races cost at most a redundant fetch.
package recall

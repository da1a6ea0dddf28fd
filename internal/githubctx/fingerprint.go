package githubctx

import "strings"

// techKeywords is the fixed vocabulary the fingerprint recognizes. Entries
// must be single lowercase tokens.
var techKeywords = []string{
	"typescript", "javascript", "python", "java", "go", "rust",
	"react", "vue", "angular", "svelte", "nextjs",
	"nodejs", "express", "fastapi", "django",
	"postgres", "mysql", "mongodb", "redis", "firestore",
	"docker", "kubernetes", "terraform", "aws", "gcp", "azure",
	"graphql", "rest", "grpc",
	"ai", "ml", "gemini", "claude", "llm",
}

// deriveTechFingerprint extracts known technology keywords from free text.
// Matching is whole-word: the content is tokenized on non-alphanumeric
// boundaries so "ai" never matches inside "maintain".
func deriveTechFingerprint(content string) []string {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		tokens[tok] = struct{}{}
	}

	var found []string
	for _, kw := range techKeywords {
		if _, ok := tokens[kw]; ok {
			found = append(found, kw)
		}
	}
	return found
}

package githubctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clewlabs/memoria/internal/storage"
)

const (
	defaultAPIBase = "https://api.github.com"
	readmeMaxChars = 5000
	repoLimit      = 10

	// CacheTTL is how long a seeded context stays fresh.
	CacheTTL = 24 * time.Hour
)

// RepoContext is the derived context for one repository.
type RepoContext struct {
	ID          int64    `json:"id"`
	RepoName    string   `json:"repoName"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	Timestamp   int64    `json:"timestamp"`
}

// Context is the full derived context for a user.
type Context struct {
	Username  string        `json:"username"`
	Repos     []RepoContext `json:"repos"`
	AllTags   []string      `json:"allTags"`
	Timestamp int64         `json:"timestamp"`
}

// SeedResult summarizes one seeding run.
type SeedResult struct {
	Repos  int      `json:"repos"`
	Tags   []string `json:"tags"`
	Reason string   `json:"reason"`
}

// Service fetches and caches GitHub-derived context.
type Service struct {
	store   storage.Store
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
	apiBase string
}

// NewService creates a GitHub context service. A nil clock selects
// wall-clock time.
func NewService(store storage.Store, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
		now:     clock,
		apiBase: defaultAPIBase,
	}
}

func cacheKey(username string) string {
	return "github-context-" + username
}

// Seed fetches the user's recent repositories, derives the technology
// fingerprint, and caches the result. A fresh cached context short-circuits
// the GitHub calls.
func (s *Service) Seed(ctx context.Context, token, username string) (*SeedResult, error) {
	s.logger.Info("starting GitHub context seed", "username", username)

	if cached, err := s.Get(ctx, username); err == nil &&
		s.now().UnixMilli()-cached.Timestamp < CacheTTL.Milliseconds() {
		s.logger.Info("using cached GitHub context", "username", username)
		return &SeedResult{
			Repos:  len(cached.Repos),
			Tags:   cached.AllTags,
			Reason: "Served from 24h cache",
		}, nil
	}

	repos, err := s.fetchUserRepos(ctx, token, username)
	if err != nil {
		return nil, err
	}

	// READMEs are independent fetches; grab them concurrently.
	readmes := make([]string, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, repo := range repos {
		g.Go(func() error {
			readmes[i] = s.fetchReadme(gctx, token, repo.Owner.Login, repo.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	derived := Context{Username: username, Timestamp: s.now().UnixMilli()}
	allTags := make(map[string]struct{})
	for i, repo := range repos {
		tags := deriveTechFingerprint(repo.Description + " " + readmes[i])
		for _, t := range tags {
			allTags[t] = struct{}{}
		}
		derived.Repos = append(derived.Repos, RepoContext{
			ID:          repo.ID,
			RepoName:    repo.Name,
			Description: repo.Description,
			URL:         repo.HTMLURL,
			Tags:        tags,
			Timestamp:   s.now().UnixMilli(),
		})
		s.logger.Info("processed repository", "repo", repo.Name, "tags", len(tags))
	}
	for t := range allTags {
		derived.AllTags = append(derived.AllTags, t)
	}
	sort.Strings(derived.AllTags)

	data, err := json.Marshal(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to encode context: %w", err)
	}
	if err := s.store.PutContextDoc(ctx, &storage.ContextDoc{
		Key:       cacheKey(username),
		Data:      data,
		Timestamp: derived.Timestamp,
	}); err != nil {
		return nil, fmt.Errorf("failed to cache context: %w", err)
	}

	s.logger.Info("GitHub context seeded",
		"username", username, "repoCount", len(repos), "tagCount", len(derived.AllTags))

	return &SeedResult{
		Repos:  len(repos),
		Tags:   derived.AllTags,
		Reason: "Freshly seeded from GitHub API",
	}, nil
}

// Get returns the cached context, or storage.ErrNotFound when the user has
// never been seeded.
func (s *Service) Get(ctx context.Context, username string) (*Context, error) {
	doc, err := s.store.GetContextDoc(ctx, cacheKey(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("no cached GitHub context found", "username", username)
		}
		return nil, err
	}

	var derived Context
	if err := json.Unmarshal(doc.Data, &derived); err != nil {
		return nil, fmt.Errorf("failed to decode cached context: %w", err)
	}
	return &derived, nil
}

type repo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (s *Service) fetchUserRepos(ctx context.Context, token, username string) ([]repo, error) {
	url := fmt.Sprintf("%s/users/%s/repos?sort=updated&per_page=%d", s.apiBase, username, repoLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GitHub API error: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API error: status %d", resp.StatusCode)
	}

	var repos []repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("failed to decode repo list: %w", err)
	}

	s.logger.Info("fetched GitHub repos", "count", len(repos))
	return repos, nil
}

// fetchReadme returns "" when the repo has no README or the fetch fails;
// a missing README is not an error for fingerprinting.
func (s *Service) fetchReadme(ctx context.Context, token, owner, name string) string {
	url := fmt.Sprintf("%s/repos/%s/%s/readme", s.apiBase, owner, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3.raw")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("failed to fetch README", "repo", name, "error", err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		s.logger.Debug("no README found", "repo", name)
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("failed to fetch README", "repo", name, "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, readmeMaxChars))
	if err != nil {
		return ""
	}
	s.logger.Info("fetched README", "repo", name, "length", len(body))
	return string(body)
}

package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

const (
	minStoryWords = 100
	maxStoryWords = 2000
	postsPerSub   = 10
)

// PostSource fetches hot posts from one subreddit. Satisfied by redditSource
// in production and by fakes in tests.
type PostSource interface {
	HotPosts(ctx context.Context, subreddit string, limit int) ([]*reddit.Post, error)
}

// redditSource wraps the go-reddit client behind PostSource.
type redditSource struct {
	client *reddit.Client
}

// NewRedditSource builds a PostSource from Reddit API credentials. Empty
// username/password falls back to a read-only client, which is all discovery
// needs.
func NewRedditSource(clientID, clientSecret, username, password string) (PostSource, error) {
	var client *reddit.Client
	var err error
	if username != "" && password != "" {
		client, err = reddit.NewClient(reddit.Credentials{
			ID: clientID, Secret: clientSecret,
			Username: username, Password: password,
		})
	} else {
		client, err = reddit.NewReadonlyClient()
	}
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &redditSource{client: client}, nil
}

func (r *redditSource) HotPosts(ctx context.Context, subreddit string, limit int) ([]*reddit.Post, error) {
	posts, _, err := r.client.Subreddit.HotPosts(ctx, subreddit, &reddit.ListOptions{Limit: limit})
	return posts, err
}

// TrendAgent discovers a candidate topic from the content type's subreddits.
// A retry picks the next-best unused candidate, so feedback drives the run to
// a different topic rather than the same rejected one.
type TrendAgent struct {
	source      PostSource
	subreddits  []string
	contentType pipeline.ContentType
	logf        func(format string, args ...any)

	used    map[string]bool
	counter attemptCounter
}

// TrendOption customizes a TrendAgent.
type TrendOption func(*TrendAgent)

// WithTrendLogger sets a progress logger.
func WithTrendLogger(logf func(format string, args ...any)) TrendOption {
	return func(t *TrendAgent) { t.logf = logf }
}

// NewTrendAgent creates the discovery executor for one run.
func NewTrendAgent(source PostSource, contentType pipeline.ContentType, subreddits []string, opts ...TrendOption) (*TrendAgent, error) {
	if source == nil {
		return nil, fmt.Errorf("post source is required")
	}
	if len(subreddits) == 0 {
		return nil, fmt.Errorf("at least one subreddit is required")
	}
	t := &TrendAgent{
		source:      source,
		subreddits:  subreddits,
		contentType: contentType,
		logf:        noplog,
		used:        make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Produce fetches hot posts, filters them and returns the best unused
// candidate as a topic artifact.
func (t *TrendAgent) Produce(ctx context.Context, kind pipeline.StageKind, upstream map[pipeline.StageKind]*artifact.Artifact, feedback string) (*artifact.Artifact, error) {
	attempt := t.counter.next()

	var candidates []*reddit.Post
	for _, sub := range t.subreddits {
		posts, err := t.source.HotPosts(ctx, sub, postsPerSub)
		if err != nil {
			t.logf("[discovery] r/%s fetch failed: %v", sub, err)
			continue
		}
		for _, post := range posts {
			if t.valid(post) {
				candidates = append(candidates, post)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, pipeline.NewExecutionError(pipeline.ProviderUnavailable,
			fmt.Errorf("no usable posts found in %s", strings.Join(t.subreddits, ", ")))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	for _, post := range candidates {
		if t.used[post.ID] {
			continue
		}
		t.used[post.ID] = true
		t.logf("[discovery] selected %q from r/%s (score %d)", truncate(post.Title, 60), post.SubredditName, post.Score)
		return artifact.New(kind.String(), attempt, "trend-agent", artifact.TopicPayload(t.toTopic(post))), nil
	}
	return nil, pipeline.NewExecutionError(pipeline.ProviderUnavailable,
		fmt.Errorf("all %d candidate posts already used this run", len(candidates)))
}

// valid filters posts the way the content type demands. Story types need a
// self-text body of readable length; fact and motivational posts carry their
// content in the title.
func (t *TrendAgent) valid(post *reddit.Post) bool {
	if post.NSFW {
		return false
	}
	switch t.contentType {
	case pipeline.ContentFacts, pipeline.ContentMotivation:
		return strings.TrimSpace(post.Title) != ""
	default:
		words := len(strings.Fields(post.Body))
		return words >= minStoryWords && words <= maxStoryWords
	}
}

func (t *TrendAgent) toTopic(post *reddit.Post) *artifact.Topic {
	body := post.Body
	if strings.TrimSpace(body) == "" {
		body = post.Title
	}
	return &artifact.Topic{
		Title:     post.Title,
		Source:    fmt.Sprintf("r/%s", post.SubredditName),
		URL:       fmt.Sprintf("https://reddit.com%s", post.Permalink),
		Score:     post.Score,
		Body:      body,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

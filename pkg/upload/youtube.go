// Package upload publishes assembled videos to YouTube via the Data API v3.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/hyungsein/shorts-automation/pkg/artifact"
)

const (
	// YouTube API limits
	maxTitleLen       = 100
	maxDescriptionLen = 5000

	categoryPeopleAndBlogs = "22"
)

// Result identifies an uploaded video.
type Result struct {
	VideoID string
	URL     string
}

// Uploader pushes final video artifacts to a YouTube channel.
type Uploader struct {
	service *youtube.Service
	privacy string
	logf    func(format string, args ...any)
}

// Option customizes an Uploader.
type Option func(*Uploader)

// WithLogger sets a progress logger.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(u *Uploader) { u.logf = logf }
}

// WithPrivacy overrides the default "private" privacy status.
func WithPrivacy(privacy string) Option {
	return func(u *Uploader) { u.privacy = privacy }
}

// New builds an Uploader from OAuth client-secret and token files, the
// standard installed-app credential layout for the Data API.
func New(ctx context.Context, credentialsPath, tokenPath string, opts ...Option) (*Uploader, error) {
	secrets, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read youtube credentials: %w", err)
	}
	conf, err := google.ConfigFromJSON(secrets, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse youtube credentials: %w", err)
	}

	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("load youtube token: %w (run the OAuth flow first)", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}

	u := &Uploader{
		service: service,
		privacy: "private",
		logf:    func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Upload publishes the final video artifact and returns its YouTube identity.
func (u *Uploader) Upload(ctx context.Context, video *artifact.VideoRef) (*Result, error) {
	if video == nil || video.Path == "" {
		return nil, fmt.Errorf("no video to upload")
	}

	f, err := os.Open(video.Path)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		u.logf("[upload] uploading %q (%.1f MB)", video.Title, float64(fi.Size())/1024/1024)
	}

	yt := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       clamp(video.Title, maxTitleLen),
			Description: clamp(video.Description, maxDescriptionLen),
			Tags:        video.Tags,
			CategoryId:  categoryPeopleAndBlogs,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, yt)
	call.Media(f)

	uploaded, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube upload: %w", err)
	}

	result := &Result{
		VideoID: uploaded.Id,
		URL:     fmt.Sprintf("https://youtube.com/shorts/%s", uploaded.Id),
	}
	u.logf("[upload] done: %s", result.URL)
	return result, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, err
	}
	if token.RefreshToken == "" && token.AccessToken == "" {
		return nil, fmt.Errorf("token file %s holds no usable token", path)
	}
	return token, nil
}

func clamp(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

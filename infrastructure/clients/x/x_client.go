package x

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"auto-post/infrastructure/configuration"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	defaultAPIBaseURL    = "https://api.twitter.com"
	defaultUploadBaseURL = "https://upload.twitter.com"
)

// Client talks to the X API v2 for tweet creation and the v1.1 media
// upload endpoint. Requests are authorized through an oauth2 client that
// refreshes the access token transparently.
type Client struct {
	apiBaseURL    string
	uploadBaseURL string
	httpClient    *http.Client
	log           *log.Logger
}

func NewClient(ctx context.Context, cfg configuration.X, logger *log.Logger) *Client {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://twitter.com/i/oauth2/authorize",
			TokenURL: "https://api.twitter.com/2/oauth2/token",
		},
	}

	token := &oauth2.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
	}

	return &Client{
		apiBaseURL:    defaultAPIBaseURL,
		uploadBaseURL: defaultUploadBaseURL,
		httpClient:    oauth2Config.Client(ctx, token),
		log:           logger,
	}
}

// WithBaseURLs points the client at different endpoints, for tests. The
// oauth2 transport is dropped so test servers see plain requests.
func (c *Client) WithBaseURLs(apiBase, uploadBase string, httpClient *http.Client) *Client {
	c.apiBaseURL = strings.TrimRight(apiBase, "/")
	c.uploadBaseURL = strings.TrimRight(uploadBase, "/")
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

type mediaUploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}

// UploadMedia pushes one image through the v1.1 media upload endpoint and
// returns the media id to attach to a tweet.
func (c *Client) UploadMedia(ctx context.Context, content []byte, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	endpoint := c.uploadBaseURL + "/1.1/media/upload.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var res mediaUploadResponse
	if err := c.do(req, &res); err != nil {
		return "", fmt.Errorf("media upload: %w", err)
	}
	if res.MediaIDString == "" {
		return "", fmt.Errorf("media upload returned no media id")
	}
	c.log.WithFields(log.Fields{"media_id": res.MediaIDString, "file": filename}).Debug("Uploaded media")
	return res.MediaIDString, nil
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// CreateTweet posts a tweet with the given text and attached media ids and
// returns the tweet id.
func (c *Client) CreateTweet(ctx context.Context, text string, mediaIDs []string) (string, error) {
	payload := tweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		payload.Media = &tweetMedia{MediaIDs: mediaIDs}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := c.apiBaseURL + "/2/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var res tweetResponse
	if err := c.do(req, &res); err != nil {
		return "", fmt.Errorf("create tweet: %w", err)
	}
	if res.Data.ID == "" {
		return "", fmt.Errorf("create tweet returned no id")
	}
	c.log.WithField("tweet_id", res.Data.ID).Debug("Tweet created")
	return res.Data.ID, nil
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var envelope apiError
		if err := json.Unmarshal(body, &envelope); err == nil {
			if envelope.Detail != "" {
				return fmt.Errorf("x api %d: %s", resp.StatusCode, envelope.Detail)
			}
			if len(envelope.Errors) > 0 {
				return fmt.Errorf("x api %d: %s", resp.StatusCode, envelope.Errors[0].Message)
			}
		}
		return fmt.Errorf("x api %d: %s", resp.StatusCode, truncateBody(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode x response: %w", err)
		}
	}
	return nil
}

func truncateBody(body []byte) string {
	const max = 256
	s := string(body)
	if len(s) > max {
		return s[:max]
	}
	return s
}

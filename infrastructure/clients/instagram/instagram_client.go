package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"auto-post/infrastructure/configuration"

	"github.com/google/go-querystring/query"
	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://graph.facebook.com"

// Client talks to the Instagram Graph API: content publishing plus the
// debug_token / fb_exchange_token credential endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        configuration.Instagram
	log        *log.Logger
}

func NewClient(cfg configuration.Instagram, logger *log.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
		log:        logger,
	}
}

// WithBaseURL points the client at a different endpoint, for tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// apiError is the Graph API error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type idResponse struct {
	ID string `json:"id"`
}

type containerParams struct {
	ImageURL       string `url:"image_url,omitempty"`
	Caption        string `url:"caption,omitempty"`
	IsCarouselItem bool   `url:"is_carousel_item,omitempty"`
	MediaType      string `url:"media_type,omitempty"`
	Children       string `url:"children,omitempty"`
	AccessToken    string `url:"access_token"`
}

// CreateImageContainer registers a single-image media container.
func (c *Client) CreateImageContainer(ctx context.Context, token, imageURL, caption string) (string, error) {
	return c.createContainer(ctx, containerParams{
		ImageURL:    imageURL,
		Caption:     caption,
		AccessToken: token,
	})
}

// CreateCarouselChild registers one child container for a carousel post.
func (c *Client) CreateCarouselChild(ctx context.Context, token, imageURL string) (string, error) {
	return c.createContainer(ctx, containerParams{
		ImageURL:       imageURL,
		IsCarouselItem: true,
		AccessToken:    token,
	})
}

// CreateCarouselContainer registers the parent carousel container.
func (c *Client) CreateCarouselContainer(ctx context.Context, token string, childIDs []string, caption string) (string, error) {
	return c.createContainer(ctx, containerParams{
		MediaType:   "CAROUSEL",
		Children:    strings.Join(childIDs, ","),
		Caption:     caption,
		AccessToken: token,
	})
}

func (c *Client) createContainer(ctx context.Context, params containerParams) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/media", c.baseURL, c.cfg.APIVersion, c.cfg.BusinessAccountID)
	var res idResponse
	if err := c.postForm(ctx, endpoint, params, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

type publishParams struct {
	CreationID  string `url:"creation_id"`
	AccessToken string `url:"access_token"`
}

// PublishContainer turns a finished container into a live post and returns
// the media id.
func (c *Client) PublishContainer(ctx context.Context, token, containerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/media_publish", c.baseURL, c.cfg.APIVersion, c.cfg.BusinessAccountID)
	var res idResponse
	if err := c.postForm(ctx, endpoint, publishParams{CreationID: containerID, AccessToken: token}, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

type debugTokenParams struct {
	InputToken  string `url:"input_token"`
	AccessToken string `url:"access_token"`
}

type debugTokenResponse struct {
	Data struct {
		ExpiresAt *int64 `json:"expires_at"`
	} `json:"data"`
}

// Introspect queries debug_token for the token's expiry. A nil result means
// the remote reported no expiry information; a zero time means the token
// never expires.
func (c *Client) Introspect(ctx context.Context, token string) (*time.Time, error) {
	endpoint := fmt.Sprintf("%s/%s/debug_token", c.baseURL, c.cfg.APIVersion)
	var res debugTokenResponse
	if err := c.getForm(ctx, endpoint, debugTokenParams{InputToken: token, AccessToken: token}, &res); err != nil {
		return nil, err
	}
	if res.Data.ExpiresAt == nil {
		return nil, nil
	}
	if *res.Data.ExpiresAt == 0 {
		var never time.Time
		return &never, nil
	}
	expiry := time.Unix(*res.Data.ExpiresAt, 0)
	return &expiry, nil
}

type exchangeParams struct {
	GrantType       string `url:"grant_type"`
	ClientID        string `url:"client_id"`
	ClientSecret    string `url:"client_secret"`
	FBExchangeToken string `url:"fb_exchange_token"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Exchange trades the current long-lived token for a fresh one.
func (c *Client) Exchange(ctx context.Context, token string) (string, time.Duration, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth/access_token", c.baseURL, c.cfg.APIVersion)
	var res exchangeResponse
	err := c.getForm(ctx, endpoint, exchangeParams{
		GrantType:       "fb_exchange_token",
		ClientID:        c.cfg.AppID,
		ClientSecret:    c.cfg.AppSecret,
		FBExchangeToken: token,
	}, &res)
	if err != nil {
		return "", 0, err
	}
	if res.AccessToken == "" {
		return "", 0, fmt.Errorf("exchange returned no access token")
	}
	return res.AccessToken, time.Duration(res.ExpiresIn) * time.Second, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, params interface{}, out interface{}) error {
	values, err := query.Values(params)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) getForm(ctx context.Context, endpoint string, params interface{}, out interface{}) error {
	values, err := query.Values(params)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
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
	if resp.StatusCode != http.StatusOK {
		var envelope apiError
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
			return fmt.Errorf("graph api %d: %s (code %d)", resp.StatusCode, envelope.Error.Message, envelope.Error.Code)
		}
		return fmt.Errorf("graph api %d: %s", resp.StatusCode, truncateBody(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode graph response: %w", err)
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

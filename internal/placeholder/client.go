// Package placeholder is a client for JSONPlaceholder-style REST APIs that
// serve posts, users and comments as JSON.
package placeholder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"ursa/internal/domain"
)

const maxResponseBytes = 32 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	log        *slog.Logger
}

// New builds a client rooted at baseURL. A nil httpClient falls back to
// http.DefaultClient.
func New(
	baseURL string,
	httpClient *http.Client,
	userAgent string,
	log *slog.Logger,
) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		userAgent:  strings.TrimSpace(userAgent),
		log:        log,
	}
}

func (c *Client) Posts(ctx context.Context) ([]domain.Record, error) {
	return c.getCollection(ctx, c.url(domain.PostsResource)+"/")
}

func (c *Client) Users(ctx context.Context) ([]domain.Record, error) {
	return c.getCollection(ctx, c.url(domain.UsersResource)+"/")
}

func (c *Client) Post(ctx context.Context, postID int64) (domain.Record, error) {
	return c.getRecord(ctx, c.url(domain.PostsResource, strconv.FormatInt(postID, 10)))
}

func (c *Client) Comments(ctx context.Context, postID int64) ([]domain.Record, error) {
	return c.getCollection(
		ctx,
		c.url(domain.PostsResource, strconv.FormatInt(postID, 10), domain.CommentsResource),
	)
}

// PostWithComments fetches one post and, when asked, attaches its comments
// under the "comments" key.
func (c *Client) PostWithComments(
	ctx context.Context,
	postID int64,
	withComments bool,
) (domain.Record, error) {
	post, err := c.Post(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if !withComments {
		return post, nil
	}

	comments, err := c.Comments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	raw, err := domain.MarshalRecords(comments)
	if err != nil {
		return nil, fmt.Errorf("marshal comments: %w", err)
	}

	return post.With(domain.CommentsKey, string(raw)), nil
}

func (c *Client) url(parts ...string) string {
	return c.baseURL + "/" + strings.Join(parts, "/")
}

func (c *Client) getCollection(ctx context.Context, u string) ([]domain.Record, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	records, err := domain.ParseRecords(body)
	if err != nil {
		return nil, &DecodeError{URL: u, Cause: err}
	}

	c.log.DebugContext(ctx, "Decoded collection",
		"url", u,
		"count", len(records))

	return records, nil
}

func (c *Client) getRecord(ctx context.Context, u string) (domain.Record, error) {
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	record, err := domain.ParseRecord(body)
	if err != nil {
		return nil, &DecodeError{URL: u, Cause: err}
	}

	return record, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	c.log.DebugContext(ctx, "Making a GET request",
		"url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is built from configured base URL
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", u)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &HTTPError{
			Method:     http.MethodGet,
			URL:        u,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, &DecodeError{URL: u, Cause: errors.New("response body too large")}
	}

	return body, nil
}

// Package okta is a minimal client for the Okta management API calls used by role synchronization.
package okta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tharsikan/shop-web-app-backend/internal/config"
	"github.com/tharsikan/shop-web-app-backend/internal/telemetry"
)

const (
	opGetUser         = "get_user"
	opFindGroup       = "find_group"
	opListUserGroups  = "list_user_groups"
	opAddUserToGroup  = "add_user_to_group"
	opRemoveFromGroup = "remove_user_from_group"
)

// Client calls the Okta management API with an SSWS service credential.
// Calls are never retried.
type Client struct {
	baseURL  *url.URL
	apiToken string
	maxPages int
	http     *http.Client
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger for failed calls.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.OktaConfig, opts ...Option) (*Client, error) {
	if cfg.OrgURL == "" {
		return nil, fmt.Errorf("okta: org url is required")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("okta: api token is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.OrgURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("okta: invalid org url %q", cfg.OrgURL)
	}

	maxPages := cfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL:  base,
		apiToken: cfg.APIToken,
		maxPages: maxPages,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(limit, burst),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetUser fetches a user by Okta id.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	start := time.Now()
	var user User
	_, err := c.getJSON(ctx, opGetUser, c.endpoint("/api/v1/users/"+url.PathEscape(userID)), &user)
	c.record(opGetUser, resultOf(err), start)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindGroupByName searches groups with q=name and returns the one whose profile name equals name exactly.
// Okta's search is a prefix match, so near neighbours are skipped.
func (c *Client) FindGroupByName(ctx context.Context, name string) (*Group, error) {
	start := time.Now()
	group, err := c.findGroupByName(ctx, name)
	c.record(opFindGroup, resultOf(err), start)
	return group, err
}

func (c *Client) findGroupByName(ctx context.Context, name string) (*Group, error) {
	next := c.endpoint("/api/v1/groups") + "?q=" + url.QueryEscape(name)
	for page := 0; next != ""; page++ {
		if page == c.maxPages {
			c.logger.Warn().Str("group", name).Int("max_pages", c.maxPages).
				Msg("okta group search truncated at page limit")
			break
		}
		var groups []Group
		link, err := c.getJSON(ctx, opFindGroup, next, &groups)
		if err != nil {
			return nil, err
		}
		for i := range groups {
			if groups[i].Profile.Name == name {
				return &groups[i], nil
			}
		}
		next = c.followable(link)
	}
	return nil, fmt.Errorf("group %q: %w", name, ErrNotFound)
}

// ListUserGroups returns every group the user belongs to, following pagination.
func (c *Client) ListUserGroups(ctx context.Context, userID string) ([]Group, error) {
	start := time.Now()
	groups, err := c.listUserGroups(ctx, userID)
	c.record(opListUserGroups, resultOf(err), start)
	return groups, err
}

func (c *Client) listUserGroups(ctx context.Context, userID string) ([]Group, error) {
	next := c.endpoint("/api/v1/users/" + url.PathEscape(userID) + "/groups")
	all := []Group{}
	for page := 0; next != ""; page++ {
		if page == c.maxPages {
			c.logger.Warn().Str("user_id", userID).Int("max_pages", c.maxPages).
				Msg("okta group listing truncated at page limit")
			break
		}
		var groups []Group
		link, err := c.getJSON(ctx, opListUserGroups, next, &groups)
		if err != nil {
			return nil, err
		}
		all = append(all, groups...)
		next = c.followable(link)
	}
	return all, nil
}

// AddUserToGroup resolves groupName and adds the user to it.
// 204 No Content is OutcomeApplied and any other status OutcomeNotApplied.
func (c *Client) AddUserToGroup(ctx context.Context, userID, groupName string) (Outcome, error) {
	return c.mutateMembership(ctx, opAddUserToGroup, http.MethodPut, userID, groupName)
}

// RemoveUserFromGroup is the inverse of AddUserToGroup.
func (c *Client) RemoveUserFromGroup(ctx context.Context, userID, groupName string) (Outcome, error) {
	return c.mutateMembership(ctx, opRemoveFromGroup, http.MethodDelete, userID, groupName)
}

func (c *Client) mutateMembership(ctx context.Context, op, method, userID, groupName string) (Outcome, error) {
	start := time.Now()
	group, err := c.FindGroupByName(ctx, groupName)
	if err != nil {
		c.record(op, resultOf(err), start)
		return OutcomeNotApplied, err
	}

	target := c.endpoint("/api/v1/groups/" + url.PathEscape(group.ID) + "/users/" + url.PathEscape(userID))
	resp, err := c.do(ctx, op, method, target)
	if err != nil {
		c.record(op, resultOf(err), start)
		return OutcomeNotApplied, err
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusNoContent {
		c.logger.Warn().Str("op", op).Str("user_id", userID).Str("group", groupName).
			Int("status", resp.StatusCode).Msg("okta membership change not applied")
		c.record(op, OutcomeNotApplied.String(), start)
		return OutcomeNotApplied, nil
	}
	c.record(op, "ok", start)
	return OutcomeApplied, nil
}

// getJSON issues a GET, decodes a 200 body into out and returns the rel="next" link.
func (c *Client) getJSON(ctx context.Context, op, target string, out any) (string, error) {
	resp, err := c.do(ctx, op, http.MethodGet, target)
	if err != nil {
		return "", err
	}
	defer drain(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("okta %s: %w", op, ErrNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body)))}
		c.logger.Error().Err(err).Str("op", op).Msg("okta request failed")
		return "", err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		terr := &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		c.logger.Error().Err(terr).Str("op", op).Msg("okta response malformed")
		return "", terr
	}
	return nextLink(resp.Header), nil
}

func (c *Client) do(ctx context.Context, op, method, target string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "SSWS "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Str("method", method).Msg("okta request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	return resp, nil
}

// followable returns link when it points at the configured Okta org, otherwise "".
func (c *Client) followable(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if !strings.EqualFold(u.Host, c.baseURL.Host) || u.Scheme != c.baseURL.Scheme {
		c.logger.Warn().Str("link", link).Msg("ignoring okta next link outside the org")
		return ""
	}
	return u.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) record(op, result string, start time.Time) {
	telemetry.RecordOktaRequest(op, result, time.Since(start))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

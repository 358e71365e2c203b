package buildsource

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

	"github.com/sirupsen/logrus"

	"experiment-bot/internal/buildcache"
	"experiment-bot/internal/experiments"
)

const DefaultBaseURL = "https://discord.sale/api/builds"

// RetrievalError reports a failed build fetch.
type RetrievalError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

type buildList struct {
	Builds []struct {
		BuildHash string `json:"build_hash"`
	} `json:"builds"`
}

// Client fetches builds from the builds API.
type Client struct {
	client  *http.Client
	baseURL string
	cache   buildcache.Cache
}

// New creates a client. cache may be nil.
func New(baseURL string, timeout time.Duration, cache buildcache.Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
	}
}

// FetchBuild returns the build with the given hash, or the latest build
// when hash is empty.
func (c *Client) FetchBuild(ctx context.Context, hash string) (*experiments.Build, error) {
	if hash == "" {
		latest, err := c.LatestHash(ctx)
		if err != nil {
			return nil, err
		}
		hash = latest
	}

	if c.cache != nil {
		b, ok, err := c.cache.Get(ctx, hash)
		if err != nil {
			logrus.Warnf("build cache get %s: %v", hash, err)
		} else if ok {
			return b, nil
		}
	}

	var b experiments.Build
	if err := c.getJSON(ctx, c.baseURL+"/"+url.PathEscape(hash), &b); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, hash, &b); err != nil {
			logrus.Warnf("build cache set %s: %v", hash, err)
		}
	}
	return &b, nil
}

// LatestHash resolves the hash of the most recent build.
func (c *Client) LatestHash(ctx context.Context) (string, error) {
	u := c.baseURL + "/"
	var list buildList
	if err := c.getJSON(ctx, u, &list); err != nil {
		return "", err
	}
	if len(list.Builds) == 0 || list.Builds[0].BuildHash == "" {
		return "", &RetrievalError{URL: u, Err: errors.New("no builds listed")}
	}
	return list.Builds[0].BuildHash, nil
}

func (c *Client) getJSON(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &RetrievalError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &RetrievalError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RetrievalError{URL: u, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &RetrievalError{URL: u, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

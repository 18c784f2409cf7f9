// internal/adapters/trustpilot/client.go
package trustpilot

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"trustwatch/internal/adapters/observability"
	"trustwatch/internal/domain"
)

const defaultBase = "https://www.trustpilot.com"

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a listing client. delay is the minimum spacing between
// successive requests, enforced client-side to stay inside the source's
// request-per-minute allowance.
func New(base string, delay time.Duration) *Client {
	if base == "" {
		base = defaultBase
	}
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

// ---- Public API ----

// FetchPage retrieves one listing page. Page 1 carries the business unit
// profile; later pages are requested with an explicit page parameter.
func (c *Client) FetchPage(ctx context.Context, brandDomain string, page int, opts domain.FetchOptions) (domain.SourcePage, error) {
	raw, err := c.get(ctx, "listing", c.listingURL(brandDomain, page, opts))
	if err != nil {
		return domain.SourcePage{}, classify(err)
	}

	props := gjson.GetBytes(raw, "props.pageProps")
	if !props.Exists() {
		return domain.SourcePage{}, fmt.Errorf("%w: props.pageProps missing", domain.ErrMalformedPage)
	}
	var pg pageV1
	if err := json.Unmarshal([]byte(props.Raw), &pg); err != nil {
		return domain.SourcePage{}, fmt.Errorf("%w: %v", domain.ErrMalformedPage, err)
	}
	if page == 1 && pg.BusinessUnit == nil {
		return domain.SourcePage{}, fmt.Errorf("%w: businessUnit missing on page 1", domain.ErrMalformedPage)
	}
	for _, r := range pg.Reviews {
		if r.ID == "" {
			return domain.SourcePage{}, fmt.Errorf("%w: review missing id", domain.ErrMalformedPage)
		}
	}
	return pg.toDomain(), nil
}

// FetchMentions retrieves the source's own topic-mention list for a
// business unit. Businesses without a mentions document are common, so a
// 404 yields an empty result rather than an error.
func (c *Client) FetchMentions(ctx context.Context, businessID string) ([]string, error) {
	u := fmt.Sprintf("%s/business-units/%s/topics", c.base, url.PathEscape(businessID))
	raw, err := c.get(ctx, "topics", u)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}
	var doc topicsV1
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPage, err)
	}
	out := make([]string, 0, len(doc.Topics))
	for _, t := range doc.Topics {
		if s := string(t); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *Client) listingURL(brandDomain string, page int, opts domain.FetchOptions) string {
	langs := opts.Languages
	if langs == "" {
		langs = "all"
	}
	u := fmt.Sprintf("%s/review/%s/data?languages=%s", c.base, url.PathEscape(brandDomain), url.QueryEscape(langs))
	if opts.DateFilter != "" {
		u += "&date=" + url.QueryEscape(opts.DateFilter)
	}
	if page > 1 {
		u += "&page=" + strconv.Itoa(page)
	}
	return u
}

// ---- Internals ----

var errNotFound = errors.New("trustpilot: not found")

// classify maps transport failures onto the domain taxonomy. A 404 is the
// normal end-of-listing signal; anything else surviving the retry loop is
// treated as transient.
func classify(err error) error {
	switch {
	case errors.Is(err, errNotFound):
		return domain.ErrEndOfPages
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
}

// get performs a GET with client-side pacing and retries, returning the raw
// body. Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, u string) ([]byte, error) {
	// client-side pacing
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "trustwatch/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("trustpilot", endpoint, 0, time.Since(start))
			// network error or context canceled
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("trustpilot", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}
			return b, nil

		case http.StatusNotFound:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, errNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	// HTTP-date form
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0                  // 0..1
	j := time.Duration(0.5 * f * float64(base)) // up to +50%
	return base + j
}

/*
 * iptv-aggregator is a project to proxy and aggregate IPTV providers behind a single identity.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package fetcher is the Upstream Fetcher (§4.1): a single shared outbound
// HTTP client used by every component that talks to an upstream provider.
// Grounded on the teacher's pkg/server/proxy_handlers.go `stream` transport
// tuning (long-lived connections, no global timeout on streaming GETs).
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

// DefaultTimeout is the per-request timeout applied to non-streaming calls.
const DefaultTimeout = 5 * time.Second

// Response is a fetched-but-not-yet-consumed upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
	FinalURL   string // resolved URL after following redirects
}

// Error kinds (§7): UpstreamUnreachable / UpstreamDecode / UpstreamStatus.
type UpstreamUnreachable struct{ Err error }

func (e *UpstreamUnreachable) Error() string { return fmt.Sprintf("upstream unreachable: %v", e.Err) }
func (e *UpstreamUnreachable) Unwrap() error { return e.Err }

type UpstreamDecode struct{ Err error }

func (e *UpstreamDecode) Error() string { return fmt.Sprintf("upstream decode failed: %v", e.Err) }
func (e *UpstreamDecode) Unwrap() error { return e.Err }

// Fetcher is the single shared HTTP client (§5 Shared resources). Never
// retries; HTTP/1.1-only is a supported mode via ForceAttemptHTTP2=false,
// matching providers that misbehave with protocol negotiation.
type Fetcher struct {
	client *http.Client
}

// New builds the shared client used for both bounded requests and
// open-ended streaming GETs (the latter pass their own context deadline).
func New() *Fetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Fetcher{client: &http.Client{Transport: transport}}
}

// Get issues a GET and returns the response with its body not yet
// consumed; DefaultTimeout bounds both the request and the caller's read
// of Body. Callers must close Body.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	return f.Request(ctx, http.MethodGet, url, nil)
}

// GetStream issues a GET with no body timeout, suitable for pipelining
// into a client response without buffering in full (§4.1, §5 suspension
// points).
func (f *Fetcher) GetStream(ctx context.Context, url string, headers http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamUnreachable{Err: err}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &UpstreamUnreachable{Err: err}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// GetJSON is a convenience over Get that deserializes the body into T.
func GetJSON[T any](ctx context.Context, f *Fetcher, url string) (T, http.Header, int, error) {
	var zero T

	resp, err := f.Get(ctx, url)
	if err != nil {
		return zero, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, resp.Header, resp.StatusCode, &UpstreamUnreachable{Err: err}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		utils.DebugLog("GetJSON: failed to decode %s: %v", url, err)
		return zero, resp.Header, resp.StatusCode, &UpstreamDecode{Err: err}
	}

	return out, resp.Header, resp.StatusCode, nil
}

// Request forwards an arbitrary method with caller-supplied headers.
func (f *Fetcher) Request(ctx context.Context, method, url string, headers http.Header) (*Response, error) {
	// The timer, not a deferred cancel, ends the request context: canceling
	// on return would abort the caller's read of the returned Body.
	reqCtx, cancel := context.WithCancel(ctx)
	time.AfterFunc(DefaultTimeout, cancel)

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return nil, &UpstreamUnreachable{Err: err}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", utils.GetIPTVUserAgent())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &UpstreamUnreachable{Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

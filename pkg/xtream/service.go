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

// Package xtream is the Xtream Service (§4.4): it mediates player_api.php,
// xmltv.php, get.php and the streaming path families, rewriting credentials
// and URLs so every upstream reference the client sees points back at the
// proxy. Grounded on the teacher's pkg/xtream-proxy and pkg/server
// xtreamHandles.go/xtream_handlers_stream.go, generalized over the new
// Catalog Service instead of the teacher's in-memory maps.
package xtream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/lucasduport/iptv-aggregator/pkg/catalog"
	"github.com/lucasduport/iptv-aggregator/pkg/fetcher"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

// Config carries the real upstream credentials and the proxy's own
// public-facing address (§4.4.3, §6).
type Config struct {
	BaseDomain      string
	Username        string
	Password        string
	ProxiedDomain   string
	ProxiedUsername string
	ProxiedPassword string
	ProxyPort       int
}

// Service is the Xtream Service.
type Service struct {
	catalog *catalog.Service
	fetcher *fetcher.Fetcher
	cfg     Config
}

// New builds an Xtream Service over a Catalog Service and Upstream Fetcher.
func New(c *catalog.Service, f *fetcher.Fetcher, cfg Config) *Service {
	return &Service{catalog: c, fetcher: f, cfg: cfg}
}

// ErrUpstream marks any upstream or DB failure inside an Xtream call (§4.4.7:
// these always surface as 500 "INTERNAL SERVER ERROR", never retried).
var ErrUpstream = errors.New("internal server error")

// upstreamURL builds the real upstream player_api.php URL, substituting the
// configured real credentials for whatever the client sent (§4.4.3).
func (s *Service) upstreamURL(action string, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("username", s.cfg.Username)
	q.Set("password", s.cfg.Password)
	if action != "" {
		q.Set("action", action)
	}
	return fmt.Sprintf("http://%s/player_api.php?%s", s.cfg.BaseDomain, q.Encode())
}

// PlayerAPI dispatches one player_api.php call (§4.4.2). sourceURL
// identifies which configured provider's latest m3u to filter/enrich
// against. Returns the response body ready to write back to the client.
func (s *Service) PlayerAPI(ctx context.Context, sourceURL, action string, query url.Values) ([]byte, error) {
	switch action {
	case "":
		return s.login(ctx)
	case "get_live_streams":
		return s.proxyStreams(ctx, sourceURL, "live", action, query)
	case "get_vod_streams":
		return s.proxyStreams(ctx, sourceURL, "movie", action, query)
	case "get_series":
		return s.proxySeries(ctx, sourceURL, query)
	case "get_live_categories", "get_vod_categories", "get_series_categories":
		return s.proxyCategories(ctx, sourceURL, action, query)
	case "get_series_info", "get_vod_info":
		return s.proxyInfo(ctx, sourceURL, action, query)
	default:
		return s.passThrough(ctx, action, query)
	}
}

func (s *Service) passThrough(ctx context.Context, action string, query url.Values) ([]byte, error) {
	body, err := s.fetchUpstream(ctx, s.upstreamURL(action, query))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Service) fetchUpstream(ctx context.Context, u string) ([]byte, error) {
	resp, err := s.fetcher.Get(ctx, u)
	if err != nil {
		utils.ErrorLog("xtream upstream call failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		utils.ErrorLog("xtream upstream read failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if path := utils.SaveRawResponse(requestAction(u), body); path != "" {
		utils.DebugLog("saved raw upstream response to %s", path)
	}

	return body, nil
}

// requestAction extracts the `action` query param from a player_api.php
// call, used only to name debug dumps (§"AMBIENT STACK" test/debug
// tooling, carried from the teacher's debug dump helpers).
func requestAction(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("action")
}

// proxyStreams implements get_live_streams/get_vod_streams (§4.4.2,
// scenario 3): filter out any stream whose stream_id is excluded for the
// latest m3u of sourceURL under prefix.
func (s *Service) proxyStreams(ctx context.Context, sourceURL, prefix, action string, query url.Values) ([]byte, error) {
	body, err := s.fetchUpstream(ctx, s.upstreamURL(action, query))
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		utils.ErrorLog("xtream %s: decode upstream body: %v", action, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	m3u, err := s.catalog.GetLatestM3u(ctx, sourceURL)
	if err != nil {
		utils.ErrorLog("xtream %s: resolve latest m3u: %v", action, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	excludedIDs, err := s.catalog.GetExcludeEligibleByM3uId(ctx, m3u.ID, prefix)
	if err != nil {
		utils.ErrorLog("xtream %s: load excluded track ids: %v", action, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}

	return json.Marshal(FilterOut(items, excluded))
}

// proxySeries implements get_series: filter out series whose category_id is
// in the excluded groups' xtream_cat_id set (§4.4.2).
func (s *Service) proxySeries(ctx context.Context, sourceURL string, query url.Values) ([]byte, error) {
	body, err := s.fetchUpstream(ctx, s.upstreamURL("get_series", query))
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		utils.ErrorLog("xtream get_series: decode upstream body: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	m3u, err := s.catalog.GetLatestM3u(ctx, sourceURL)
	if err != nil {
		utils.ErrorLog("xtream get_series: resolve latest m3u: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	groups, err := s.catalog.ListGroups(ctx, m3u.ID)
	if err != nil {
		utils.ErrorLog("xtream get_series: load groups: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	excluded := map[string]bool{}
	for _, g := range groups {
		if g.Exclude && g.XtreamCatID != "" {
			excluded[g.XtreamCatID] = true
		}
	}

	return json.Marshal(FilterOut(items, excluded))
}

// proxyCategories implements get_live_categories/get_vod_categories/
// get_series_categories: retain only categories whose name is an included
// group of the latest m3u version (§4.4.2).
func (s *Service) proxyCategories(ctx context.Context, sourceURL, action string, query url.Values) ([]byte, error) {
	body, err := s.fetchUpstream(ctx, s.upstreamURL(action, query))
	if err != nil {
		return nil, err
	}

	m3u, err := s.catalog.GetLatestM3u(ctx, sourceURL)
	if err != nil {
		utils.ErrorLog("xtream %s: resolve latest m3u: %v", action, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	groups, err := s.catalog.ListGroups(ctx, m3u.ID)
	if err != nil {
		utils.ErrorLog("xtream %s: load groups: %v", action, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	included := map[string]bool{}
	for _, g := range groups {
		if !g.Exclude {
			included[g.Name] = true
		}
	}

	out, err := FilterCategoriesByName(body, included)
	if err != nil {
		utils.ErrorLog("xtream %s: filter categories: %v", action, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return out, nil
}

// proxyInfo implements get_series_info/get_vod_info: no filtering, but every
// embedded media URL is rewritten through the deep proxification pipeline
// (§4.4.5).
func (s *Service) proxyInfo(ctx context.Context, sourceURL, action string, query url.Values) ([]byte, error) {
	body, err := s.fetchUpstream(ctx, s.upstreamURL(action, query))
	if err != nil {
		return nil, err
	}

	m3u, err := s.catalog.GetLatestM3u(ctx, sourceURL)
	if err != nil {
		utils.ErrorLog("xtream %s: resolve latest m3u: %v", action, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out, err := s.proxifyURLs(ctx, m3u.ID, body)
	if err != nil {
		utils.ErrorLog("xtream %s: proxify urls: %v", action, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return out, nil
}

// login handles player_api.php with no action: the Xtream login/server
// handshake (§4.4.1, scenario 5).
func (s *Service) login(ctx context.Context) ([]byte, error) {
	body, err := s.fetchUpstream(ctx, s.upstreamURL("", nil))
	if err != nil {
		return nil, err
	}

	var upstream loginResponse
	if err := json.Unmarshal(body, &upstream); err != nil {
		utils.ErrorLog("xtream login: decode upstream body: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	rewritten := rewriteLogin(upstream, s.cfg.ProxiedUsername, s.cfg.ProxiedPassword, s.cfg.ProxiedDomain, s.cfg.ProxyPort)
	return json.Marshal(rewritten)
}

// CheckCredentials implements the query-based auth guard for player_api.php/
// xmltv.php/get.php (§6): username/password must equal the configured
// proxied credentials.
func (s *Service) CheckCredentials(username, password string) bool {
	return username == s.cfg.ProxiedUsername && password == s.cfg.ProxiedPassword
}

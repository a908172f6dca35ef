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

package xtream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// proxifyURLs recursively walks a JSON document (§4.4.5, §9 "Coroutine-like
// recursion"), replacing every string leaf that parses as an http(s) URL
// with an opaque `http://{proxied_domain}/url/{id}` reference. Each
// replacement records the original URL in XtreamUrl, bound to m3uID.
func (s *Service) proxifyURLs(ctx context.Context, m3uID uint64, raw []byte) ([]byte, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	walked, err := s.proxifyValue(ctx, m3uID, doc)
	if err != nil {
		return nil, err
	}

	return json.Marshal(walked)
}

func (s *Service) proxifyValue(ctx context.Context, m3uID uint64, v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case string:
		if !isHTTPURL(val) {
			return val, nil
		}
		id, err := s.catalog.InsertXtreamUrl(ctx, m3uID, val)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("http://%s/url/%d", s.cfg.ProxiedDomain, id), nil

	case []interface{}:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			rewritten, err := s.proxifyValue(ctx, m3uID, elem)
			if err != nil {
				return nil, err
			}
			out[i] = rewritten
		}
		return out, nil

	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, elem := range val {
			rewritten, err := s.proxifyValue(ctx, m3uID, elem)
			if err != nil {
				return nil, err
			}
			out[k] = rewritten
		}
		return out, nil

	default:
		// numbers, bools, null: left unchanged.
		return val, nil
	}
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ResolveXtreamURL resolves a proxified `/url/{id}` reference back to its
// original upstream URL (§4.4.5).
func (s *Service) ResolveXtreamURL(ctx context.Context, id uint64) (string, error) {
	u, err := s.catalog.GetXtreamUrl(ctx, id)
	if err != nil {
		return "", err
	}
	return u, nil
}

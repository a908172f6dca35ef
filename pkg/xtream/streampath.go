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
	"fmt"
	"net/url"
	"path"
	"strings"
)

// BuildStreamURL reconstructs the upstream streaming URL from the latest
// m3u's (domain, port) plus the request path segments (§4.4.4).
// segments must have length 2 (`/{seg1}/{seg2}/{id}`) or 3
// (`/{seg1}/{seg2}/{seg3}/{id}`); id may carry a trailing extension, which
// is appended verbatim to the reconstructed path.
func (s *Service) BuildStreamURL(ctx context.Context, sourceURL string, segments []string, id string) (string, error) {
	m3u, err := s.catalog.GetLatestM3u(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	host := m3u.Domain
	if m3u.Port != "" {
		host = host + ":" + m3u.Port
	}

	rewritten := make([]string, len(segments))
	copy(rewritten, segments)

	switch len(segments) {
	case 2:
		if s.cfg.Username != "" {
			rewritten[0] = s.cfg.Username
			rewritten[1] = s.cfg.Password
		}
	case 3:
		// segments[0] is the kind prefix (live/movie/series): left untouched.
		if s.cfg.Username != "" {
			rewritten[1] = s.cfg.Username
			rewritten[2] = s.cfg.Password
		}
	default:
		return "", fmt.Errorf("%w: unsupported streaming path with %d segments", ErrUpstream, len(segments))
	}

	u := url.URL{
		Scheme: "http",
		Host:   host,
		Path:   "/" + strings.Join(rewritten, "/") + "/" + id,
	}
	return u.String(), nil
}

// ExtensionlessID strips any trailing extension from a streaming path id
// (e.g. `123.mp4` -> `123`). BuildStreamURL does not use it: streaming ids
// are forwarded upstream with their extension.
func ExtensionlessID(id string) string {
	return strings.TrimSuffix(id, path.Ext(id))
}

// IsHLSManifest reports whether a final upstream URL is an HLS playlist,
// the trigger for origin pinning (§4.4.4).
func IsHLSManifest(finalURL string) bool {
	return strings.HasSuffix(finalURL, ".m3u8")
}

// PersistFinalResponseUrl pins the scheme://host[:port] origin of the final
// (post-redirect) response URL for subsequent `/hls/{seg1}/{id}` requests to
// replay against (§4.4.4: truncate-then-insert, at most one row).
func (s *Service) PersistFinalResponseUrl(ctx context.Context, finalURL string) error {
	u, err := url.Parse(finalURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
	if err := s.catalog.PinHlsOrigin(ctx, origin); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// BuildHLSSegmentURL composes an HLS chunk request against the previously
// pinned origin (§4.4.4, supplemented by the chunk-redirect-replay behavior
// the teacher's xtreamHlsStream/hlsXtreamStream implement).
func (s *Service) BuildHLSSegmentURL(ctx context.Context, seg1, id string) (string, error) {
	origin, err := s.catalog.GetPinnedHlsOrigin(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return fmt.Sprintf("%s/%s/%s", origin, seg1, id), nil
}

// RewriteCredentialsInBody replaces any occurrence of the real upstream
// credentials embedded in a proxied response body (e.g. inside an HLS
// manifest's chunk URLs) with the client-facing proxied credentials, so
// the client never sees the real upstream username/password.
func (s *Service) RewriteCredentialsInBody(body []byte) []byte {
	if s.cfg.Username == "" {
		return body
	}
	out := strings.ReplaceAll(string(body), "/"+s.cfg.Username+"/"+s.cfg.Password+"/", "/"+s.cfg.ProxiedUsername+"/"+s.cfg.ProxiedPassword+"/")
	return []byte(out)
}

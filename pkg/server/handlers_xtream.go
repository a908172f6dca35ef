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

package server

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lucasduport/iptv-aggregator/pkg/playlist"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
	"github.com/lucasduport/iptv-aggregator/pkg/xtream"
)

// registerXtreamRoutes wires the Xtream Service's endpoints (§4.4, §6),
// only mounted when xtream_enabled is set. player_api.php/xmltv.php/get.php
// are query-auth guarded; the streaming path families are path-auth
// guarded, mirroring the teacher's two distinct auth middlewares.
func (s *Server) registerXtreamRoutes(r *gin.Engine) {
	r.Any("/player_api.php", s.queryAuth(), s.playerAPI)
	r.GET("/xmltv.php", s.queryAuth(), s.xmltvPhp)
	r.GET("/get.php", s.queryAuth(), s.getPhp)

	r.GET("/:u/:p/:id", s.pathAuth(), s.streamTwoSeg)
	r.GET("/live/:u/:p/:id", s.pathAuth(), s.streamThreeSeg("live"))
	r.GET("/movie/:u/:p/:id", s.pathAuth(), s.streamThreeSeg("movie"))
	r.GET("/series/:u/:p/:id", s.pathAuth(), s.streamThreeSeg("series"))
}

// playerAPI dispatches every player_api.php action (§4.4.2) against the
// configured m3u source's latest catalog snapshot.
func (s *Server) playerAPI(ctx *gin.Context) {
	action := ctx.Query("action")
	body, err := s.xtream.PlayerAPI(ctx.Request.Context(), s.cfg.M3U, action, ctx.Request.URL.Query())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "application/json", body)
}

// xmltvPhp forwards xmltv.php verbatim (§4.4.1).
func (s *Server) xmltvPhp(ctx *gin.Context) {
	body, err := s.xtream.Xmltv(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "application/xml", body)
}

// getPhp implements get.php?type=m3u_plus&output={m3u8|ts|rmtp}
// (SUPPLEMENTED FEATURES #1: serve the newest matching rendered file if
// it's still within the TTL, regenerate otherwise). GetAuto is called only
// to check that the configured m3u source URL parses; its merged query is
// not used, and the response is always a locally rendered file.
func (s *Server) getPhp(ctx *gin.Context) {
	typ := ctx.Query("type")
	output := ctx.Query("output")
	if err := xtream.ValidateGetPhpOutput(typ, output); err != nil {
		ctx.String(http.StatusInternalServerError, err.Error())
		return
	}

	if _, err := xtream.GetAuto(s.cfg.M3U, ctx.Request.URL.Query()); err != nil {
		writeError(ctx, err)
		return
	}

	variant := playlist.VariantM3u8
	if output == "ts" {
		variant = playlist.VariantTs
	}

	path, fresh := s.freshVariantFile(variant)
	if !fresh {
		provider, err := s.catalog.GetLatestProviderEntry(ctx.Request.Context(), s.cfg.M3U)
		if err != nil {
			writeError(ctx, err)
			return
		}
		dto, err := s.catalog.GetProvider(ctx.Request.Context(), provider.ID)
		if err != nil {
			writeError(ctx, err)
			return
		}
		for _, res := range playlist.RenderAll(dto, s.renderCfg()) {
			if res.Variant == variant {
				path, fresh = res.Path, res.Err == nil
			}
		}
		if !fresh {
			ctx.String(http.StatusInternalServerError, "INTERNAL SERVER ERROR")
			return
		}
	}

	ctx.FileAttachment(path, "playlist.m3u")
}

// freshVariantFile reports the newest file of a variant still inside the
// m3u_cache_expiration_hours TTL (§6), the disk-mtime based cache this
// package uses instead of a separate in-memory cache store.
func (s *Server) freshVariantFile(v playlist.Variant) (string, bool) {
	path, err := playlist.LatestVariantFile(".", v)
	if err != nil || path == "" {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	ttl := time.Duration(s.cfg.M3UCacheExpirationHours) * time.Hour
	if ttl <= 0 {
		return path, true
	}
	return path, time.Since(info.ModTime()) < ttl
}

// streamTwoSeg handles `/{username}/{password}/{id}` (§4.4.4): the
// two-segment live-channel shorthand with no kind prefix.
func (s *Server) streamTwoSeg(ctx *gin.Context) {
	s.resolveAndStream(ctx, []string{ctx.Param("u"), ctx.Param("p")})
}

// streamThreeSeg handles `/{kind}/{username}/{password}/{id}` (§4.4.4) for
// kind in {live, movie, series}.
func (s *Server) streamThreeSeg(kind string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s.resolveAndStream(ctx, []string{kind, ctx.Param("u"), ctx.Param("p")})
	}
}

// resolveAndStream rebuilds the upstream URL for a streaming-path request,
// pins the HLS origin whenever a request resolves to an .m3u8
// manifest (§4.4.4), and streams the response through, rewriting embedded
// credentials for HLS bodies.
func (s *Server) resolveAndStream(ctx *gin.Context, segments []string) {
	id := ctx.Param("id")

	upstream, err := s.xtream.BuildStreamURL(ctx.Request.Context(), s.cfg.M3U, segments, id)
	if err != nil {
		writeError(ctx, err)
		return
	}

	if xtream.IsHLSManifest(upstream) || strings.HasSuffix(id, ".m3u8") {
		if err := s.xtream.PersistFinalResponseUrl(ctx.Request.Context(), upstream); err != nil {
			utils.ErrorLog("pin hls origin for %s: %v", upstream, err)
		}
		s.streamProxyRewritten(ctx, upstream)
		return
	}

	s.streamProxy(ctx, upstream)
}

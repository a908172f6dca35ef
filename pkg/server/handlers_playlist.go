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
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lucasduport/iptv-aggregator/pkg/database"
	"github.com/lucasduport/iptv-aggregator/pkg/playlist"
)

// registerPlaylistRoutes wires the generated-.m3u serving endpoints (§6
// Playlist).
func (s *Server) registerPlaylistRoutes(r *gin.Engine) {
	r.GET("/m3u", s.getLatestM3u)
	r.GET("/m3u/:filename", s.getM3uByName)
	r.GET("/m3u-exist", s.m3uExists)
	r.POST("/m3u/create", s.createM3u)
}

// renderCfg builds the §4.5 RenderConfig used by the admin-triggered render
// and get.php regeneration (cmd/root.go builds the Scheduler's own copy).
func (s *Server) renderCfg() playlist.RenderConfig {
	return playlist.RenderConfig{
		ProxyDomain:    s.cfg.ProxyDomain,
		XtreamUsername: s.cfg.XtreamUsername,
		XtreamPassword: s.cfg.XtreamPassword,
		WorkingDir:     ".",
	}
}

// getLatestM3u serves the most recently rendered custom-variant playlist
// (§4.5: the client-facing proxied-URL variant).
func (s *Server) getLatestM3u(ctx *gin.Context) {
	path, err := playlist.LatestVariantFile(".", playlist.VariantCustom)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if path == "" {
		ctx.String(http.StatusNotFound, "NOT FOUND")
		return
	}
	ctx.FileAttachment(path, filepath.Base(path))
}

// getM3uByName serves one specific generated file by name, rejecting any
// path traversal attempt since filename comes straight from the URL.
func (s *Server) getM3uByName(ctx *gin.Context) {
	name := ctx.Param("filename")
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		badRequest(ctx, "invalid filename")
		return
	}
	ctx.FileAttachment(name, name)
}

// m3uExists reports whether at least one rendered playlist of any variant
// is present, letting clients avoid a 404 round-trip.
func (s *Server) m3uExists(ctx *gin.Context) {
	for _, v := range []playlist.Variant{playlist.VariantCustom, playlist.VariantTs, playlist.VariantM3u8} {
		path, err := playlist.LatestVariantFile(".", v)
		if err == nil && path != "" {
			ctx.JSON(http.StatusOK, gin.H{"exists": true})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"exists": false})
}

// createM3u rehydrates the newest Provider for the configured m3u source
// and fans out the three renders (§4.5).
func (s *Server) createM3u(ctx *gin.Context) {
	provider, err := s.catalog.GetLatestProviderEntry(ctx.Request.Context(), s.cfg.M3U)
	if err != nil {
		if err == database.ErrNotFound {
			ctx.String(http.StatusNotFound, "NOT FOUND")
			return
		}
		writeError(ctx, err)
		return
	}

	dto, err := s.catalog.GetProvider(ctx.Request.Context(), provider.ID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	results := playlist.RenderAll(dto, s.renderCfg())
	ctx.JSON(http.StatusOK, results)
}

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
	"strconv"

	"github.com/gin-gonic/gin"
)

// registerAdminRoutes wires the Provider lifecycle endpoints (§6 Admin).
func (s *Server) registerAdminRoutes(r *gin.Engine) {
	r.GET("/provider", s.listProviders)
	r.POST("/provider", s.createProvider)
	r.GET("/provider/:id", s.getProvider)
	r.DELETE("/provider/:id", s.deleteProvider)
	r.GET("/provider/refresh", s.refreshProviders)
}

type createProviderRequest struct {
	Source string `json:"source" binding:"required"`
}

func (s *Server) createProvider(ctx *gin.Context) {
	var req createProviderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}

	id, err := s.catalog.CreateProvider(ctx.Request.Context(), req.Source, ingestConfig(s.cfg))
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": id})
}

func (s *Server) getProvider(ctx *gin.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		badRequest(ctx, "invalid provider id")
		return
	}

	dto, err := s.catalog.GetProvider(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto)
}

func (s *Server) deleteProvider(ctx *gin.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		badRequest(ctx, "invalid provider id")
		return
	}

	if err := s.catalog.DeleteProvider(ctx.Request.Context(), id); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// listProviders is an administrative convenience beyond §6's literal
// endpoint list: GetLatestProviderEntry is the only by-source lookup named
// in §4.3, but an admin surface without an index endpoint can't discover
// ids to pass to GET/DELETE /provider/{id}.
func (s *Server) listProviders(ctx *gin.Context) {
	providers, err := s.catalog.ListProviders(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, providers)
}

// refreshProviders re-ingests every known Provider's stored source on
// demand (§4.3 RefreshProviders).
func (s *Server) refreshProviders(ctx *gin.Context) {
	s.catalog.RefreshProviders(ctx.Request.Context(), ingestConfig(s.cfg))
	ctx.Status(http.StatusAccepted)
}

func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}

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
	"github.com/gin-gonic/gin"

	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

// queryAuth is the query-based guard (§6): username/password query params
// must equal the configured proxied credentials. Used by player_api.php,
// xmltv.php and get.php.
func (s *Server) queryAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username := ctx.Query("username")
		password := ctx.Query("password")

		if !s.xtream.CheckCredentials(username, password) {
			utils.DebugLog("query auth failed for user %s", utils.MaskString(username))
			forbidden(ctx)
			return
		}
		ctx.Next()
	}
}

// pathAuth is the path-based guard (§6) for streaming paths: the
// username/password URL segments must equal the configured proxied
// credentials, regardless of whether the route carries a kind-prefix
// segment (3-segment form) or not (2-segment form) — each route registers
// its own `:u`/`:p` params, so the guard only needs their names.
func (s *Server) pathAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username := ctx.Param("u")
		password := ctx.Param("p")
		if !s.xtream.CheckCredentials(username, password) {
			utils.DebugLog("path auth failed for user %s", utils.MaskString(username))
			forbidden(ctx)
			return
		}
		ctx.Next()
	}
}

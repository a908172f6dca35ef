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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lucasduport/iptv-aggregator/pkg/database"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
	"github.com/lucasduport/iptv-aggregator/pkg/xtream"
)

// writeError maps a domain error to an HTTP response (§7 Error mapping):
// NotFound -> 404, xtream.ErrUpstream -> 500 "INTERNAL SERVER ERROR",
// everything else -> 500 "UNHANDLED_REJECTION".
func writeError(ctx *gin.Context, err error) {
	utils.ErrorLog("request %s failed: %v", ctx.Request.URL.Path, utils.PrintErrorAndReturn(err))

	switch {
	case errors.Is(err, database.ErrNotFound):
		ctx.String(http.StatusNotFound, "NOT FOUND")
	case errors.Is(err, xtream.ErrUpstream):
		ctx.String(http.StatusInternalServerError, "INTERNAL SERVER ERROR")
	default:
		ctx.String(http.StatusInternalServerError, "UNHANDLED_REJECTION")
	}
}

// badRequest answers a BadRequest (§7): malformed body or id.
func badRequest(ctx *gin.Context, msg string) {
	ctx.String(http.StatusBadRequest, msg)
}

// forbidden answers an AuthFailed guard mismatch (§6, §7): 403.
func forbidden(ctx *gin.Context) {
	ctx.AbortWithStatus(http.StatusForbidden)
}

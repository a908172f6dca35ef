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

import xtreamcodes "github.com/tellytv/go.xtream-codes"

// loginResponse is the player_api.php login body: user_info carries
// proxy-facing credentials, server_info carries the proxy's own address
// (§4.4.1 "player_api.php (login, no action)").
type loginResponse struct {
	UserInfo   xtreamcodes.UserInfo   `json:"user_info"`
	ServerInfo xtreamcodes.ServerInfo `json:"server_info"`
}

// rewriteLogin takes the upstream login response and substitutes the
// proxied credentials and proxy-public address, keeping every other
// upstream-reported field (message, auth, expiry, connection limits, ...).
func rewriteLogin(upstream loginResponse, proxiedUsername, proxiedPassword, proxyDomain string, proxyPort int) loginResponse {
	return loginResponse{
		UserInfo: xtreamcodes.UserInfo{
			Username:             proxiedUsername,
			Password:             proxiedPassword,
			Message:              upstream.UserInfo.Message,
			Auth:                 upstream.UserInfo.Auth,
			Status:               upstream.UserInfo.Status,
			ExpDate:              upstream.UserInfo.ExpDate,
			IsTrial:              upstream.UserInfo.IsTrial,
			ActiveConnections:    upstream.UserInfo.ActiveConnections,
			CreatedAt:            upstream.UserInfo.CreatedAt,
			MaxConnections:       upstream.UserInfo.MaxConnections,
			AllowedOutputFormats: upstream.UserInfo.AllowedOutputFormats,
		},
		ServerInfo: xtreamcodes.ServerInfo{
			URL:          proxyDomain,
			Port:         xtreamcodes.FlexInt(proxyPort),
			HTTPSPort:    xtreamcodes.FlexInt(proxyPort),
			Protocol:     "http",
			RTMPPort:     xtreamcodes.FlexInt(proxyPort),
			Timezone:     upstream.ServerInfo.Timezone,
			TimestampNow: upstream.ServerInfo.TimestampNow,
			TimeNow:      upstream.ServerInfo.TimeNow,
		},
	}
}

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
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lucasduport/iptv-aggregator/pkg/fetcher"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

// streamProxy pipes an upstream GET response straight into the client
// response, never buffering in full (§4.1 GetStream, §5 suspension
// points). Grounded on the teacher's Config.stream: copy status and
// headers, then flush each chunk as it arrives, bailing out the moment
// the client disconnects (§5 Cancellation).
func (s *Server) streamProxy(ctx *gin.Context, url string) {
	resp, err := s.fetcherForStreaming().GetStream(ctx.Request.Context(), url, ctx.Request.Header)
	if err != nil {
		writeError(ctx, err)
		return
	}
	defer resp.Body.Close()

	for k, vs := range resp.Header {
		for _, v := range vs {
			ctx.Writer.Header().Add(k, v)
		}
	}
	ctx.Status(resp.StatusCode)

	w := ctx.Writer
	buf := make([]byte, 64*1024)
	for {
		select {
		case <-ctx.Request.Context().Done():
			utils.DebugLog("client disconnected from stream: %s", url)
			return
		default:
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
		if rerr != nil {
			if rerr != io.EOF {
				utils.DebugLog("upstream read error for %s: %v", url, rerr)
			}
			return
		}
	}
}

// streamProxyRewritten behaves like streamProxy but buffers the full body
// so upstream credentials can be replaced before the client sees them
// (SUPPLEMENTED FEATURES #3: HLS chunk-redirect replay). HLS manifests and
// key/segment redirects are small text payloads, so buffering here doesn't
// cost what it would on a video stream.
func (s *Server) streamProxyRewritten(ctx *gin.Context, url string) {
	resp, err := s.fetcherForStreaming().GetStream(ctx.Request.Context(), url, ctx.Request.Header)
	if err != nil {
		writeError(ctx, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	body = s.xtream.RewriteCredentialsInBody(body)

	for k, vs := range resp.Header {
		if k == "Content-Length" {
			continue
		}
		for _, v := range vs {
			ctx.Writer.Header().Add(k, v)
		}
	}
	ctx.Data(resp.StatusCode, resp.Header.Get("Content-Type"), body)
}

// fetcherForStreaming exposes the Fetcher for routes that need GetStream
// directly. It is the same shared instance cmd/root.go hands to the Catalog
// and Xtream Services (§5 single shared client).
func (s *Server) fetcherForStreaming() *fetcher.Fetcher {
	return s.sharedFetcher
}

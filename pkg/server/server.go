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

// Package server is the HTTP Surface (§4.7, §6): thin gin handlers that
// decode inputs, invoke the Catalog/Xtream services, and translate domain
// errors into HTTP responses. Grounded on the teacher's pkg/server
// (gin.Default() + gin-contrib/cors, one handler per endpoint family).
package server

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"

	"github.com/lucasduport/iptv-aggregator/pkg/catalog"
	"github.com/lucasduport/iptv-aggregator/pkg/config"
	"github.com/lucasduport/iptv-aggregator/pkg/fetcher"
	"github.com/lucasduport/iptv-aggregator/pkg/playlist"
	"github.com/lucasduport/iptv-aggregator/pkg/scheduler"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
	"github.com/lucasduport/iptv-aggregator/pkg/xtream"
)

// Server wires the Catalog Service, Xtream Service and Scheduler behind the
// gin router. It holds no state of its own beyond what it needs to route.
type Server struct {
	cfg           *config.Config
	catalog       *catalog.Service
	xtream        *xtream.Service
	scheduler     *scheduler.Scheduler
	sharedFetcher *fetcher.Fetcher
}

// New builds a Server over already-constructed services.
func New(cfg *config.Config, catalogSvc *catalog.Service, xtreamSvc *xtream.Service, sched *scheduler.Scheduler, f *fetcher.Fetcher) *Server {
	return &Server{cfg: cfg, catalog: catalogSvc, xtream: xtreamSvc, scheduler: sched, sharedFetcher: f}
}

// requestID mints a per-request correlation id (§"AMBIENT STACK" request
// correlation, extending the teacher's one-off UUID use into a general
// convention), stores it in the gin context under "request_id" and echoes
// it in the X-Request-Id response header. Log lines do not carry it.
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := uuid.NewV4().String()
		ctx.Set("request_id", id)
		ctx.Header("X-Request-Id", id)
		ctx.Next()
	}
}

// Router builds the gin engine with every route from §6 registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(requestID())

	s.registerAdminRoutes(r)
	s.registerPlaylistRoutes(r)
	s.registerProxyRoutes(r)
	if s.cfg.XtreamEnabled {
		s.registerXtreamRoutes(r)
	}

	return r
}

// Run starts the Scheduler's background jobs (§4.6) and listens on the
// configured port (§6 `port`), blocking until the HTTP server exits.
func (s *Server) Run() error {
	schedCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.scheduler.Start(schedCtx)

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	utils.InfoLog("http surface listening on %s", addr)
	return s.Router().Run(addr)
}

// ingestConfig builds the §4.3 IngestConfig from process configuration for
// the admin routes (cmd/root.go builds the Scheduler's own copy).
func ingestConfig(cfg *config.Config) catalog.IngestConfig {
	ic := catalog.IngestConfig{GroupExcludes: cfg.GroupExcludes}
	if cfg.XtreamEnabled {
		ic.Xtream = &playlist.XtreamConfig{
			BaseDomain: cfg.XtreamBaseDomain,
			Username:   cfg.XtreamUsername,
			Password:   cfg.XtreamPassword,
		}
	}
	return ic
}

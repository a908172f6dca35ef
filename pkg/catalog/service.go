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

// Package catalog is the Catalog Service (§4.3): ingest, rehydrate, delete
// and refresh Providers, grounded on the teacher's pkg/server admin handlers
// (fetch, parse, persist) generalized over the new transactional Store.
package catalog

import (
	"context"
	"database/sql"
	"io"
	"net/url"

	"github.com/lucasduport/iptv-aggregator/pkg/database"
	"github.com/lucasduport/iptv-aggregator/pkg/fetcher"
	"github.com/lucasduport/iptv-aggregator/pkg/models"
	"github.com/lucasduport/iptv-aggregator/pkg/playlist"
	"github.com/lucasduport/iptv-aggregator/pkg/utils"
)

// Service is the Catalog Service.
type Service struct {
	store   *database.Store
	fetcher *fetcher.Fetcher
}

// New builds a Catalog Service over a Store and an Upstream Fetcher.
func New(store *database.Store, f *fetcher.Fetcher) *Service {
	return &Service{store: store, fetcher: f}
}

// IngestConfig carries the parse/enrichment knobs for one ingest (§4.2, §4.3).
type IngestConfig struct {
	GroupExcludes []string
	Xtream        *playlist.XtreamConfig // nil disables category enrichment
}

// CreateProvider fetches the M3U at source, parses it, and in a single
// transaction inserts Provider -> M3u -> ExtInfs (with Attributes) -> Groups.
func (s *Service) CreateProvider(ctx context.Context, source string, cfg IngestConfig) (uint64, error) {
	resp, err := s.fetcher.Get(ctx, source)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &fetcher.UpstreamUnreachable{Err: err}
	}

	parsed := playlist.Parse(string(body), playlist.ParseOptions{GroupExcludes: cfg.GroupExcludes})

	if cfg.Xtream != nil {
		playlist.EnrichWithXtreamCategories(ctx, s.fetcher, *cfg.Xtream, parsed.Groups)
	}

	domain, port := domainAndPort(source)

	var providerID uint64
	err = s.store.WithTx(ctx, func(tx *sql.Tx) error {
		providerID, err = database.InsertProvider(ctx, tx, models.Provider{
			Source:        source,
			GroupsCount:   len(parsed.Groups),
			ChannelsCount: len(parsed.ExtInfs),
		})
		if err != nil {
			return err
		}

		m3uID, err := database.InsertM3u(ctx, tx, models.M3u{ProviderID: providerID, Domain: domain, Port: port})
		if err != nil {
			return err
		}

		for _, e := range parsed.ExtInfs {
			e.M3uID = m3uID
			extinfID, err := database.InsertExtInf(ctx, tx, e)
			if err != nil {
				return err
			}
			for _, a := range e.Attributes {
				a.ExtInfID = extinfID
				if _, err := database.InsertAttribute(ctx, tx, a); err != nil {
					return err
				}
			}
		}

		for _, g := range parsed.Groups {
			g.M3uID = m3uID
			if _, err := database.InsertGroup(ctx, tx, g); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	utils.InfoLog("ingested provider %d from %s: %d channels, %d groups", providerID, source, len(parsed.ExtInfs), len(parsed.Groups))
	return providerID, nil
}

// GetProvider rehydrates the full ProviderDTO in one transaction: the
// provider, its latest m3u, that m3u's extinfs, and all their attributes
// loaded in one batched query (§4.3).
func (s *Service) GetProvider(ctx context.Context, id uint64) (models.ProviderDTO, error) {
	var dto models.ProviderDTO

	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		p, err := database.GetProvider(ctx, tx, id)
		if err != nil {
			return err
		}
		dto.Provider = p

		m3u, err := database.GetLatestM3uByProvider(ctx, tx, id)
		if err != nil {
			return err
		}
		dto.M3u = m3u

		extinfs, err := database.ListExtInfsByM3u(ctx, tx, m3u.ID)
		if err != nil {
			return err
		}

		attrsByExtInf, err := database.ListAttributesByM3u(ctx, tx, m3u.ID)
		if err != nil {
			return err
		}
		for i := range extinfs {
			extinfs[i].Attributes = attrsByExtInf[extinfs[i].ID]
		}
		dto.ExtInfs = extinfs

		return nil
	})

	return dto, err
}

// DeleteProvider cascade-deletes a provider and everything it owns (§3
// Ownership) in a single transaction.
func (s *Service) DeleteProvider(ctx context.Context, id uint64) error {
	return s.store.WithTx(ctx, func(tx *sql.Tx) error {
		m3u, err := database.GetLatestM3uByProvider(ctx, tx, id)
		if err != nil && err != database.ErrNotFound {
			return err
		}
		if err == nil {
			if err := database.DeleteAttributesByM3u(ctx, tx, m3u.ID); err != nil {
				return err
			}
			if err := database.DeleteExtInfsByM3u(ctx, tx, m3u.ID); err != nil {
				return err
			}
			if err := database.DeleteGroupsByM3u(ctx, tx, m3u.ID); err != nil {
				return err
			}
			if err := database.DeleteXtreamUrlsByM3u(ctx, tx, m3u.ID); err != nil {
				return err
			}
		}
		if err := database.DeleteM3usByProvider(ctx, tx, id); err != nil {
			return err
		}
		return database.DeleteProvider(ctx, tx, id)
	})
}

// RefreshProviders re-ingests every known Provider's stored source. Each
// provider's failure is independent: no cross-provider rollback (§4.3).
func (s *Service) RefreshProviders(ctx context.Context, cfg IngestConfig) {
	providers, err := database.ListProviders(ctx, s.store.DB())
	if err != nil {
		utils.ErrorLog("refresh providers: failed to list providers: %v", err)
		return
	}

	for _, p := range providers {
		if _, err := s.CreateProvider(ctx, p.Source, cfg); err != nil {
			utils.ErrorLog("refresh providers: failed to refresh %s: %v", p.Source, err)
		}
	}
}

// GetLatestProviderEntry returns the newest Provider row for sourceURL, or
// database.ErrNotFound.
func (s *Service) GetLatestProviderEntry(ctx context.Context, sourceURL string) (models.Provider, error) {
	return database.GetLatestProviderBySource(ctx, s.store.DB(), sourceURL)
}

// ListProviders returns every Provider snapshot, oldest first. Used by the
// admin index route and the Scheduler's obsolete-version purge (§4.6).
func (s *Service) ListProviders(ctx context.Context) ([]models.Provider, error) {
	return database.ListProviders(ctx, s.store.DB())
}

// GetExcludeEligibleByM3uId returns the track_ids to drop from stream
// listings for m3uID/prefix (§4.4 stream-list filtering).
func (s *Service) GetExcludeEligibleByM3uId(ctx context.Context, m3uID uint64, prefix string) ([]string, error) {
	return database.ListExcludeEligibleTrackIDs(ctx, s.store.DB(), m3uID, prefix)
}

// GetLatestM3u resolves sourceURL to its newest Provider, then that
// Provider's newest M3u version — the (domain, port, id) triple the Xtream
// Service needs to reconstruct upstream streaming URLs (§4.4.4).
func (s *Service) GetLatestM3u(ctx context.Context, sourceURL string) (models.M3u, error) {
	p, err := database.GetLatestProviderBySource(ctx, s.store.DB(), sourceURL)
	if err != nil {
		return models.M3u{}, err
	}
	return database.GetLatestM3uByProvider(ctx, s.store.DB(), p.ID)
}

// ListGroups returns every Group for one playlist version, used by the
// Xtream Service's category-retention and series-exclusion filters (§4.4.2).
func (s *Service) ListGroups(ctx context.Context, m3uID uint64) ([]models.Group, error) {
	return database.ListGroupsByM3u(ctx, s.store.DB(), m3uID)
}

// InsertXtreamUrl records an opaque id -> original URL mapping discovered
// during deep JSON proxification (§4.4.5).
func (s *Service) InsertXtreamUrl(ctx context.Context, m3uID uint64, url string) (uint64, error) {
	return database.InsertXtreamUrl(ctx, s.store.DB(), m3uID, url)
}

// GetXtreamUrl resolves an opaque id back to its original URL for the
// `/url/{id}` proxy lookup.
func (s *Service) GetXtreamUrl(ctx context.Context, id uint64) (string, error) {
	return database.GetXtreamUrl(ctx, s.store.DB(), id)
}

// PinHlsOrigin truncates and replaces the single pinned HLS origin (§4.4.4
// PersistFinalResponseUrl: truncate-then-insert semantics).
func (s *Service) PinHlsOrigin(ctx context.Context, originURL string) error {
	_, err := database.PinHlsUrl(ctx, s.store.DB(), originURL)
	return err
}

// GetPinnedHlsOrigin returns the currently pinned HLS origin.
func (s *Service) GetPinnedHlsOrigin(ctx context.Context) (string, error) {
	return database.GetPinnedHlsUrl(ctx, s.store.DB())
}

// GetExtInf fetches one channel entry by id, used by the `/stream/{id}`
// proxy endpoint (§4.5 custom variant).
func (s *Service) GetExtInf(ctx context.Context, id uint64) (models.ExtInf, error) {
	return database.GetExtInf(ctx, s.store.DB(), id)
}

// GetAttribute fetches one attribute by id, used by the `/attr/{id}` proxy
// endpoint.
func (s *Service) GetAttribute(ctx context.Context, id uint64) (models.Attribute, error) {
	return database.GetAttribute(ctx, s.store.DB(), id)
}

// InsertXmltvUrl records an opaque id -> original XMLTV icon URL mapping.
func (s *Service) InsertXmltvUrl(ctx context.Context, url string) (uint64, error) {
	return database.InsertXmltvUrl(ctx, s.store.DB(), url)
}

// GetXmltvUrl resolves an opaque id back to its original URL for the
// `/xmltv/{id}` proxy lookup.
func (s *Service) GetXmltvUrl(ctx context.Context, id uint64) (string, error) {
	return database.GetXmltvUrl(ctx, s.store.DB(), id)
}

// domainAndPort splits a source URL's host into domain and port, used to
// reconstruct Xtream streaming URLs without a second round-trip (§4.4.4).
func domainAndPort(source string) (domain, port string) {
	u, err := url.Parse(source)
	if err != nil {
		return "", ""
	}
	return u.Hostname(), u.Port()
}

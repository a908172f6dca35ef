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
)

// Xmltv forwards xmltv.php to the upstream verbatim (§4.4.1: body forwarded
// unchanged; icon URL proxification is future work per the spec, left
// unimplemented here rather than half-built).
func (s *Service) Xmltv(ctx context.Context) ([]byte, error) {
	u := fmt.Sprintf("http://%s/xmltv.php?username=%s&password=%s", s.cfg.BaseDomain, s.cfg.Username, s.cfg.Password)
	return s.fetchUpstream(ctx, u)
}

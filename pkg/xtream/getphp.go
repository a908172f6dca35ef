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
	"errors"
	"fmt"
	"net/url"
)

// ErrUnsupportedOutput marks get.php?type=…&output=… combinations other
// than m3u8/ts/rmtp (§4.4.1, §8 boundary behavior: get.php?type=m3u_plus&
// output=xml -> 500 "only m3u8, ts or rmtm supported").
var ErrUnsupportedOutput = errors.New("only m3u8, ts or rmtm supported")

var supportedOutputs = map[string]bool{"m3u8": true, "ts": true, "rmtp": true}

// ValidateGetPhpOutput enforces the get.php?type=m3u_plus&output={…}
// contract (§4.4.1, §8): any other type/output combination is rejected.
func ValidateGetPhpOutput(typ, output string) error {
	if typ != "m3u_plus" {
		return ErrUnsupportedOutput
	}
	if !supportedOutputs[output] {
		return ErrUnsupportedOutput
	}
	return nil
}

// GetAuto computes the SUPPLEMENTED FEATURES #2 auto-forward query: when
// clientQuery carries nothing beyond credentials, it returns the configured
// m3u source URL's query params (minus username/password) merged with the
// client's own; a larger clientQuery is returned unchanged. The get.php
// handler uses only its error. Grounded on the teacher's xtreamGetAuto.
func GetAuto(sourceM3U string, clientQuery url.Values) (url.Values, error) {
	u, err := url.Parse(sourceM3U)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if len(clientQuery) > 2 { // more than just username/password: respect it
		return clientQuery, nil
	}

	forwarded := u.Query()
	forwarded.Del("username")
	forwarded.Del("password")
	for k, v := range clientQuery {
		forwarded[k] = v
	}
	return forwarded, nil
}

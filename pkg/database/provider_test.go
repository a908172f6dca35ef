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

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lucasduport/iptv-aggregator/pkg/models"
)

func TestInsertProvider(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO providers").
		WithArgs("acme", "http://acme.example/get.php", 3, 42).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := InsertProvider(context.Background(), db, models.Provider{
		Name: "acme", Source: "http://acme.example/get.php", GroupsCount: 3, ChannelsCount: 42,
	})
	if err != nil {
		t.Fatalf("InsertProvider() error = %v", err)
	}
	if id != 7 {
		t.Errorf("InsertProvider() id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetProvider(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, .* FROM providers WHERE id = ").
					WithArgs(uint64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "source", "groups_count", "channels_count", "created_at", "modified_at"}).
						AddRow(uint64(1), "acme", "http://acme.example/get.php", 2, 10, time.Now(), time.Now()))
			},
		},
		{
			name: "missing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, .* FROM providers WHERE id = ").
					WithArgs(uint64(99)).
					WillReturnError(errors.New("ignored"))
			},
			wantErr: errors.New("ignored"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New() error = %v", err)
			}
			defer db.Close()

			tt.setup(mock)

			id := uint64(1)
			if tt.wantErr != nil {
				id = 99
			}
			_, err = GetProvider(context.Background(), db, id)
			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("GetProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetLatestProviderBySourceNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, .* FROM providers WHERE source = ").
		WithArgs("http://nothing.example/get.php").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "source", "groups_count", "channels_count", "created_at", "modified_at"}))

	_, err = GetLatestProviderBySource(context.Background(), db, "http://nothing.example/get.php")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLatestProviderBySource() error = %v, want ErrNotFound", err)
	}
}

// Copyright (C) 2023 Tim Bastin, l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package repositories

import (
	"context"

	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepository[ID comparable, T utils.Tabler] struct {
	db *gorm.DB
}

func newGormRepository[ID comparable, T utils.Tabler](db *gorm.DB) *GormRepository[ID, T] {
	return &GormRepository[ID, T]{
		db: db,
	}
}

func (g *GormRepository[ID, T]) GetDB(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return g.db.WithContext(ctx)
}

func (g *GormRepository[ID, T]) Create(ctx context.Context, tx *gorm.DB, t *T) error {
	return g.GetDB(ctx, tx).Create(t).Error
}

// Upsert inserts t or updates the given columns on conflict. Associations are not written.
func (g *GormRepository[ID, T]) Upsert(ctx context.Context, tx *gorm.DB, t *T, conflictingColumns []clause.Column, updateOnly []string) error {
	if len(updateOnly) > 0 {
		return g.GetDB(ctx, tx).Omit(clause.Associations).Clauses(clause.OnConflict{
			DoUpdates: clause.AssignmentColumns(updateOnly),
			Columns:   conflictingColumns,
		}).Create(t).Error
	}
	return g.GetDB(ctx, tx).Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true, Columns: conflictingColumns}).Create(t).Error
}

// ReadBy returns the first row matching the condition. A missing row is reported as shared.ErrNotFound.
func (g *GormRepository[ID, T]) ReadBy(ctx context.Context, query string, args ...any) (T, error) {
	var t T
	err := g.db.WithContext(ctx).Where(query, args...).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, errors.Wrap(shared.ErrNotFound, t.TableName())
	}
	return t, err
}

func (g *GormRepository[ID, T]) Read(ctx context.Context, id ID) (T, error) {
	return g.ReadBy(ctx, "id = ?", id)
}

// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/user"
)

type Repository interface {
	ListActive(ctx context.Context) ([]Package, error)
	ListByAgeGroup(
		ctx context.Context,
		ageGroup user.AgeGroup,
	) ([]Package, error)
	GetByID(ctx context.Context, id string) (*Package, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const packageColumns = `
	id, category, level, age_group, price_amount, price_currency,
	original_price_amount, duration, features, is_popular, is_active,
	created_at`

// Catalog ordering is bracket first, then tier, so the storefront
// renders deterministically without client-side sorting.
const packageOrdering = `
	ORDER BY
		CASE age_group
			WHEN 'MIDDLE' THEN 1
			WHEN 'HIGH' THEN 2
			ELSE 3
		END,
		CASE level
			WHEN 'BASIC' THEN 1
			WHEN 'PLUS' THEN 2
			ELSE 3
		END`

func (r *repository) ListActive(ctx context.Context) ([]Package, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM packages
		WHERE is_active = TRUE
		%s`, packageColumns, packageOrdering)

	var packages []Package
	if err := r.db.SelectContext(ctx, &packages, query); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	return packages, nil
}

func (r *repository) ListByAgeGroup(
	ctx context.Context,
	ageGroup user.AgeGroup,
) ([]Package, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM packages
		WHERE is_active = TRUE AND age_group = $1
		%s`, packageColumns, packageOrdering)

	var packages []Package
	if err := r.db.SelectContext(ctx, &packages, query, ageGroup); err != nil {
		return nil, fmt.Errorf("list packages by age group: %w", err)
	}

	return packages, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Package, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM packages
		WHERE id = $1 AND is_active = TRUE`, packageColumns)

	var pkg Package
	err := r.db.GetContext(ctx, &pkg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get package: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}

	return &pkg, nil
}

package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_intake/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepository {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepository = (*PgxCategoryRepository)(nil)

// AddCustomCategory adds a category to the organization's vocabulary. Adding
// a name that already exists, in any letter case, is a no-op.
func (r *PgxCategoryRepository) AddCustomCategory(ctx context.Context, orgID, userID, name string) error {
	query := `
		INSERT INTO categories (category_id, org_id, name, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, query, uuid.NewString(), orgID, name, time.Now().UTC(), userID); err != nil {
		return apperrors.NewAppError(500, "failed to add category "+name, err)
	}
	return nil
}

// ListCategories returns the built-in categories plus the organization's own.
func (r *PgxCategoryRepository) ListCategories(ctx context.Context, orgID string) ([]string, error) {
	query := `
		SELECT name FROM categories
		WHERE org_id IS NULL OR org_id = $1
		ORDER BY org_id NULLS FIRST, name;
	`
	rows, err := r.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list categories", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan category", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate categories", err)
	}
	return names, nil
}

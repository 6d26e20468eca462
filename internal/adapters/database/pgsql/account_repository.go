package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_intake/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_intake/internal/models"
	"github.com/SscSPs/ledger_intake/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for the chart of accounts.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, org_id, name, account_type, is_active, created_at, created_by`

func scanAccounts(rows pgx.Rows) ([]models.Account, error) {
	defer rows.Close()
	var accounts []models.Account
	for rows.Next() {
		var acc models.Account
		if err := rows.Scan(
			&acc.AccountID,
			&acc.OrgID,
			&acc.Name,
			&acc.AccountType,
			&acc.IsActive,
			&acc.CreatedAt,
			&acc.CreatedBy,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// ListAccounts returns the organization's accounts ordered by name.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, orgID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE org_id = $1 ORDER BY name;`
	rows, err := r.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan accounts", err)
	}
	return mapping.ToDomainAccountSlice(accounts), nil
}

// FindAccountsByIDs returns the requested accounts keyed by ID. Missing IDs are
// simply absent from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, orgID string, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE org_id = $1 AND account_id = ANY($2);`
	rows, err := r.Pool.Query(ctx, query, orgID, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find %d accounts", len(accountIDs)), err)
	}
	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan accounts", err)
	}
	for _, acc := range accounts {
		out[acc.AccountID] = mapping.ToDomainAccount(acc)
	}
	return out, nil
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_intake/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_intake/internal/models"
	"github.com/SscSPs/ledger_intake/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for submitted transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// SaveTransaction inserts the transaction, its line items and its journal
// lines within one DB transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	return r.inTx(ctx, "save transaction "+m.TransactionID, func(tx pgx.Tx) error {
		txnQuery := `
			INSERT INTO transactions (
				transaction_id, org_id, title, description, note, amount, transaction_date,
				category, direction, is_business, entry_mode, debit_account_id, credit_account_id,
				ai_assisted, status, line_items_total, mismatch_transaction_total, mismatch_difference,
				created_at, created_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
		`
		_, err := tx.Exec(ctx, txnQuery,
			m.TransactionID,
			m.OrgID,
			m.Title,
			m.Description,
			m.Note,
			m.Amount,
			m.TransactionDate,
			m.Category,
			m.Direction,
			m.IsBusiness,
			m.EntryMode,
			m.DebitAccountID,
			m.CreditAccountID,
			m.AIAssisted,
			m.Status,
			m.LineItemsTotal,
			m.MismatchTotal,
			m.MismatchDiff,
			m.CreatedAt,
			m.CreatedBy,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
		}

		batch := &pgx.Batch{}
		itemQuery := `
			INSERT INTO transaction_line_items (line_item_id, transaction_id, position, description, category, amount, tax, tip, debit_account_id, credit_account_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
		`
		for _, item := range mapping.ToModelLineItems(txn.TransactionID, txn.Submission.LineItems) {
			batch.Queue(itemQuery,
				item.LineItemID,
				item.TransactionID,
				item.Position,
				item.Description,
				item.Category,
				item.Amount,
				item.Tax,
				item.Tip,
				item.DebitAccountID,
				item.CreditAccountID,
			)
		}
		lineQuery := `
			INSERT INTO journal_lines (line_id, transaction_id, account_id, amount, transaction_type, memo)
			VALUES ($1, $2, $3, $4, $5, $6);
		`
		for _, l := range txn.Lines {
			line := mapping.ToModelJournalLine(txn.TransactionID, l)
			batch.Queue(lineQuery,
				line.LineID,
				line.TransactionID,
				line.AccountID,
				line.Amount,
				line.TransactionType,
				line.Memo,
			)
		}
		if batch.Len() > 0 {
			br := tx.SendBatch(ctx, batch)
			if err := br.Close(); err != nil {
				return apperrors.NewAppError(500, "failed to insert line items for transaction "+m.TransactionID, err)
			}
		}

		return nil
	})
}

const transactionColumns = `
	transaction_id, org_id, title, description, note, amount, transaction_date,
	category, direction, is_business, entry_mode, debit_account_id, credit_account_id,
	ai_assisted, status, line_items_total, mismatch_transaction_total, mismatch_difference,
	created_at, created_by`

func scanTransaction(row pgx.Row, m *models.Transaction) error {
	return row.Scan(
		&m.TransactionID,
		&m.OrgID,
		&m.Title,
		&m.Description,
		&m.Note,
		&m.Amount,
		&m.TransactionDate,
		&m.Category,
		&m.Direction,
		&m.IsBusiness,
		&m.EntryMode,
		&m.DebitAccountID,
		&m.CreditAccountID,
		&m.AIAssisted,
		&m.Status,
		&m.LineItemsTotal,
		&m.MismatchTotal,
		&m.MismatchDiff,
		&m.CreatedAt,
		&m.CreatedBy,
	)
}

// FindTransactionByID loads a transaction with its line items and journal lines.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, orgID, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE org_id = $1 AND transaction_id = $2;`
	var m models.Transaction
	if err := scanTransaction(r.Pool.QueryRow(ctx, query, orgID, transactionID), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}

	items, err := r.findLineItems(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	lines, err := r.findJournalLines(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	txn := mapping.ToDomainTransaction(m, items, lines)
	return &txn, nil
}

func (r *PgxTransactionRepository) findLineItems(ctx context.Context, transactionID string) ([]models.LineItem, error) {
	query := `
		SELECT line_item_id, transaction_id, position, description, category, amount, tax, tip, debit_account_id, credit_account_id
		FROM transaction_line_items
		WHERE transaction_id = $1
		ORDER BY position;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list line items", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var it models.LineItem
		if err := rows.Scan(
			&it.LineItemID,
			&it.TransactionID,
			&it.Position,
			&it.Description,
			&it.Category,
			&it.Amount,
			&it.Tax,
			&it.Tip,
			&it.DebitAccountID,
			&it.CreditAccountID,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate line items", err)
	}
	return items, nil
}

func (r *PgxTransactionRepository) findJournalLines(ctx context.Context, transactionID string) ([]models.JournalLine, error) {
	query := `
		SELECT line_id, transaction_id, account_id, amount, transaction_type, memo
		FROM journal_lines
		WHERE transaction_id = $1
		ORDER BY transaction_type DESC, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list journal lines", err)
	}
	defer rows.Close()

	var lines []models.JournalLine
	for rows.Next() {
		var l models.JournalLine
		if err := rows.Scan(&l.LineID, &l.TransactionID, &l.AccountID, &l.Amount, &l.TransactionType, &l.Memo); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate journal lines", err)
	}
	return lines, nil
}

// EnqueueProcessing records a post-processing request. A transaction already
// queued keeps its original request time.
func (r *PgxTransactionRepository) EnqueueProcessing(ctx context.Context, orgID, transactionID string, requestedAt time.Time) error {
	query := `
		INSERT INTO transaction_processing_queue (transaction_id, org_id, requested_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (transaction_id) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, query, transactionID, orgID, requestedAt); err != nil {
		return apperrors.NewAppError(500, "failed to enqueue transaction "+transactionID, err)
	}
	return nil
}

// ListTransactionsSince returns the org's transactions dated on or after since.
func (r *PgxTransactionRepository) ListTransactionsSince(ctx context.Context, orgID string, since time.Time) ([]domain.StoredTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE org_id = $1 AND transaction_date >= $2 ORDER BY transaction_date DESC;`
	rows, err := r.Pool.Query(ctx, query, orgID, since)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list recent transactions", err)
	}
	defer rows.Close()

	var out []domain.StoredTransaction
	for rows.Next() {
		var m models.Transaction
		if err := scanTransaction(rows, &m); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction", err)
		}
		out = append(out, mapping.ToDomainStoredTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate transactions", err)
	}
	return out, nil
}

// FindSimilar returns categorized transactions whose title or description
// contains the query merchant, newest first.
func (r *PgxTransactionRepository) FindSimilar(ctx context.Context, orgID string, query domain.SimilarQuery) ([]domain.SimilarTransaction, error) {
	needle := strings.TrimSpace(query.Merchant)
	if needle == "" {
		needle = strings.TrimSpace(query.Description)
	}
	if needle == "" {
		return nil, nil
	}
	sqlQuery := `
		SELECT transaction_id, title, category
		FROM transactions
		WHERE org_id = $1
		  AND category <> ''
		  AND (title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, sqlQuery, orgID, escapeLike(needle), query.Limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find transactions similar to %q", needle), err)
	}
	defer rows.Close()

	var out []domain.SimilarTransaction
	for rows.Next() {
		var id, title, category string
		if err := rows.Scan(&id, &title, &category); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan similar transaction", err)
		}
		out = append(out, domain.SimilarTransaction{
			TransactionID: id,
			Categories:    []string{category},
			CategoryName:  category,
			Merchant:      title,
			MerchantName:  title,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate similar transactions", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

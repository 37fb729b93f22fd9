package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Redwolfc4/nusantarago-backend/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const accountColumns = "account_id, username, email, password_hash, verified, " +
	"otp_code, otp_created_at, otp_expires_at, created_at, updated_at"

// updatable maps the field names accepted by UpdateFields to columns.
var updatable = map[string]string{
	domain.FieldUsername:     "username",
	domain.FieldPasswordHash: "password_hash",
	domain.FieldVerified:     "verified",
	domain.FieldOTPCode:      "otp_code",
	domain.FieldOTPCreatedAt: "otp_created_at",
	domain.FieldOTPExpiresAt: "otp_expires_at",
}

// AccountRepo stores accounts in the accounts table created by the embedded migrations.
type AccountRepo struct {
	pool pool
	now  func() time.Time
}

func NewAccountRepo(p pool) *AccountRepo {
	return &AccountRepo{pool: p, now: time.Now}
}

func (r *AccountRepo) Insert(ctx context.Context, a *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.AccountID, a.Username, a.Email, a.PasswordHash, a.Verified,
		a.OTPCode, a.OTPCreatedAt, a.OTPExpiresAt, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", a.Email, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// FindByUsername returns the verified owner of username if there is one,
// otherwise the oldest pending record holding it.
func (r *AccountRepo) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE username = $1 ORDER BY verified DESC, created_at ASC LIMIT 1`, username)
	return scanAccount(row)
}

func (r *AccountRepo) CountByUsername(ctx context.Context, username string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM accounts WHERE username = $1`, username).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// UpdateFields applies fields to the record selected by match and reports the
// number of modified rows. A nil value stores NULL.
func (r *AccountRepo) UpdateFields(ctx context.Context, match domain.AccountMatch, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, errors.New("no fields to update")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := updatable[k]; !ok {
			return 0, fmt.Errorf("field %q is not updatable", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+3)
	for _, k := range keys {
		args = append(args, fields[k])
		sets = append(sets, fmt.Sprintf("%s = $%d", updatable[k], len(args)))
	}
	args = append(args, r.now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, match.Email)
	where := fmt.Sprintf("email = $%d", len(args))
	if match.Verified != nil {
		args = append(args, *match.Verified)
		where += fmt.Sprintf(" AND verified = $%d", len(args))
	}

	tag, err := r.pool.Exec(ctx, "UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE "+where, args...)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("update account %s: %w", match.Email, domain.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("update account: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *AccountRepo) Delete(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.AccountID, &a.Username, &a.Email, &a.PasswordHash, &a.Verified,
		&a.OTPCode, &a.OTPCreatedAt, &a.OTPExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
)

const identityColumns = `id, username, display_name, role, active, secret_hash, created_at, created_by`

// IdentityRepository handles identity directory database operations
type IdentityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *sql.DB, logger *zap.Logger) *IdentityRepository {
	return &IdentityRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new identity and assigns its ID
func (r *IdentityRepository) Create(identity *entity.Identity) error {
	query := `
		INSERT INTO identities (username, display_name, role, active, secret_hash, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		identity.Username,
		identity.DisplayName,
		identity.Role.String(),
		identity.Active,
		identity.SecretHash,
		identity.CreatedBy,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", ErrDuplicateUsername, identity.Username)
		}
		r.logger.Error("Failed to create identity", zap.String("username", identity.Username), zap.Error(err))
		return fmt.Errorf("failed to create identity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	identity.ID = id
	return nil
}

// GetByUsername retrieves an identity by username
func (r *IdentityRepository) GetByUsername(username string) (*entity.Identity, error) {
	query := fmt.Sprintf("SELECT %s FROM identities WHERE username = ?", identityColumns)

	identity, err := scanIdentity(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: identity %s", ErrNotFound, username)
	}
	if err != nil {
		r.logger.Error("Failed to get identity", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return identity, nil
}

// ListByRole retrieves active identities holding the given role,
// ordered by display name
func (r *IdentityRepository) ListByRole(role entity.Role) ([]*entity.Identity, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM identities WHERE role = ? AND active = 1 ORDER BY display_name",
		identityColumns)

	rows, err := r.db.Query(query, role.String())
	if err != nil {
		r.logger.Error("Failed to list identities", zap.String("role", role.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var identities []*entity.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

// CountByRole returns the number of identities holding the role,
// active or not
func (r *IdentityRepository) CountByRole(role entity.Role) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM identities WHERE role = ?", role.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count identities: %w", err)
	}
	return count, nil
}

// SetActive updates the active flag
func (r *IdentityRepository) SetActive(username string, active bool) error {
	result, err := r.db.Exec("UPDATE identities SET active = ? WHERE username = ?", active, username)
	if err != nil {
		r.logger.Error("Failed to set active flag", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	return requireAffected(result, username)
}

// UpdateSecretHash replaces the stored secret hash
func (r *IdentityRepository) UpdateSecretHash(username, secretHash string) error {
	result, err := r.db.Exec("UPDATE identities SET secret_hash = ? WHERE username = ?", secretHash, username)
	if err != nil {
		r.logger.Error("Failed to update secret hash", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("failed to update secret hash: %w", err)
	}
	return requireAffected(result, username)
}

func requireAffected(result sql.Result, username string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: identity %s", ErrNotFound, username)
	}
	return nil
}

func scanIdentity(row rowScanner) (*entity.Identity, error) {
	var identity entity.Identity
	var role string

	err := row.Scan(
		&identity.ID,
		&identity.Username,
		&identity.DisplayName,
		&role,
		&identity.Active,
		&identity.SecretHash,
		&identity.CreatedAt,
		&identity.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	identity.Role = entity.Role(role)
	return &identity, nil
}

package mysql

import (
	"context"
	"database/sql"
	"errors"

	"auction-realtime/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLUserRepository is the user directory consulted during
// authentication.
type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) FindActiveUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT id, is_active FROM users WHERE id = ?`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&user.ID, &user.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

package mysql

import (
	"context"
	"database/sql"
	"errors"

	"auction-realtime/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLProductRepository is the auction read model used to build join
// snapshots. Reads go straight to the database so snapshots always
// reflect current auction state.
type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) FindAuction(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
        SELECT id, title, auction_status, current_bid, bid_count, end_time
        FROM products WHERE id = ?
    `

	var product domain.Product
	var status string
	var endTime sql.NullTime

	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ID, &product.Title, &status,
		&product.CurrentBid, &product.BidCount, &endTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	product.AuctionStatus = domain.AuctionStatus(status)
	if endTime.Valid {
		product.EndTime = &endTime.Time
	}
	return &product, nil
}

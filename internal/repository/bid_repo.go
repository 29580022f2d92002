package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/procurelink/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidRepository is the store boundary for bids. AwardRFQ spans the bid and rfq
// tables because the award decision is one transaction over the whole aggregate.
type BidRepository interface {
	CreateBid(ctx context.Context, bid *models.Bid) error
	GetBid(ctx context.Context, bidID string) (*models.Bid, error)
	GetRFQBids(ctx context.Context, rfqID string) ([]models.Bid, error)
	GetSellerBids(ctx context.Context, sellerID string, limit, offset int) ([]models.Bid, error)
	HasOpenBid(ctx context.Context, rfqID, sellerID string) (bool, error)
	UpdateBidStatus(ctx context.Context, bidID string, status models.BidStatus) (*models.Bid, error)
	AwardRFQ(ctx context.Context, rfqID, winningBidID string) (*models.AwardResult, error)
}

// PostgresBidRepository implements BidRepository against Postgres.
type PostgresBidRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresBidRepository creates a new PostgresBidRepository.
func NewPostgresBidRepository(db *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db}
}

const bidColumns = `id, rfq_id, seller_id, unit_price, total_amount, delivery_time, warranty,
	condition, notes, seller_is_smme, status, created_at`

func scanBid(row pgx.Row) (*models.Bid, error) {
	var bid models.Bid
	err := row.Scan(
		&bid.ID,
		&bid.RFQID,
		&bid.SellerID,
		&bid.UnitPrice,
		&bid.TotalAmount,
		&bid.DeliveryTime,
		&bid.Warranty,
		&bid.Condition,
		&bid.Notes,
		&bid.SellerIsSMME,
		&bid.Status,
		&bid.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// CreateBid inserts a new bid. A partial unique index on (rfq_id, seller_id)
// over non-withdrawn rows backstops the duplicate check under concurrency.
func (r *PostgresBidRepository) CreateBid(ctx context.Context, bid *models.Bid) error {
	insertQuery := `INSERT INTO bid (` + bidColumns + `)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		bid.ID,
		bid.RFQID,
		bid.SellerID,
		bid.UnitPrice,
		bid.TotalAmount,
		bid.DeliveryTime,
		bid.Warranty,
		bid.Condition,
		bid.Notes,
		bid.SellerIsSMME,
		bid.Status,
		bid.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.NewDuplicateBid("seller already has an open bid on this rfq")
		}
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

// GetBid returns one bid by ID.
func (r *PostgresBidRepository) GetBid(ctx context.Context, bidID string) (*models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE id = $1`
	bid, err := scanBid(r.DB.QueryRow(ctx, query, bidID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("bid not found")
	}
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// GetRFQBids returns all bids for an RFQ in submission order; bid ID breaks
// timestamp ties to keep the ordering deterministic.
func (r *PostgresBidRepository) GetRFQBids(ctx context.Context, rfqID string) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE rfq_id = $1 ORDER BY created_at, id`
	rows, err := r.DB.Query(ctx, query, rfqID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, rows.Err()
}

// GetSellerBids returns the bids submitted by one seller.
func (r *PostgresBidRepository) GetSellerBids(ctx context.Context, sellerID string, limit, offset int) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE seller_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, sellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, rows.Err()
}

// HasOpenBid reports whether the seller has a non-withdrawn bid on the RFQ.
func (r *PostgresBidRepository) HasOpenBid(ctx context.Context, rfqID, sellerID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bid WHERE rfq_id = $1 AND seller_id = $2 AND status <> $3)`
	err := r.DB.QueryRow(ctx, query, rfqID, sellerID, models.WithdrawnBid).Scan(&exists)
	return exists, err
}

// UpdateBidStatus sets a new status and returns the updated bid.
func (r *PostgresBidRepository) UpdateBidStatus(ctx context.Context, bidID string, status models.BidStatus) (*models.Bid, error) {
	updateQuery := `UPDATE bid SET status = $1 WHERE id = $2 RETURNING ` + bidColumns
	bid, err := scanBid(r.DB.QueryRow(ctx, updateQuery, status, bidID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("bid not found")
	}
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// AwardRFQ accepts the winning bid, rejects every other open bid and marks the
// RFQ awarded, all in one transaction. Any failure rolls the aggregate back.
func (r *PostgresBidRepository) AwardRFQ(ctx context.Context, rfqID, winningBidID string) (*models.AwardResult, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	acceptQuery := `UPDATE bid SET status = $1 WHERE id = $2 AND rfq_id = $3 AND status = $4
	                RETURNING ` + bidColumns
	winner, err := scanBid(tx.QueryRow(ctx, acceptQuery, models.AcceptedBid, winningBidID, rfqID, models.PendingBid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("pending bid not found for this rfq")
	}
	if err != nil {
		return nil, err
	}

	rejectQuery := `UPDATE bid SET status = $1 WHERE rfq_id = $2 AND status = $3
	                RETURNING id`
	rows, err := tx.Query(ctx, rejectQuery, models.RejectedBid, rfqID, models.PendingBid)
	if err != nil {
		return nil, err
	}
	var rejected []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		rejected = append(rejected, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	awardQuery := `UPDATE rfq SET status = $1 WHERE id = $2 AND status = $3 RETURNING ` + rfqColumns
	rfq, err := scanRFQ(tx.QueryRow(ctx, awardQuery, models.AwardedRFQ, rfqID, models.ActiveRFQ))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewInvalidTransition("rfq", "non-active", string(models.AwardedRFQ))
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &models.AwardResult{RFQ: rfq, WinningBid: winner, RejectedBids: rejected}, nil
}

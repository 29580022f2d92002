package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/procurelink/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// RFQRepository is the store boundary for RFQs.
type RFQRepository interface {
	CreateRFQ(ctx context.Context, rfq *models.RFQ) error
	GetRFQ(ctx context.Context, rfqID string) (*models.RFQ, error)
	GetRFQs(ctx context.Context, limit, offset int, statuses []string) ([]models.RFQ, error)
	GetBuyerRFQs(ctx context.Context, buyerID string, limit, offset int) ([]models.RFQ, error)
	UpdateRFQStatus(ctx context.Context, rfqID string, status models.RFQStatus) (*models.RFQ, error)
}

// PostgresRFQRepository implements RFQRepository against Postgres.
type PostgresRFQRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRFQRepository creates a new PostgresRFQRepository.
func NewPostgresRFQRepository(db *pgxpool.Pool) *PostgresRFQRepository {
	return &PostgresRFQRepository{DB: db}
}

const rfqColumns = `id, buyer_id, title, description, processor, ram, storage, display_size,
	delivery_location, quantity, min_budget, max_budget, closing_date, visibility, panel_id,
	smme_preference, smme_bonus_percent, status, created_at`

func scanRFQ(row pgx.Row) (*models.RFQ, error) {
	var rfq models.RFQ
	err := row.Scan(
		&rfq.ID,
		&rfq.BuyerID,
		&rfq.Title,
		&rfq.Description,
		&rfq.Processor,
		&rfq.RAM,
		&rfq.Storage,
		&rfq.DisplaySize,
		&rfq.DeliveryLocation,
		&rfq.Quantity,
		&rfq.MinBudget,
		&rfq.MaxBudget,
		&rfq.ClosingDate,
		&rfq.Visibility,
		&rfq.PanelID,
		&rfq.SMMEPreference,
		&rfq.SMMEBonusPercent,
		&rfq.Status,
		&rfq.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

// CreateRFQ inserts a new RFQ.
func (r *PostgresRFQRepository) CreateRFQ(ctx context.Context, rfq *models.RFQ) error {
	insertQuery := `INSERT INTO rfq (` + rfqColumns + `)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		rfq.ID,
		rfq.BuyerID,
		rfq.Title,
		rfq.Description,
		rfq.Processor,
		rfq.RAM,
		rfq.Storage,
		rfq.DisplaySize,
		rfq.DeliveryLocation,
		rfq.Quantity,
		rfq.MinBudget,
		rfq.MaxBudget,
		rfq.ClosingDate,
		rfq.Visibility,
		rfq.PanelID,
		rfq.SMMEPreference,
		rfq.SMMEBonusPercent,
		rfq.Status,
		rfq.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rfq: %w", err)
	}
	return nil
}

// GetRFQ returns one RFQ by ID.
func (r *PostgresRFQRepository) GetRFQ(ctx context.Context, rfqID string) (*models.RFQ, error) {
	query := `SELECT ` + rfqColumns + ` FROM rfq WHERE id = $1`
	rfq, err := scanRFQ(r.DB.QueryRow(ctx, query, rfqID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("rfq not found")
	}
	if err != nil {
		return nil, err
	}
	return rfq, nil
}

// GetRFQs returns RFQs, optionally filtered by status.
func (r *PostgresRFQRepository) GetRFQs(ctx context.Context, limit, offset int, statuses []string) ([]models.RFQ, error) {
	query := `SELECT ` + rfqColumns + ` FROM rfq`
	var args []interface{}
	argIndex := 1

	if len(statuses) > 0 {
		query += fmt.Sprintf(" WHERE status = ANY($%d)", argIndex)
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rfqs []models.RFQ
	for rows.Next() {
		rfq, err := scanRFQ(rows)
		if err != nil {
			return nil, err
		}
		rfqs = append(rfqs, *rfq)
	}
	return rfqs, rows.Err()
}

// GetBuyerRFQs returns the RFQs owned by one buyer.
func (r *PostgresRFQRepository) GetBuyerRFQs(ctx context.Context, buyerID string, limit, offset int) ([]models.RFQ, error) {
	query := `SELECT ` + rfqColumns + ` FROM rfq WHERE buyer_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, buyerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rfqs []models.RFQ
	for rows.Next() {
		rfq, err := scanRFQ(rows)
		if err != nil {
			return nil, err
		}
		rfqs = append(rfqs, *rfq)
	}
	return rfqs, rows.Err()
}

// UpdateRFQStatus sets a new status and returns the updated RFQ.
func (r *PostgresRFQRepository) UpdateRFQStatus(ctx context.Context, rfqID string, status models.RFQStatus) (*models.RFQ, error) {
	updateQuery := `UPDATE rfq SET status = $1 WHERE id = $2 RETURNING ` + rfqColumns
	rfq, err := scanRFQ(r.DB.QueryRow(ctx, updateQuery, status, rfqID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("rfq not found")
	}
	if err != nil {
		return nil, err
	}
	return rfq, nil
}

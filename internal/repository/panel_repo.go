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

// PanelRepository is the store boundary for panels and their membership.
type PanelRepository interface {
	CreatePanel(ctx context.Context, panel *models.Panel) error
	GetPanel(ctx context.Context, panelID string) (*models.Panel, error)
	GetBuyerPanels(ctx context.Context, buyerID string, limit, offset int) ([]models.Panel, error)
	AddMember(ctx context.Context, member *models.PanelMember) error
	GetMember(ctx context.Context, panelID, sellerID string) (*models.PanelMember, error)
	GetMembers(ctx context.Context, panelID string) ([]models.PanelMember, error)
	UpdateMemberStatus(ctx context.Context, panelID, sellerID string, status models.PanelMemberStatus) (*models.PanelMember, error)
	IsActiveMember(ctx context.Context, panelID, sellerID string) (bool, error)
}

// PostgresPanelRepository implements PanelRepository against Postgres.
type PostgresPanelRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresPanelRepository creates a new PostgresPanelRepository.
func NewPostgresPanelRepository(db *pgxpool.Pool) *PostgresPanelRepository {
	return &PostgresPanelRepository{DB: db}
}

// CreatePanel inserts a new panel.
func (r *PostgresPanelRepository) CreatePanel(ctx context.Context, panel *models.Panel) error {
	insertQuery := `INSERT INTO panel (id, buyer_id, name, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.DB.Exec(ctx, insertQuery, panel.ID, panel.BuyerID, panel.Name, panel.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert panel: %w", err)
	}
	return nil
}

// GetPanel returns one panel by ID.
func (r *PostgresPanelRepository) GetPanel(ctx context.Context, panelID string) (*models.Panel, error) {
	var panel models.Panel
	query := `SELECT id, buyer_id, name, created_at FROM panel WHERE id = $1`
	err := r.DB.QueryRow(ctx, query, panelID).Scan(&panel.ID, &panel.BuyerID, &panel.Name, &panel.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("panel not found")
	}
	if err != nil {
		return nil, err
	}
	return &panel, nil
}

// GetBuyerPanels returns the panels owned by one buyer.
func (r *PostgresPanelRepository) GetBuyerPanels(ctx context.Context, buyerID string, limit, offset int) ([]models.Panel, error) {
	query := `SELECT id, buyer_id, name, created_at FROM panel WHERE buyer_id = $1
	          ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, buyerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var panels []models.Panel
	for rows.Next() {
		var panel models.Panel
		if err := rows.Scan(&panel.ID, &panel.BuyerID, &panel.Name, &panel.CreatedAt); err != nil {
			return nil, err
		}
		panels = append(panels, panel)
	}
	return panels, rows.Err()
}

// AddMember inserts a new panel membership.
func (r *PostgresPanelRepository) AddMember(ctx context.Context, member *models.PanelMember) error {
	insertQuery := `INSERT INTO panel_member (panel_id, seller_id, status, created_at)
	                VALUES ($1, $2, $3, $4)`
	_, err := r.DB.Exec(ctx, insertQuery, member.PanelID, member.SellerID, member.Status, member.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.NewValidation("seller is already on this panel")
		}
		return fmt.Errorf("failed to insert panel member: %w", err)
	}
	return nil
}

// GetMember returns one membership record.
func (r *PostgresPanelRepository) GetMember(ctx context.Context, panelID, sellerID string) (*models.PanelMember, error) {
	var member models.PanelMember
	query := `SELECT panel_id, seller_id, status, created_at FROM panel_member
	          WHERE panel_id = $1 AND seller_id = $2`
	err := r.DB.QueryRow(ctx, query, panelID, sellerID).Scan(
		&member.PanelID, &member.SellerID, &member.Status, &member.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("panel member not found")
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMembers returns all membership records for a panel.
func (r *PostgresPanelRepository) GetMembers(ctx context.Context, panelID string) ([]models.PanelMember, error) {
	query := `SELECT panel_id, seller_id, status, created_at FROM panel_member
	          WHERE panel_id = $1 ORDER BY created_at, seller_id`
	rows, err := r.DB.Query(ctx, query, panelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.PanelMember
	for rows.Next() {
		var member models.PanelMember
		if err := rows.Scan(&member.PanelID, &member.SellerID, &member.Status, &member.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// UpdateMemberStatus sets a new membership status and returns the record.
func (r *PostgresPanelRepository) UpdateMemberStatus(ctx context.Context, panelID, sellerID string, status models.PanelMemberStatus) (*models.PanelMember, error) {
	var member models.PanelMember
	updateQuery := `UPDATE panel_member SET status = $1 WHERE panel_id = $2 AND seller_id = $3
	                RETURNING panel_id, seller_id, status, created_at`
	err := r.DB.QueryRow(ctx, updateQuery, status, panelID, sellerID).Scan(
		&member.PanelID, &member.SellerID, &member.Status, &member.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("panel member not found")
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// IsActiveMember reports whether the seller is an active member of the panel.
func (r *PostgresPanelRepository) IsActiveMember(ctx context.Context, panelID, sellerID string) (bool, error) {
	var active bool
	query := `SELECT EXISTS(SELECT 1 FROM panel_member
	          WHERE panel_id = $1 AND seller_id = $2 AND status = $3)`
	err := r.DB.QueryRow(ctx, query, panelID, sellerID, models.ActiveMember).Scan(&active)
	return active, err
}

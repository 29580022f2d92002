package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/procurelink/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository is the store boundary for the notification feed.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetUserNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) (*models.Notification, error)
}

// PostgresNotificationRepository implements NotificationRepository against Postgres.
type PostgresNotificationRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository.
func NewPostgresNotificationRepository(db *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{DB: db}
}

// CreateNotification inserts a new notification.
func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	insertQuery := `INSERT INTO notification (id, user_id, type, rfq_id, bid_id, message, read, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.Exec(ctx, insertQuery, n.ID, n.UserID, n.Type, n.RFQID, n.BidID, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// GetUserNotifications returns one user's notifications, newest first.
func (r *PostgresNotificationRepository) GetUserNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	query := `SELECT id, user_id, type, rfq_id, bid_id, message, read, created_at
	          FROM notification WHERE user_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.RFQID, &n.BidID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one of the user's notifications as read.
func (r *PostgresNotificationRepository) MarkNotificationRead(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	var n models.Notification
	updateQuery := `UPDATE notification SET read = TRUE WHERE id = $1 AND user_id = $2
	                RETURNING id, user_id, type, rfq_id, bid_id, message, read, created_at`
	err := r.DB.QueryRow(ctx, updateQuery, notificationID, userID).Scan(
		&n.ID, &n.UserID, &n.Type, &n.RFQID, &n.BidID, &n.Message, &n.Read, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("notification not found")
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

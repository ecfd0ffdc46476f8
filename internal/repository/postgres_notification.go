package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type PostgresNotificationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresNotificationRepository(db *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{
		db: db,
	}
}

func (p *PostgresNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (customer_id, notification_type, message, send_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return p.db.QueryRow(ctx, query,
		notification.CustomerID,
		notification.Type,
		notification.Message,
		notification.SendAt,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (p *PostgresNotificationRepository) DuePending(
	ctx context.Context,
	now time.Time,
	limit int) ([]domain.Notification, error) {

	query := `
		SELECT id, customer_id, notification_type, message, send_at,
		       is_sent, sent_at, is_read, created_at
		FROM notifications
		WHERE is_sent = FALSE AND send_at <= $1
		ORDER BY send_at
		LIMIT $2
	`

	rows, err := p.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)

	for rows.Next() {
		var n domain.Notification

		err = rows.Scan(
			&n.ID,
			&n.CustomerID,
			&n.Type,
			&n.Message,
			&n.SendAt,
			&n.IsSent,
			&n.SentAt,
			&n.IsRead,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		notifications = append(notifications, n)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (p *PostgresNotificationRepository) MarkSent(ctx context.Context, id int, sentAt time.Time) error {
	query := `
		UPDATE notifications
		SET is_sent = TRUE, sent_at = $1
		WHERE id = $2
	`

	tag, err := p.db.Exec(ctx, query, sentAt, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
)

// MessageRepository manages ticket thread messages.
type MessageRepository interface {
	// Append inserts a message and updates the owning ticket's summary fields
	// in one transaction; a requester message also forces status to new-alert.
	Append(ctx context.Context, msg *domain.Message, forceNewAlert bool) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Append(ctx context.Context, msg *domain.Message, forceNewAlert bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO messages (ticket_id, author_role, author_id, text, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	if err := tx.QueryRow(ctx, insert,
		msg.TicketID,
		msg.AuthorRole,
		msg.AuthorID,
		msg.Text,
		msg.CreatedAt,
	).Scan(&msg.ID); err != nil {
		return err
	}

	var cmd pgconn.CommandTag
	if forceNewAlert {
		const update = `UPDATE tickets SET status=$1, updated_at=$2, last_message_at=$2 WHERE id=$3`
		cmd, err = tx.Exec(ctx, update, domain.TicketStatusNewAlert, msg.CreatedAt, msg.TicketID)
	} else {
		const update = `UPDATE tickets SET updated_at=$1, last_message_at=$1 WHERE id=$2`
		cmd, err = tx.Exec(ctx, update, msg.CreatedAt, msg.TicketID)
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, author_role, author_id, text, created_at
        FROM messages WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.AuthorRole,
			&msg.AuthorID,
			&msg.Text,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

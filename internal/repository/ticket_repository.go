package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
)

// ErrDuplicateID signals a ticket id collision on insert; callers regenerate and retry.
var ErrDuplicateID = errors.New("duplicate ticket id")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) error
	List(ctx context.Context, limit int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, subject, location, email, requester_name, details, status, created_at, updated_at, last_message_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Subject,
		ticket.Location,
		ticket.Email,
		ticket.RequesterName,
		ticket.Details,
		ticket.Status,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.LastMessageAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, subject, location, email, requester_name, details, status, created_at, updated_at, last_message_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Location,
		&ticket.Email,
		&ticket.RequesterName,
		&ticket.Details,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.LastMessageAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) error {
	const query = `UPDATE tickets SET status=$1, updated_at=$2 WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, updatedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 200
	}
	const query = `
        SELECT id, subject, location, email, requester_name, details, status, created_at, updated_at, last_message_at
        FROM tickets ORDER BY last_message_at DESC NULLS LAST LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Subject,
			&ticket.Location,
			&ticket.Email,
			&ticket.RequesterName,
			&ticket.Details,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.LastMessageAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

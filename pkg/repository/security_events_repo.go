package repository

import (
	"context"
	"database/sql"

	"github.com/catarina/secure-login/pkg/domain"
)

// SecurityEventsRepository appends to the security-risk trail.
type SecurityEventsRepository struct {
	db *sql.DB
}

// NewSecurityEventsRepository creates a new security events repository.
func NewSecurityEventsRepository(db *sql.DB) *SecurityEventsRepository {
	return &SecurityEventsRepository{db: db}
}

// Insert appends one security event. Details are stored as JSONB.
func (r *SecurityEventsRepository) Insert(ctx context.Context, event *domain.SecurityEvent) error {
	details, err := marshalDetails(event.Details)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO security_events (event_type, actor, ip, user_agent, result, details,
		                             severity, action_taken, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		event.EventType, event.Actor, event.IP, event.UserAgent, event.Result,
		details, event.Severity, event.ActionTaken, event.OccurredAt,
	).Scan(&event.ID)
}

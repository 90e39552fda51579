package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/catarina/secure-login/pkg/domain"
)

// AuditEventsRepository appends to the business audit trail.
type AuditEventsRepository struct {
	db *sql.DB
}

// NewAuditEventsRepository creates a new audit events repository.
func NewAuditEventsRepository(db *sql.DB) *AuditEventsRepository {
	return &AuditEventsRepository{db: db}
}

// Insert appends one audit event. Details are stored as JSONB.
func (r *AuditEventsRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	details, err := marshalDetails(event.Details)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO audit_events (id, actor, action, details, ip, user_agent, level, origin, resource, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.Actor, event.Action, details, event.IP, event.UserAgent,
		event.Level, event.Origin, event.Resource, event.CreatedAt,
	)
	return err
}

func marshalDetails(details map[string]any) ([]byte, error) {
	if details == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(details)
}

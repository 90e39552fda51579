// Package audit records business audit events and security-risk events in
// two parallel append-only trails. Recording is asynchronous and
// best-effort: the caller hands an event to a bounded queue and returns
// immediately, and any storage failure is logged and swallowed. A failure
// to audit must never fail the operation that triggered it.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catarina/secure-login/pkg/domain"
)

// AuditStore persists audit events.
type AuditStore interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// SecurityEventStore persists security events.
type SecurityEventStore interface {
	Insert(ctx context.Context, event *domain.SecurityEvent) error
}

const (
	defaultQueueSize = 256
	defaultWorkers   = 2
	writeTimeout     = 5 * time.Second
)

// Options tunes the recorder's worker pool.
type Options struct {
	QueueSize int
	Workers   int
}

// Recorder fans events out to the audit and security trails through a
// bounded worker pool. Back-pressure policy: when the queue is full the
// oldest queued event is dropped, so the call path never blocks beyond a
// channel operation. Relative order between the audit write and the
// security write for one logical event is not guaranteed.
type Recorder struct {
	logger *slog.Logger
	audits AuditStore
	events SecurityEventStore

	queue     chan func(context.Context)
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRecorder creates a recorder and starts its workers.
func NewRecorder(logger *slog.Logger, audits AuditStore, events SecurityEventStore, opts Options) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	r := &Recorder{
		logger: logger,
		audits: audits,
		events: events,
		queue:  make(chan func(context.Context), opts.QueueSize),
		closed: make(chan struct{}),
	}
	r.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go r.worker()
	}
	return r
}

// Close stops accepting events, drains the queue, and waits for the
// workers to finish.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
	})
	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for {
		select {
		case job := <-r.queue:
			r.run(job)
		case <-r.closed:
			for {
				select {
				case job := <-r.queue:
					r.run(job)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) run(job func(context.Context)) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("audit worker recovered from panic", "panic", p)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	job(ctx)
}

func (r *Recorder) enqueue(job func(context.Context)) {
	select {
	case <-r.closed:
		r.logger.Warn("recorder closed, dropping event")
		return
	default:
	}
	for {
		select {
		case r.queue <- job:
			return
		default:
		}
		// Queue full: drop the oldest queued event to make room.
		select {
		case <-r.queue:
			r.logger.Warn("audit queue full, dropped oldest event")
		default:
		}
	}
}

// Record appends a business audit event. The event is timestamped at call
// time; persistence may complete after the caller has returned.
func (r *Recorder) Record(actor, action string, details map[string]any, ip, userAgent string, level domain.AuditLevel, origin, resource string) {
	event := &domain.AuditEvent{
		ID:        uuid.New(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
		Level:     level,
		Origin:    origin,
		Resource:  resource,
		CreatedAt: time.Now(),
	}
	r.enqueue(func(ctx context.Context) {
		if err := r.audits.Insert(ctx, event); err != nil {
			r.logger.Error("failed to record audit event", "action", action, "actor", actor, "error", err)
			return
		}
		r.logger.Info("AUDIT_EVENT",
			"actor", actor, "action", action, "level", level, "ip", ip, "resource", resource)
	})
}

// RecordSecurity appends a security-risk event to the parallel trail.
func (r *Recorder) RecordSecurity(eventType, actor, ip, userAgent string, result domain.SecurityResult, details map[string]any, severity domain.Severity, actionTaken string) {
	event := &domain.SecurityEvent{
		EventType:   eventType,
		Actor:       actor,
		IP:          ip,
		UserAgent:   userAgent,
		Result:      result,
		Details:     details,
		Severity:    severity,
		ActionTaken: actionTaken,
		OccurredAt:  time.Now(),
	}
	r.enqueue(func(ctx context.Context) {
		if err := r.events.Insert(ctx, event); err != nil {
			r.logger.Error("failed to record security event", "type", eventType, "actor", actor, "error", err)
			return
		}
		r.logger.Warn("SECURITY_EVENT",
			"type", eventType, "actor", actor, "result", result, "severity", severity, "ip", ip)
	})
}

// LoginSuccess records a completed login on both trails.
func (r *Recorder) LoginSuccess(actor, ip, userAgent string, twoFactor bool) {
	details := map[string]any{
		"auth_method": "password",
		"two_factor":  twoFactor,
	}
	r.Record(actor, domain.ActionLoginSuccess, details, ip, userAgent, domain.AuditInfo, "application", "authentication")
	r.RecordSecurity(domain.EventLoginSuccess, actor, ip, userAgent, domain.ResultSuccess, details, domain.SeverityLow, "")
}

// LoginFailure records a rejected login. Severity escalates to HIGH from
// the third consecutive failure.
func (r *Recorder) LoginFailure(actor, ip, userAgent, reason string, attempt int) {
	details := map[string]any{
		"reason":  reason,
		"attempt": attempt,
	}
	r.Record(actor, domain.ActionLoginFailure, details, ip, userAgent, domain.AuditWarn, "application", "authentication")

	severity := domain.SeverityMedium
	if attempt >= 3 {
		severity = domain.SeverityHigh
	}
	r.RecordSecurity(domain.EventLoginFailed, actor, ip, userAgent, domain.ResultFailure, details, severity, "")
}

// AccountLocked records a lockout, or a login attempt during one.
func (r *Recorder) AccountLocked(actor, ip, userAgent string, attempts int) {
	details := map[string]any{
		"total_attempts": attempts,
		"action":         "account_locked",
	}
	r.Record(actor, domain.ActionAccountLocked, details, ip, userAgent, domain.AuditError, "system", "security")
	r.RecordSecurity(domain.EventAccountLocked, actor, ip, userAgent, domain.ResultBlocked, details, domain.SeverityCritical,
		"Account locked after repeated failed attempts")
}

// AccessDenied records a rejected access to a protected resource.
func (r *Recorder) AccessDenied(actor, resource, ip, userAgent, reason string) {
	details := map[string]any{
		"requested_resource": resource,
		"denial_reason":      reason,
	}
	r.Record(actor, domain.ActionAccessDenied, details, ip, userAgent, domain.AuditWarn, "system", resource)
	r.RecordSecurity(domain.EventPermissionDenied, actor, ip, userAgent, domain.ResultBlocked, details, domain.SeverityHigh, "")
}

// CriticalOperation records a sensitive administrative operation.
func (r *Recorder) CriticalOperation(actor, operation, resource string, details map[string]any, ip, userAgent string) {
	r.Record(actor, operation, details, ip, userAgent, domain.AuditCritical, "application", resource)
	r.RecordSecurity(domain.EventCriticalOperation, actor, ip, userAgent, domain.ResultSuccess, details, domain.SeverityHigh,
		"Critical operation executed")
}

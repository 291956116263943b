// Package membership opens, edits and closes memberships while keeping at
// most one membership of a (person, organization) pair active on any day.
//
// Opening a membership that overlaps an existing one either fails with a
// ConflictError or, when the caller asks for it, closes the existing one on
// the day before the new one starts and retries once. Updates never close
// another record; they fail on overlap.
package membership

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/metrics"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/store"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	audit "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/sentinel"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/requestcontext"
)

const tracerName = "github.com/gallandarakhneorg/labmanager-sub016/internal/membership"

// maxAttempts bounds Open to the first try plus one retry after closing
// the conflicting membership.
const maxAttempts = 2

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the membership lifecycle service.
type Service struct {
	store          store.TxRunner
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	clock          func() time.Time
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithClock sets the clock that defines "today".
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func New(st store.TxRunner, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		clock:  time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenRequest describes a new membership.
type OpenRequest struct {
	PersonID       domain.PersonID
	OrganizationID domain.OrganizationID
	Status         models.MemberStatus
	Since          *time.Time
	To             *time.Time
	Classification models.Classification
	Responsibility models.Responsibility
	// PermanentPosition overrides the default derived from Status.
	PermanentPosition *bool
	MainPosition      bool
	// CloseOnConflict closes an overlapping membership of the same pair
	// instead of failing.
	CloseOnConflict bool
}

// OpenResult is the created membership and, when one was closed to make
// room, the closed membership as saved.
type OpenResult struct {
	Membership *models.Membership
	Closed     *models.Membership
}

// Open creates a membership. The whole operation, including the closing
// of a conflicting membership and the retry, is one transaction.
func (s *Service) Open(ctx context.Context, req OpenRequest) (result *OpenResult, err error) {
	ctx, span := s.tracer.Start(ctx, "membership.Open", trace.WithAttributes(
		attribute.String("person_id", req.PersonID.String()),
		attribute.String("organization_id", req.OrganizationID.String()),
		attribute.Bool("close_on_conflict", req.CloseOnConflict),
	))
	defer func() { endSpan(span, err) }()

	iv := models.NewInterval(req.Since, req.To)
	if err := validateInterval(iv); err != nil {
		s.incrementInvalidInterval()
		return nil, err
	}
	if err := validateAttributes(req.Status, req.Classification, req.Responsibility); err != nil {
		return nil, err
	}

	now := s.now(ctx)
	today := models.Day(now)
	result = &OpenResult{}
	err = s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		result.Closed = nil
		if err := ensurePair(ctx, st, req.PersonID, req.OrganizationID); err != nil {
			return err
		}
		for attempt := 1; ; attempt++ {
			conflict, err := findConflict(ctx, st, req.PersonID, req.OrganizationID, iv, domain.MembershipID{})
			if err != nil {
				return err
			}
			if conflict == nil {
				break
			}
			if !req.CloseOnConflict || attempt >= maxAttempts {
				return newConflictError(conflict)
			}

			if iv.Since == nil {
				// an open start ending in the past leaves no day to split on
				if iv.To != nil && iv.To.Before(today) {
					return newConflictError(conflict)
				}
				start := today
				iv.Since = &start
				if conflict, err = findConflict(ctx, st, req.PersonID, req.OrganizationID, iv, domain.MembershipID{}); err != nil {
					return err
				}
				if conflict == nil {
					break
				}
			}
			start := *iv.Since
			if !closableAt(conflict, start, today) {
				return newConflictError(conflict)
			}
			conflict.CloseAt(start.AddDate(0, 0, -1), now)
			if err := st.SaveMembership(ctx, conflict); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close membership")
			}
			result.Closed = conflict
		}

		m, err := models.NewMembership(domain.NewMembershipID(), req.PersonID, req.OrganizationID, req.Status, iv.Since, iv.To, now)
		if err != nil {
			return err
		}
		m.Classification = req.Classification
		m.Responsibility = req.Responsibility
		m.MainPosition = req.MainPosition
		if req.PermanentPosition != nil {
			m.PermanentPosition = *req.PermanentPosition
		}
		if err := st.SaveMembership(ctx, m); err != nil {
			return translate(err, "failed to save membership")
		}
		result.Membership = m
		return nil
	})
	if err != nil {
		if isConflict(err) {
			s.incrementConflict("open")
			s.logger.InfoContext(ctx, "membership conflict",
				"operation", "open",
				"person_id", req.PersonID,
				"organization_id", req.OrganizationID,
				"error", err,
			)
		}
		return nil, err
	}

	var related []string
	if result.Closed != nil {
		related = []string{result.Closed.ID.String()}
		s.incrementAutoClosed()
		s.logAudit(ctx, audit.EventMembershipAutoClosed, result.Closed.ID.String(), []string{result.Membership.ID.String()},
			"person_id", req.PersonID,
			"organization_id", req.OrganizationID,
			"to", result.Closed.To.Format(models.DateLayout),
			"replaced_by", result.Membership.ID,
		)
	}
	s.incrementOpened()
	s.logAudit(ctx, audit.EventMembershipOpened, result.Membership.ID.String(), related,
		"person_id", req.PersonID,
		"organization_id", req.OrganizationID,
		"status", req.Status,
		"interval", result.Membership.Interval().String(),
	)
	return result, nil
}

// closableAt reports whether m may be ended the day before start. The end
// never moves later. A record starting on or after start is only closed
// while it is active today, and CloseAt then pulls its start back.
func closableAt(m *models.Membership, start, today time.Time) bool {
	if m.To != nil && m.To.Before(start) {
		return false
	}
	if m.Since == nil || m.Since.Before(start) {
		return true
	}
	return m.ActiveAt(today)
}

// Bound is an optional edit of one interval bound. Set reports whether the
// bound is edited at all; a nil Day then makes it open.
type Bound struct {
	Set bool
	Day *time.Time
}

// UpdateRequest lists the fields to change; nil fields are left alone.
type UpdateRequest struct {
	OrganizationID    *domain.OrganizationID
	Status            *models.MemberStatus
	Since             Bound
	To                Bound
	Classification    *models.Classification
	Responsibility    *models.Responsibility
	PermanentPosition *bool
	MainPosition      *bool
}

// Update edits a membership. An edit that makes it overlap another
// membership of the same pair is rejected; nothing else is modified.
func (s *Service) Update(ctx context.Context, id domain.MembershipID, req UpdateRequest) (updated *models.Membership, err error) {
	ctx, span := s.tracer.Start(ctx, "membership.Update", trace.WithAttributes(
		attribute.String("membership_id", id.String()),
	))
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		m, err := st.FindMembershipByID(ctx, id)
		if err != nil {
			return translate(err, "membership not found")
		}
		if req.OrganizationID != nil {
			if _, err := st.FindOrganizationByID(ctx, *req.OrganizationID); err != nil {
				return translate(err, "organization not found")
			}
			m.OrganizationID = *req.OrganizationID
		}
		if req.Status != nil {
			m.Status = *req.Status
		}
		if req.Since.Set || req.To.Set {
			iv := m.Interval()
			if req.Since.Set {
				iv.Since = req.Since.Day
			}
			if req.To.Set {
				iv.To = req.To.Day
			}
			iv = models.NewInterval(iv.Since, iv.To)
			if err := validateInterval(iv); err != nil {
				return err
			}
			m.SetInterval(iv)
		}
		if req.Classification != nil {
			m.Classification = *req.Classification
		}
		if req.Responsibility != nil {
			m.Responsibility = *req.Responsibility
		}
		if req.PermanentPosition != nil {
			m.PermanentPosition = *req.PermanentPosition
		}
		if req.MainPosition != nil {
			m.MainPosition = *req.MainPosition
		}
		if err := validateAttributes(m.Status, m.Classification, m.Responsibility); err != nil {
			return err
		}

		conflict, err := findConflict(ctx, st, m.PersonID, m.OrganizationID, m.Interval(), m.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return newConflictError(conflict)
		}

		m.UpdatedAt = s.now(ctx)
		if err := st.SaveMembership(ctx, m); err != nil {
			return translate(err, "failed to save membership")
		}
		updated = m
		return nil
	})
	if err != nil {
		var ivErr *IntervalError
		switch {
		case isConflict(err):
			s.incrementConflict("update")
		case errors.As(err, &ivErr):
			s.incrementInvalidInterval()
		}
		return nil, err
	}

	s.logAudit(ctx, audit.EventMembershipUpdated, updated.ID.String(), nil,
		"person_id", updated.PersonID,
		"organization_id", updated.OrganizationID,
		"status", updated.Status,
		"interval", updated.Interval().String(),
	)
	return updated, nil
}

// Delete removes a membership.
func (s *Service) Delete(ctx context.Context, id domain.MembershipID) (err error) {
	ctx, span := s.tracer.Start(ctx, "membership.Delete", trace.WithAttributes(
		attribute.String("membership_id", id.String()),
	))
	defer func() { endSpan(span, err) }()

	var deleted *models.Membership
	err = s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		m, err := st.FindMembershipByID(ctx, id)
		if err != nil {
			return translate(err, "membership not found")
		}
		if err := st.DeleteMembership(ctx, id); err != nil {
			return translate(err, "membership not found")
		}
		deleted = m
		return nil
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventMembershipDeleted, id.String(), nil,
		"person_id", deleted.PersonID,
		"organization_id", deleted.OrganizationID,
	)
	return nil
}

// Get returns one membership.
func (s *Service) Get(ctx context.Context, id domain.MembershipID) (*models.Membership, error) {
	var m *models.Membership
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		var err error
		m, err = st.FindMembershipByID(ctx, id)
		return translate(err, "membership not found")
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByPerson returns the memberships of a person.
func (s *Service) ListByPerson(ctx context.Context, person domain.PersonID) ([]*models.Membership, error) {
	var out []*models.Membership
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		if _, err := st.FindPersonByID(ctx, person); err != nil {
			return translate(err, "person not found")
		}
		var err error
		out, err = st.ListMembershipsByPerson(ctx, person)
		return translate(err, "failed to list memberships")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Repoint moves membership id to another person and organization inside
// the caller's transaction. It fails with a ConflictError when the moved
// membership would overlap one the new pair already has.
func (s *Service) Repoint(ctx context.Context, st store.Store, id domain.MembershipID, person domain.PersonID, org domain.OrganizationID) (*models.Membership, error) {
	m, err := st.FindMembershipByID(ctx, id)
	if err != nil {
		return nil, translate(err, "membership not found")
	}
	if m.PersonID == person && m.OrganizationID == org {
		return m, nil
	}
	conflict, err := findConflict(ctx, st, person, org, m.Interval(), m.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		s.incrementConflict("repoint")
		return nil, newConflictError(conflict)
	}
	m.PersonID, m.OrganizationID = person, org
	m.UpdatedAt = s.now(ctx)
	if err := st.SaveMembership(ctx, m); err != nil {
		return nil, translate(err, "failed to repoint membership")
	}
	return m, nil
}

// ActiveAt returns the memberships of a person active on day.
func (s *Service) ActiveAt(ctx context.Context, person domain.PersonID, day time.Time) ([]*models.Membership, error) {
	all, err := s.ListByPerson(ctx, person)
	if err != nil {
		return nil, err
	}
	active := make([]*models.Membership, 0, len(all))
	for _, m := range all {
		if m.ActiveAt(day) {
			active = append(active, m)
		}
	}
	return active, nil
}

// findConflict returns the first membership of the pair, other than
// exclude, whose interval overlaps iv.
func findConflict(ctx context.Context, st store.Store, person domain.PersonID, org domain.OrganizationID, iv models.Interval, exclude domain.MembershipID) (*models.Membership, error) {
	existing, err := st.ListMembershipsForPair(ctx, person, org)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list memberships")
	}
	for _, m := range existing {
		if m.ID != exclude && m.Overlaps(iv) {
			return m, nil
		}
	}
	return nil, nil
}

func ensurePair(ctx context.Context, st store.Store, person domain.PersonID, org domain.OrganizationID) error {
	if _, err := st.FindPersonByID(ctx, person); err != nil {
		return translate(err, "person not found")
	}
	if _, err := st.FindOrganizationByID(ctx, org); err != nil {
		return translate(err, "organization not found")
	}
	return nil
}

func validateAttributes(status models.MemberStatus, c models.Classification, r models.Responsibility) error {
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown member status")
	}
	if !c.Valid() {
		return dErrors.New(dErrors.CodeValidation, "invalid classification")
	}
	if !r.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown responsibility")
	}
	return nil
}

// translate maps store sentinels to coded errors. Coded errors pass through.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	var coded dErrors.Coder
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msg)
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func isConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject string, related []string, attributes ...any) {
	args := append(attributes, "event", string(event), "subject_id", subject, "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditPublisher == nil {
		return
	}
	// best effort: the membership write has committed already
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:     string(event),
		Kind:       "membership",
		SubjectID:  subject,
		RelatedIDs: related,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "event", string(event), "error", err)
	}
}

func (s *Service) incrementOpened() {
	if s.metrics != nil {
		s.metrics.IncrementMembershipsOpened()
	}
}

func (s *Service) incrementAutoClosed() {
	if s.metrics != nil {
		s.metrics.IncrementAutoClosed()
	}
}

func (s *Service) incrementConflict(operation string) {
	if s.metrics != nil {
		s.metrics.IncrementConflict(operation)
	}
}

func (s *Service) incrementInvalidInterval() {
	if s.metrics != nil {
		s.metrics.IncrementInvalidInterval()
	}
}

// now prefers the request-scoped time so every write of one request sees
// the same day.
func (s *Service) now(ctx context.Context) time.Time {
	if t, ok := requestcontext.Time(ctx); ok {
		return t
	}
	return s.clock()
}

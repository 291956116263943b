// Package merge folds duplicate entities into one target.
//
// A merge repoints every record that references a source to the target,
// fills the target's empty attributes from the sources, then deletes the
// sources. The whole merge is one transaction: a membership that would
// overlap one of the target's, an organization cycle or a failed audit
// write rolls everything back.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
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
	labstrings "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/strings"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/requestcontext"
)

const tracerName = "github.com/gallandarakhneorg/labmanager-sub016/internal/merge"

// MembershipRepointer moves a membership to another person or organization
// inside an open transaction, refusing overlaps.
type MembershipRepointer interface {
	Repoint(ctx context.Context, st store.Store, id domain.MembershipID, person domain.PersonID, org domain.OrganizationID) (*models.Membership, error)
}

// AuditPublisher records merges. It is called inside the merge
// transaction; an error aborts the merge.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CacheInvalidator drops cached duplicate clusters of the given kinds.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, kinds ...domain.Kind)
}

type Service struct {
	store          store.TxRunner
	memberships    MembershipRepointer
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	invalidator    CacheInvalidator
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

func WithCacheInvalidator(invalidator CacheInvalidator) Option {
	return func(s *Service) {
		s.invalidator = invalidator
	}
}

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

func New(st store.TxRunner, memberships MembershipRepointer, opts ...Option) *Service {
	s := &Service{
		store:       st,
		memberships: memberships,
		logger:      slog.Default(),
		clock:       time.Now,
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var mergeEvents = map[domain.Kind]audit.AuditEvent{
	domain.KindPerson:       audit.EventPersonsMerged,
	domain.KindOrganization: audit.EventOrganizationsMerged,
	domain.KindJournal:      audit.EventJournalsMerged,
	domain.KindConference:   audit.EventConferencesMerged,
}

// Merge folds sourceIDs into targetID. All ids must resolve to entities of
// the given kind. Duplicate source ids are merged once.
func (s *Service) Merge(ctx context.Context, kind domain.Kind, sourceIDs []uuid.UUID, targetID uuid.UUID) (err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "merge.Merge", trace.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("target_id", targetID.String()),
		attribute.Int("sources", len(sourceIDs)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
	}()

	if !kind.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid kind: "+kind.String())
	}
	sources, err := distinctSources(kind, sourceIDs, targetID)
	if err != nil {
		s.observe(ctx, kind, start, len(sourceIDs), err)
		return err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		if err := resolve(ctx, st, kind, targetID); err != nil {
			return err
		}
		for _, id := range sources {
			if err := resolve(ctx, st, kind, id); err != nil {
				return err
			}
		}

		var err error
		switch kind {
		case domain.KindPerson:
			err = s.mergePersons(ctx, st, sources, targetID)
		case domain.KindOrganization:
			err = s.mergeOrganizations(ctx, st, sources, targetID)
		case domain.KindJournal:
			err = s.mergeJournals(ctx, st, sources, targetID)
		case domain.KindConference:
			err = s.mergeConferences(ctx, st, sources, targetID)
		}
		if err != nil {
			return err
		}
		return s.emit(ctx, kind, sources, targetID)
	})
	s.observe(ctx, kind, start, len(sources), err)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "entities merged",
		"kind", kind,
		"target_id", targetID,
		"sources", len(sources),
	)
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, kind)
	}
	return nil
}

func (s *Service) MergePersons(ctx context.Context, sources []domain.PersonID, target domain.PersonID) error {
	return s.Merge(ctx, domain.KindPerson, toUUIDs(sources), uuid.UUID(target))
}

func (s *Service) MergeOrganizations(ctx context.Context, sources []domain.OrganizationID, target domain.OrganizationID) error {
	return s.Merge(ctx, domain.KindOrganization, toUUIDs(sources), uuid.UUID(target))
}

func (s *Service) MergeJournals(ctx context.Context, sources []domain.JournalID, target domain.JournalID) error {
	return s.Merge(ctx, domain.KindJournal, toUUIDs(sources), uuid.UUID(target))
}

func (s *Service) MergeConferences(ctx context.Context, sources []domain.ConferenceID, target domain.ConferenceID) error {
	return s.Merge(ctx, domain.KindConference, toUUIDs(sources), uuid.UUID(target))
}

func (s *Service) mergePersons(ctx context.Context, st store.Store, sources []uuid.UUID, targetID uuid.UUID) error {
	target, err := st.FindPersonByID(ctx, domain.PersonID(targetID))
	if err != nil {
		return translate(err, "person not found")
	}
	authored, err := st.ListAuthorshipsByPerson(ctx, target.ID)
	if err != nil {
		return translate(err, "failed to list authorships")
	}
	papers := make(map[domain.PaperID]bool, len(authored))
	for _, a := range authored {
		papers[a.PaperID] = true
	}

	for _, id := range sources {
		src, err := st.FindPersonByID(ctx, domain.PersonID(id))
		if err != nil {
			return translate(err, "person not found")
		}
		target.BackfillFrom(src)

		authorships, err := st.ListAuthorshipsByPerson(ctx, src.ID)
		if err != nil {
			return translate(err, "failed to list authorships")
		}
		for _, a := range authorships {
			if papers[a.PaperID] {
				// the target already signs this paper
				if err := st.DeleteAuthorship(ctx, a.ID); err != nil {
					return translate(err, "failed to drop duplicate authorship")
				}
				continue
			}
			a.PersonID = target.ID
			if err := st.SaveAuthorship(ctx, a); err != nil {
				return translate(err, "failed to repoint authorship")
			}
			papers[a.PaperID] = true
		}

		memberships, err := st.ListMembershipsByPerson(ctx, src.ID)
		if err != nil {
			return translate(err, "failed to list memberships")
		}
		for _, m := range memberships {
			if _, err := s.memberships.Repoint(ctx, st, m.ID, target.ID, m.OrganizationID); err != nil {
				return err
			}
		}

		if err := ensureUnreferenced(domain.KindPerson, id,
			func() (int, error) {
				a, err := st.ListAuthorshipsByPerson(ctx, src.ID)
				return len(a), err
			},
			func() (int, error) {
				m, err := st.ListMembershipsByPerson(ctx, src.ID)
				return len(m), err
			},
		); err != nil {
			return err
		}
		if err := st.DeletePerson(ctx, src.ID); err != nil {
			return translate(err, "failed to delete person")
		}
	}

	// saved last so unique identifiers copied from a source never collide
	// with the source row
	target.UpdatedAt = s.now(ctx)
	return translate(st.SavePerson(ctx, target), "failed to save person")
}

func (s *Service) mergeOrganizations(ctx context.Context, st store.Store, sources []uuid.UUID, targetID uuid.UUID) error {
	target, err := st.FindOrganizationByID(ctx, domain.OrganizationID(targetID))
	if err != nil {
		return translate(err, "organization not found")
	}
	merged := make(map[domain.OrganizationID]bool, len(sources)+1)
	merged[target.ID] = true
	for _, id := range sources {
		merged[domain.OrganizationID(id)] = true
	}
	if target.SuperOrganizationID != nil && merged[*target.SuperOrganizationID] {
		return identityError(domain.KindOrganization, targetID, "target is a sub-organization of a source")
	}

	for _, id := range sources {
		src, err := st.FindOrganizationByID(ctx, domain.OrganizationID(id))
		if err != nil {
			return translate(err, "organization not found")
		}
		target.BackfillFrom(src)
		if target.SuperOrganizationID == nil && src.SuperOrganizationID != nil && !merged[*src.SuperOrganizationID] {
			parent := *src.SuperOrganizationID
			target.SuperOrganizationID = &parent
		}

		memberships, err := st.ListMembershipsByOrganization(ctx, src.ID)
		if err != nil {
			return translate(err, "failed to list memberships")
		}
		for _, m := range memberships {
			if _, err := s.memberships.Repoint(ctx, st, m.ID, m.PersonID, target.ID); err != nil {
				return err
			}
		}

		children, err := st.ListSubOrganizations(ctx, src.ID)
		if err != nil {
			return translate(err, "failed to list sub-organizations")
		}
		for _, child := range children {
			if child.ID == target.ID {
				return identityError(domain.KindOrganization, uuid.UUID(child.ID), "organization would become its own parent")
			}
			child.SuperOrganizationID = &target.ID
			child.UpdatedAt = s.now(ctx)
			if err := st.SaveOrganization(ctx, child); err != nil {
				return translate(err, "failed to repoint sub-organization")
			}
		}

		if err := ensureUnreferenced(domain.KindOrganization, id,
			func() (int, error) {
				m, err := st.ListMembershipsByOrganization(ctx, src.ID)
				return len(m), err
			},
			func() (int, error) {
				o, err := st.ListSubOrganizations(ctx, src.ID)
				return len(o), err
			},
		); err != nil {
			return err
		}
		if err := st.DeleteOrganization(ctx, src.ID); err != nil {
			return translate(err, "failed to delete organization")
		}
	}

	if err := ensureAcyclic(ctx, st, target); err != nil {
		return err
	}
	target.UpdatedAt = s.now(ctx)
	return translate(st.SaveOrganization(ctx, target), "failed to save organization")
}

// ensureAcyclic walks the parent chain of target and fails if it comes
// back to target or loops anywhere above it.
func ensureAcyclic(ctx context.Context, st store.Store, target *models.ResearchOrganization) error {
	seen := map[domain.OrganizationID]bool{target.ID: true}
	next := target.SuperOrganizationID
	for next != nil {
		if seen[*next] {
			return identityError(domain.KindOrganization, uuid.UUID(target.ID), "organization tree would contain a cycle through %s", *next)
		}
		seen[*next] = true
		parent, err := st.FindOrganizationByID(ctx, *next)
		if err != nil {
			return translate(err, "parent organization not found")
		}
		next = parent.SuperOrganizationID
	}
	return nil
}

func (s *Service) mergeJournals(ctx context.Context, st store.Store, sources []uuid.UUID, targetID uuid.UUID) error {
	target, err := st.FindJournalByID(ctx, domain.JournalID(targetID))
	if err != nil {
		return translate(err, "journal not found")
	}
	for _, id := range sources {
		src, err := st.FindJournalByID(ctx, domain.JournalID(id))
		if err != nil {
			return translate(err, "journal not found")
		}
		target.BackfillFrom(src)

		papers, err := st.ListPapersByJournal(ctx, src.ID)
		if err != nil {
			return translate(err, "failed to list papers")
		}
		for _, p := range papers {
			p.JournalID = &target.ID
			p.UpdatedAt = s.now(ctx)
			if err := st.SavePaper(ctx, p); err != nil {
				return translate(err, "failed to repoint paper")
			}
		}

		if err := ensureUnreferenced(domain.KindJournal, id,
			func() (int, error) {
				p, err := st.ListPapersByJournal(ctx, src.ID)
				return len(p), err
			},
		); err != nil {
			return err
		}
		if err := st.DeleteJournal(ctx, src.ID); err != nil {
			return translate(err, "failed to delete journal")
		}
	}
	target.UpdatedAt = s.now(ctx)
	return translate(st.SaveJournal(ctx, target), "failed to save journal")
}

func (s *Service) mergeConferences(ctx context.Context, st store.Store, sources []uuid.UUID, targetID uuid.UUID) error {
	target, err := st.FindConferenceByID(ctx, domain.ConferenceID(targetID))
	if err != nil {
		return translate(err, "conference not found")
	}
	for _, id := range sources {
		src, err := st.FindConferenceByID(ctx, domain.ConferenceID(id))
		if err != nil {
			return translate(err, "conference not found")
		}
		target.BackfillFrom(src)

		papers, err := st.ListPapersByConference(ctx, src.ID)
		if err != nil {
			return translate(err, "failed to list papers")
		}
		for _, p := range papers {
			p.ConferenceID = &target.ID
			p.UpdatedAt = s.now(ctx)
			if err := st.SavePaper(ctx, p); err != nil {
				return translate(err, "failed to repoint paper")
			}
		}

		if err := ensureUnreferenced(domain.KindConference, id,
			func() (int, error) {
				p, err := st.ListPapersByConference(ctx, src.ID)
				return len(p), err
			},
		); err != nil {
			return err
		}
		if err := st.DeleteConference(ctx, src.ID); err != nil {
			return translate(err, "failed to delete conference")
		}
	}
	target.UpdatedAt = s.now(ctx)
	return translate(st.SaveConference(ctx, target), "failed to save conference")
}

func (s *Service) emit(ctx context.Context, kind domain.Kind, sources []uuid.UUID, targetID uuid.UUID) error {
	if s.auditPublisher == nil {
		return nil
	}
	related := make([]string, len(sources))
	for i, id := range sources {
		related[i] = id.String()
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:     string(mergeEvents[kind]),
		Kind:       kind.String(),
		SubjectID:  targetID.String(),
		RelatedIDs: related,
		Timestamp:  s.now(ctx),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record merge")
	}
	return nil
}

func (s *Service) observe(ctx context.Context, kind domain.Kind, start time.Time, sources int, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		s.logger.WarnContext(ctx, "merge rejected",
			"kind", kind,
			"sources", sources,
			"code", outcome,
			"error", err,
		)
	}
	if s.metrics != nil {
		s.metrics.ObserveMerge(kind.String(), outcome, start, sources)
	}
}

// distinctSources drops repeated ids and rejects empty or self-including
// source sets.
func distinctSources(kind domain.Kind, ids []uuid.UUID, target uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, identityError(kind, target, "no source to merge")
	}
	if slices.Contains(ids, target) {
		return nil, identityError(kind, target, "target is also a source")
	}
	return labstrings.Dedupe(ids), nil
}

func resolve(ctx context.Context, st store.Store, kind domain.Kind, id uuid.UUID) error {
	got, err := st.ResolveKind(ctx, id)
	if err != nil {
		return translate(err, fmt.Sprintf("%s %s not found", kind, id))
	}
	if got != kind {
		return identityError(kind, id, "entity is a %s", got)
	}
	return nil
}

// ensureUnreferenced fails when any of the counters still finds records
// pointing at a source that is about to be deleted.
func ensureUnreferenced(kind domain.Kind, id uuid.UUID, counters ...func() (int, error)) error {
	for _, c := range counters {
		n, err := c()
		if err != nil {
			return translate(err, "failed to count references")
		}
		if n > 0 {
			return dErrors.Wrap(sentinel.ErrStillReferenced, dErrors.CodeInvariantViolation,
				fmt.Sprintf("%s %s is still referenced by %d records", kind, id, n))
		}
	}
	return nil
}

func toUUIDs[T ~[16]byte](ids []T) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		out[i] = uuid.UUID(id)
	}
	return out
}

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
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// now prefers the request-scoped time so every write of one request sees
// the same day.
func (s *Service) now(ctx context.Context) time.Time {
	if t, ok := requestcontext.Time(ctx); ok {
		return t
	}
	return s.clock()
}

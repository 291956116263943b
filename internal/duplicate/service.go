package duplicate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/metrics"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/store"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/similarity"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/requestcontext"
)

// DefaultCacheTTL bounds how long a clustering pass is reused.
const DefaultCacheTTL = 10 * time.Minute

// Member is one entity of a cluster as shown to an operator.
type Member struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	References int       `json:"references"`
}

// Cluster is a set of candidate duplicates of one kind. The first member is
// the suggested merge target.
type Cluster struct {
	Kind    domain.Kind `json:"kind"`
	Members []Member    `json:"members"`
}

// Target returns the suggested merge target.
func (c Cluster) Target() Member {
	return c.Members[0]
}

// Sources returns the members that would be merged into Target.
func (c Cluster) Sources() []Member {
	return c.Members[1:]
}

// Service computes duplicate clusters over the store.
type Service struct {
	store     store.TxRunner
	cache     Cache
	cacheTTL  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     func() time.Time
	threshold float64
	tieBreak  func(a, b *models.Person) int
}

// Option configures the duplicate Service.
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

// WithCache enables caching of Clusters results.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithClock sets the clock that decides which memberships are active.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithThreshold sets the name similarity threshold for every kind.
func WithThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// WithPersonTieBreak orders equally used persons before the identifier
// tie-break applies.
func WithPersonTieBreak(fn func(a, b *models.Person) int) Option {
	return func(s *Service) {
		s.tieBreak = fn
	}
}

func NewService(st store.TxRunner, opts ...Option) *Service {
	s := &Service{
		store:     st,
		cacheTTL:  DefaultCacheTTL,
		logger:    slog.Default(),
		clock:     time.Now,
		threshold: similarity.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClusterPersons groups persons sharing a similar name or the same ORCID.
func (s *Service) ClusterPersons(ctx context.Context) ([][]similarity.PersonCandidate, error) {
	start := time.Now()
	var candidates []similarity.PersonCandidate
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		persons, err := st.ListPersons(ctx)
		if err != nil {
			return err
		}
		authorships, err := st.CountAuthorshipsByPerson(ctx)
		if err != nil {
			return err
		}
		active, err := st.CountActiveMembershipsByPerson(ctx, models.Day(s.now(ctx)))
		if err != nil {
			return err
		}
		candidates = make([]similarity.PersonCandidate, len(persons))
		for i, p := range persons {
			candidates[i] = similarity.PersonCandidate{
				Person:            p,
				Authorships:       authorships[p.ID],
				ActiveMemberships: active[p.ID],
			}
		}
		return nil
	})
	if err != nil {
		return nil, loadError(err, "failed to load persons")
	}
	cmp := similarity.NewPersonComparator(similarity.WithThreshold(s.threshold), similarity.WithTieBreak(s.tieBreak))
	clusters, err := NewClusterer[similarity.PersonCandidate](cmp).Cluster(ctx, candidates)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "person clustering interrupted")
	}
	s.observe(ctx, domain.KindPerson, start, len(candidates), len(clusters))
	return clusters, nil
}

// ClusterOrganizations groups organizations sharing an acronym, a similar
// name or the same national identifier.
func (s *Service) ClusterOrganizations(ctx context.Context) ([][]similarity.OrganizationCandidate, error) {
	start := time.Now()
	var candidates []similarity.OrganizationCandidate
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		orgs, err := st.ListOrganizations(ctx)
		if err != nil {
			return err
		}
		refs, err := st.CountOrganizationReferences(ctx)
		if err != nil {
			return err
		}
		candidates = make([]similarity.OrganizationCandidate, len(orgs))
		for i, o := range orgs {
			candidates[i] = similarity.OrganizationCandidate{Organization: o, References: refs[o.ID]}
		}
		return nil
	})
	if err != nil {
		return nil, loadError(err, "failed to load organizations")
	}
	clusters, err := NewClusterer[similarity.OrganizationCandidate](similarity.NewOrganizationComparator(s.threshold)).Cluster(ctx, candidates)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "organization clustering interrupted")
	}
	s.observe(ctx, domain.KindOrganization, start, len(candidates), len(clusters))
	return clusters, nil
}

// ClusterJournals groups journals sharing an ISSN or a similar name.
func (s *Service) ClusterJournals(ctx context.Context) ([][]similarity.JournalCandidate, error) {
	start := time.Now()
	var candidates []similarity.JournalCandidate
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		journals, err := st.ListJournals(ctx)
		if err != nil {
			return err
		}
		refs, err := st.CountPapersByJournal(ctx)
		if err != nil {
			return err
		}
		candidates = make([]similarity.JournalCandidate, len(journals))
		for i, j := range journals {
			candidates[i] = similarity.JournalCandidate{Journal: j, References: refs[j.ID]}
		}
		return nil
	})
	if err != nil {
		return nil, loadError(err, "failed to load journals")
	}
	clusters, err := NewClusterer[similarity.JournalCandidate](similarity.NewJournalComparator(s.threshold)).Cluster(ctx, candidates)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "journal clustering interrupted")
	}
	s.observe(ctx, domain.KindJournal, start, len(candidates), len(clusters))
	return clusters, nil
}

// ClusterConferences groups conferences sharing an acronym or a similar name.
func (s *Service) ClusterConferences(ctx context.Context) ([][]similarity.ConferenceCandidate, error) {
	start := time.Now()
	var candidates []similarity.ConferenceCandidate
	err := s.store.RunInTx(ctx, func(ctx context.Context, st store.Store) error {
		confs, err := st.ListConferences(ctx)
		if err != nil {
			return err
		}
		refs, err := st.CountPapersByConference(ctx)
		if err != nil {
			return err
		}
		candidates = make([]similarity.ConferenceCandidate, len(confs))
		for i, c := range confs {
			candidates[i] = similarity.ConferenceCandidate{Conference: c, References: refs[c.ID]}
		}
		return nil
	})
	if err != nil {
		return nil, loadError(err, "failed to load conferences")
	}
	clusters, err := NewClusterer[similarity.ConferenceCandidate](similarity.NewConferenceComparator(s.threshold)).Cluster(ctx, candidates)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "conference clustering interrupted")
	}
	s.observe(ctx, domain.KindConference, start, len(candidates), len(clusters))
	return clusters, nil
}

// Clusters returns the clusters of kind as operator-facing summaries,
// served from the cache when a fresh pass is available.
func (s *Service) Clusters(ctx context.Context, kind domain.Kind) ([]Cluster, error) {
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid kind: "+string(kind))
	}
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, kind)
		if err != nil {
			s.logger.WarnContext(ctx, "duplicate cache read failed", "kind", kind, "error", err)
		}
		s.cacheLookup(kind, ok)
		if ok {
			return cached, nil
		}
	}

	clusters, err := s.compute(ctx, kind)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, kind, clusters, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "duplicate cache write failed", "kind", kind, "error", err)
		}
	}
	return clusters, nil
}

// ClusterAll computes the clusters of every kind concurrently.
func (s *Service) ClusterAll(ctx context.Context) (map[domain.Kind][]Cluster, error) {
	results := make([][]Cluster, len(domain.Kinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range domain.Kinds {
		g.Go(func() error {
			clusters, err := s.Clusters(ctx, kind)
			if err != nil {
				return err
			}
			results[i] = clusters
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[domain.Kind][]Cluster, len(domain.Kinds))
	for i, kind := range domain.Kinds {
		out[kind] = results[i]
	}
	return out, nil
}

// Invalidate drops cached clusters for kinds. Errors are logged only; a
// stale entry expires on its own.
func (s *Service) Invalidate(ctx context.Context, kinds ...domain.Kind) {
	if s.cache == nil || len(kinds) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, kinds...); err != nil {
		s.logger.WarnContext(ctx, "duplicate cache invalidation failed", "kinds", kinds, "error", err)
	}
}

func (s *Service) compute(ctx context.Context, kind domain.Kind) ([]Cluster, error) {
	switch kind {
	case domain.KindPerson:
		raw, err := s.ClusterPersons(ctx)
		return summarize(kind, raw, func(c similarity.PersonCandidate) Member {
			return Member{ID: uuid.UUID(c.Person.ID), Label: c.Person.FullName(), References: c.Authorships + c.ActiveMemberships}
		}), err
	case domain.KindOrganization:
		raw, err := s.ClusterOrganizations(ctx)
		return summarize(kind, raw, func(c similarity.OrganizationCandidate) Member {
			return Member{ID: uuid.UUID(c.Organization.ID), Label: c.Organization.AcronymOrName(), References: c.References}
		}), err
	case domain.KindJournal:
		raw, err := s.ClusterJournals(ctx)
		return summarize(kind, raw, func(c similarity.JournalCandidate) Member {
			return Member{ID: uuid.UUID(c.Journal.ID), Label: c.Journal.Name, References: c.References}
		}), err
	case domain.KindConference:
		raw, err := s.ClusterConferences(ctx)
		return summarize(kind, raw, func(c similarity.ConferenceCandidate) Member {
			return Member{ID: uuid.UUID(c.Conference.ID), Label: conferenceLabel(c.Conference), References: c.References}
		}), err
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid kind: "+string(kind))
	}
}

func summarize[T any](kind domain.Kind, raw [][]T, member func(T) Member) []Cluster {
	if raw == nil {
		return []Cluster{}
	}
	out := make([]Cluster, len(raw))
	for i, group := range raw {
		members := make([]Member, len(group))
		for j, e := range group {
			members[j] = member(e)
		}
		out[i] = Cluster{Kind: kind, Members: members}
	}
	return out
}

func conferenceLabel(c *models.Conference) string {
	switch {
	case c.Acronym != "" && c.Name != "":
		return c.Acronym + " - " + c.Name
	case c.Acronym != "":
		return c.Acronym
	default:
		return c.Name
	}
}

func (s *Service) observe(ctx context.Context, kind domain.Kind, start time.Time, entities, clusters int) {
	if s.metrics != nil {
		s.metrics.ObserveCluster(string(kind), start, clusters)
	}
	s.logger.InfoContext(ctx, "duplicate clusters computed",
		"kind", kind,
		"entities", entities,
		"clusters", clusters,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// loadError keeps codes set by the store runner (timeouts) and marks
// anything else as internal.
func loadError(err error, msg string) error {
	var coded dErrors.Coder
	if errors.As(err, &coded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) cacheLookup(kind domain.Kind, hit bool) {
	if s.metrics != nil {
		s.metrics.IncrementCacheLookup(string(kind), hit)
	}
}

// now prefers the request time so one request sees a single "today".
func (s *Service) now(ctx context.Context) time.Time {
	if t, ok := requestcontext.Time(ctx); ok {
		return t
	}
	return s.clock()
}

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/sentinel"
	txcontext "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Migrate creates the lab tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
)

// Postgres is a Store backed by PostgreSQL. Calls made under RunInTx share
// the transaction carried by the context; other calls run on the pool.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithPostgresTxTimeout bounds RunInTx when the caller's context has no deadline.
func WithPostgresTxTimeout(d time.Duration) PostgresOption {
	return func(s *Postgres) {
		s.timeout = d
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	s := &Postgres{db: db, timeout: defaultTxTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Postgres) q(ctx context.Context) txcontext.Querier {
	return txcontext.QuerierFrom(ctx, s.db)
}

// RunInTx opens a serializable transaction. A nested call joins the
// transaction already in ctx.
func (s *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx, s)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return translate(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), s); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translate(err, "commit transaction")
	}
	return nil
}

// translate maps driver errors onto sentinels and coded errors.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, sentinel.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, sentinel.ErrNotFound)
		case pgSerializationFail:
			return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent update, retry the operation")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func datePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return models.DayPtr(t.Time)
}

func deleted(res sql.Result, what string, id fmt.Stringer) error {
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err, "delete "+what)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// persons

const personColumns = `id, first_name, last_name, gender, email, orcid, researcher_id, scopus_id,
	google_scholar_id, idhal, office_phone, mobile_phone, wos_h_index, scopus_h_index,
	google_scholar_h_index, wos_citations, scopus_citations, google_scholar_citations,
	validated, created_at, updated_at`

func scanPerson(row scanner) (*models.Person, error) {
	var (
		p      models.Person
		id     uuid.UUID
		gender string
	)
	err := row.Scan(&id, &p.FirstName, &p.LastName, &gender, &p.Email, &p.ORCID, &p.ResearcherID,
		&p.ScopusID, &p.GoogleScholarID, &p.IDHALID, &p.OfficePhone, &p.MobilePhone,
		&p.Indicators.WosHIndex, &p.Indicators.ScopusHIndex, &p.Indicators.GoogleScholarIndex,
		&p.Indicators.WosCitations, &p.Indicators.ScopusCitations, &p.Indicators.ScholarCitations,
		&p.Validated, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = domain.PersonID(id)
	p.Gender = models.Gender(gender)
	return &p, nil
}

func (s *Postgres) FindPersonByID(ctx context.Context, id domain.PersonID) (*models.Person, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, uuid.UUID(id))
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("person", id)
	}
	if err != nil {
		return nil, translate(err, "find person")
	}
	return p, nil
}

func (s *Postgres) ListPersons(ctx context.Context) ([]*models.Person, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+personColumns+` FROM persons ORDER BY created_at, id`)
	if err != nil {
		return nil, translate(err, "list persons")
	}
	defer rows.Close()
	var out []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, translate(err, "scan person")
		}
		out = append(out, p)
	}
	return out, translate(rows.Err(), "list persons")
}

func (s *Postgres) SavePerson(ctx context.Context, p *models.Person) error {
	query := `
		INSERT INTO persons (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			gender = EXCLUDED.gender,
			email = EXCLUDED.email,
			orcid = EXCLUDED.orcid,
			researcher_id = EXCLUDED.researcher_id,
			scopus_id = EXCLUDED.scopus_id,
			google_scholar_id = EXCLUDED.google_scholar_id,
			idhal = EXCLUDED.idhal,
			office_phone = EXCLUDED.office_phone,
			mobile_phone = EXCLUDED.mobile_phone,
			wos_h_index = EXCLUDED.wos_h_index,
			scopus_h_index = EXCLUDED.scopus_h_index,
			google_scholar_h_index = EXCLUDED.google_scholar_h_index,
			wos_citations = EXCLUDED.wos_citations,
			scopus_citations = EXCLUDED.scopus_citations,
			google_scholar_citations = EXCLUDED.google_scholar_citations,
			validated = EXCLUDED.validated,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID), p.FirstName, p.LastName, string(p.Gender), p.Email, p.ORCID, p.ResearcherID,
		p.ScopusID, p.GoogleScholarID, p.IDHALID, p.OfficePhone, p.MobilePhone,
		p.Indicators.WosHIndex, p.Indicators.ScopusHIndex, p.Indicators.GoogleScholarIndex,
		p.Indicators.WosCitations, p.Indicators.ScopusCitations, p.Indicators.ScholarCitations,
		p.Validated, p.CreatedAt, p.UpdatedAt,
	)
	return translate(err, "save person")
}

func (s *Postgres) DeletePerson(ctx context.Context, id domain.PersonID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return translate(err, "delete person")
	}
	return deleted(res, "person", id)
}

func (s *Postgres) CountAuthorshipsByPerson(ctx context.Context) (map[domain.PersonID]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT person_id, COUNT(*) FROM authorships GROUP BY person_id`)
	if err != nil {
		return nil, translate(err, "count authorships")
	}
	return scanCounts(rows, func(id uuid.UUID) domain.PersonID { return domain.PersonID(id) })
}

func (s *Postgres) CountActiveMembershipsByPerson(ctx context.Context, day time.Time) (map[domain.PersonID]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT person_id, COUNT(*) FROM memberships
		WHERE (member_since IS NULL OR member_since <= $1)
		  AND (member_to IS NULL OR member_to >= $1)
		GROUP BY person_id
	`, models.Day(day))
	if err != nil {
		return nil, translate(err, "count active memberships")
	}
	return scanCounts(rows, func(id uuid.UUID) domain.PersonID { return domain.PersonID(id) })
}

func scanCounts[K comparable](rows *sql.Rows, key func(uuid.UUID) K) (map[K]int, error) {
	defer rows.Close()
	counts := make(map[K]int)
	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, translate(err, "scan count")
		}
		counts[key(id)] += n
	}
	return counts, translate(rows.Err(), "scan counts")
}

// organizations

const organizationColumns = `id, acronym, name, type, country, rnsr, national_identifier,
	description, url, super_organization_id, created_at, updated_at`

func scanOrganization(row scanner) (*models.ResearchOrganization, error) {
	var (
		o     models.ResearchOrganization
		id    uuid.UUID
		typ   string
		super uuid.NullUUID
	)
	err := row.Scan(&id, &o.Acronym, &o.Name, &typ, &o.Country, &o.RNSR, &o.NationalIdentifier,
		&o.Description, &o.URL, &super, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.ID = domain.OrganizationID(id)
	o.Type = models.OrganizationType(typ)
	if super.Valid {
		sup := domain.OrganizationID(super.UUID)
		o.SuperOrganizationID = &sup
	}
	return &o, nil
}

func (s *Postgres) queryOrganizations(ctx context.Context, op, where string, args ...any) ([]*models.ResearchOrganization, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+organizationColumns+` FROM organizations `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, translate(err, op)
	}
	defer rows.Close()
	var out []*models.ResearchOrganization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, translate(err, op)
		}
		out = append(out, o)
	}
	return out, translate(rows.Err(), op)
}

func (s *Postgres) FindOrganizationByID(ctx context.Context, id domain.OrganizationID) (*models.ResearchOrganization, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, uuid.UUID(id))
	o, err := scanOrganization(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("organization", id)
	}
	if err != nil {
		return nil, translate(err, "find organization")
	}
	return o, nil
}

func (s *Postgres) ListOrganizations(ctx context.Context) ([]*models.ResearchOrganization, error) {
	return s.queryOrganizations(ctx, "list organizations", "")
}

func (s *Postgres) ListSubOrganizations(ctx context.Context, id domain.OrganizationID) ([]*models.ResearchOrganization, error) {
	return s.queryOrganizations(ctx, "list sub-organizations", "WHERE super_organization_id = $1", uuid.UUID(id))
}

func (s *Postgres) SaveOrganization(ctx context.Context, o *models.ResearchOrganization) error {
	var super *uuid.UUID
	if o.SuperOrganizationID != nil {
		u := uuid.UUID(*o.SuperOrganizationID)
		super = &u
	}
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO organizations (`+organizationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			acronym = EXCLUDED.acronym,
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			country = EXCLUDED.country,
			rnsr = EXCLUDED.rnsr,
			national_identifier = EXCLUDED.national_identifier,
			description = EXCLUDED.description,
			url = EXCLUDED.url,
			super_organization_id = EXCLUDED.super_organization_id,
			updated_at = EXCLUDED.updated_at
	`,
		uuid.UUID(o.ID), o.Acronym, o.Name, string(o.Type), o.Country, o.RNSR, o.NationalIdentifier,
		o.Description, o.URL, nullUUID(super), o.CreatedAt, o.UpdatedAt,
	)
	return translate(err, "save organization")
}

func (s *Postgres) DeleteOrganization(ctx context.Context, id domain.OrganizationID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return translate(err, "delete organization")
	}
	return deleted(res, "organization", id)
}

func (s *Postgres) CountOrganizationReferences(ctx context.Context) (map[domain.OrganizationID]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT organization_id, COUNT(*) FROM memberships GROUP BY organization_id
		UNION ALL
		SELECT super_organization_id, COUNT(*) FROM organizations
		WHERE super_organization_id IS NOT NULL GROUP BY super_organization_id
	`)
	if err != nil {
		return nil, translate(err, "count organization references")
	}
	return scanCounts(rows, func(id uuid.UUID) domain.OrganizationID { return domain.OrganizationID(id) })
}

// memberships

const membershipColumns = `id, person_id, organization_id, status, cnu_section, conrs_section,
	french_bap, responsibility, permanent_position, main_position, member_since, member_to,
	created_at, updated_at`

func scanMembership(row scanner) (*models.Membership, error) {
	var (
		m              models.Membership
		id, pid, oid   uuid.UUID
		status, bap    string
		responsibility string
		since, to      sql.NullTime
	)
	err := row.Scan(&id, &pid, &oid, &status, &m.Classification.CNUSection, &m.Classification.CoNRSSection,
		&bap, &responsibility, &m.PermanentPosition, &m.MainPosition, &since, &to,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.ID = domain.MembershipID(id)
	m.PersonID = domain.PersonID(pid)
	m.OrganizationID = domain.OrganizationID(oid)
	m.Status = models.MemberStatus(status)
	m.Classification.FrenchBAP = models.FrenchBAP(bap)
	m.Responsibility = models.Responsibility(responsibility)
	m.Since = datePtr(since)
	m.To = datePtr(to)
	return &m, nil
}

func (s *Postgres) queryMemberships(ctx context.Context, op, where string, args ...any) ([]*models.Membership, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+membershipColumns+` FROM memberships `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, translate(err, op)
	}
	defer rows.Close()
	var out []*models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, translate(err, op)
		}
		out = append(out, m)
	}
	return out, translate(rows.Err(), op)
}

func (s *Postgres) FindMembershipByID(ctx context.Context, id domain.MembershipID) (*models.Membership, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, uuid.UUID(id))
	m, err := scanMembership(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("membership", id)
	}
	if err != nil {
		return nil, translate(err, "find membership")
	}
	return m, nil
}

func (s *Postgres) ListMembershipsByPerson(ctx context.Context, id domain.PersonID) ([]*models.Membership, error) {
	return s.queryMemberships(ctx, "list memberships by person", "WHERE person_id = $1", uuid.UUID(id))
}

func (s *Postgres) ListMembershipsByOrganization(ctx context.Context, id domain.OrganizationID) ([]*models.Membership, error) {
	return s.queryMemberships(ctx, "list memberships by organization", "WHERE organization_id = $1", uuid.UUID(id))
}

func (s *Postgres) ListMembershipsForPair(ctx context.Context, person domain.PersonID, org domain.OrganizationID) ([]*models.Membership, error) {
	return s.queryMemberships(ctx, "list memberships for pair",
		"WHERE person_id = $1 AND organization_id = $2", uuid.UUID(person), uuid.UUID(org))
}

func (s *Postgres) SaveMembership(ctx context.Context, m *models.Membership) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO memberships (`+membershipColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			person_id = EXCLUDED.person_id,
			organization_id = EXCLUDED.organization_id,
			status = EXCLUDED.status,
			cnu_section = EXCLUDED.cnu_section,
			conrs_section = EXCLUDED.conrs_section,
			french_bap = EXCLUDED.french_bap,
			responsibility = EXCLUDED.responsibility,
			permanent_position = EXCLUDED.permanent_position,
			main_position = EXCLUDED.main_position,
			member_since = EXCLUDED.member_since,
			member_to = EXCLUDED.member_to,
			updated_at = EXCLUDED.updated_at
	`,
		uuid.UUID(m.ID), uuid.UUID(m.PersonID), uuid.UUID(m.OrganizationID), string(m.Status),
		m.Classification.CNUSection, m.Classification.CoNRSSection, string(m.Classification.FrenchBAP),
		string(m.Responsibility), m.PermanentPosition, m.MainPosition,
		nullDate(m.Since), nullDate(m.To), m.CreatedAt, m.UpdatedAt,
	)
	return translate(err, "save membership")
}

func (s *Postgres) DeleteMembership(ctx context.Context, id domain.MembershipID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return translate(err, "delete membership")
	}
	return deleted(res, "membership", id)
}

// authorships

func (s *Postgres) queryAuthorships(ctx context.Context, op, where string, args ...any) ([]*models.Authorship, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, person_id, paper_id, rank, created_at FROM authorships `+where, args...)
	if err != nil {
		return nil, translate(err, op)
	}
	defer rows.Close()
	var out []*models.Authorship
	for rows.Next() {
		var (
			a               models.Authorship
			id, person, pid uuid.UUID
		)
		if err := rows.Scan(&id, &person, &pid, &a.Rank, &a.CreatedAt); err != nil {
			return nil, translate(err, op)
		}
		a.ID = domain.AuthorshipID(id)
		a.PersonID = domain.PersonID(person)
		a.PaperID = domain.PaperID(pid)
		out = append(out, &a)
	}
	return out, translate(rows.Err(), op)
}

func (s *Postgres) ListAuthorshipsByPerson(ctx context.Context, id domain.PersonID) ([]*models.Authorship, error) {
	return s.queryAuthorships(ctx, "list authorships by person", "WHERE person_id = $1 ORDER BY created_at, id", uuid.UUID(id))
}

func (s *Postgres) ListAuthorshipsByPaper(ctx context.Context, id domain.PaperID) ([]*models.Authorship, error) {
	return s.queryAuthorships(ctx, "list authorships by paper", "WHERE paper_id = $1 ORDER BY rank, created_at, id", uuid.UUID(id))
}

func (s *Postgres) SaveAuthorship(ctx context.Context, a *models.Authorship) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO authorships (id, person_id, paper_id, rank, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			person_id = EXCLUDED.person_id,
			paper_id = EXCLUDED.paper_id,
			rank = EXCLUDED.rank
	`, uuid.UUID(a.ID), uuid.UUID(a.PersonID), uuid.UUID(a.PaperID), a.Rank, a.CreatedAt)
	return translate(err, "save authorship")
}

func (s *Postgres) DeleteAuthorship(ctx context.Context, id domain.AuthorshipID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM authorships WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return translate(err, "delete authorship")
	}
	return deleted(res, "authorship", id)
}

// venues

const (
	venueJournal    = "journal"
	venueConference = "conference"
)

// loadIndicators fetches the yearly indicators of many venues at once.
func (s *Postgres) loadIndicators(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]map[int]models.QualityIndicators, error) {
	out := make(map[uuid.UUID]map[int]models.QualityIndicators)
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT venue_id, year, scimago_quartile, wos_quartile, impact_factor, core_ranking
		FROM venue_indicators WHERE venue_id = ANY($1::uuid[])
	`, pq.Array(keys))
	if err != nil {
		return nil, translate(err, "load indicators")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   uuid.UUID
			year int
			q    models.QualityIndicators
		)
		if err := rows.Scan(&id, &year, &q.ScimagoQuartile, &q.WosQuartile, &q.ImpactFactor, &q.CoreRanking); err != nil {
			return nil, translate(err, "scan indicators")
		}
		if out[id] == nil {
			out[id] = make(map[int]models.QualityIndicators)
		}
		out[id][year] = q
	}
	return out, translate(rows.Err(), "load indicators")
}

// replaceIndicators rewrites every indicator row of a venue in one batch.
func (s *Postgres) replaceIndicators(ctx context.Context, id uuid.UUID, kind string, indicators map[int]models.QualityIndicators) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM venue_indicators WHERE venue_id = $1`, id); err != nil {
		return translate(err, "clear indicators")
	}
	if len(indicators) == 0 {
		return nil
	}
	var (
		years        []int64
		scimago, wos []string
		impact       []float64
		core         []string
	)
	for year, q := range indicators {
		years = append(years, int64(year))
		scimago = append(scimago, q.ScimagoQuartile)
		wos = append(wos, q.WosQuartile)
		impact = append(impact, q.ImpactFactor)
		core = append(core, q.CoreRanking)
	}
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO venue_indicators (venue_id, venue_kind, year, scimago_quartile, wos_quartile, impact_factor, core_ranking)
		SELECT $1::uuid, $2::text, * FROM unnest($3::int[], $4::text[], $5::text[], $6::float8[], $7::text[])
	`, id, kind, pq.Array(years), pq.Array(scimago), pq.Array(wos), pq.Array(impact), pq.Array(core))
	return translate(err, "save indicators")
}

const journalColumns = `id, name, publisher, address, issn, isbn, url, scimago_id, wos_id,
	open_access, created_at, updated_at`

func scanJournal(row scanner) (*models.Journal, error) {
	var (
		j  models.Journal
		id uuid.UUID
	)
	err := row.Scan(&id, &j.Name, &j.Publisher, &j.Address, &j.ISSN, &j.ISBN, &j.URL,
		&j.ScimagoID, &j.WosID, &j.OpenAccess, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.ID = domain.JournalID(id)
	return &j, nil
}

func (s *Postgres) FindJournalByID(ctx context.Context, id domain.JournalID) (*models.Journal, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+journalColumns+` FROM journals WHERE id = $1`, uuid.UUID(id))
	j, err := scanJournal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("journal", id)
	}
	if err != nil {
		return nil, translate(err, "find journal")
	}
	ind, err := s.loadIndicators(ctx, []uuid.UUID{uuid.UUID(id)})
	if err != nil {
		return nil, err
	}
	j.Indicators = ind[uuid.UUID(id)]
	return j, nil
}

func (s *Postgres) ListJournals(ctx context.Context) ([]*models.Journal, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+journalColumns+` FROM journals ORDER BY created_at, id`)
	if err != nil {
		return nil, translate(err, "list journals")
	}
	defer rows.Close()
	var (
		out []*models.Journal
		ids []uuid.UUID
	)
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, translate(err, "scan journal")
		}
		out = append(out, j)
		ids = append(ids, uuid.UUID(j.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list journals")
	}
	ind, err := s.loadIndicators(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, j := range out {
		j.Indicators = ind[uuid.UUID(j.ID)]
	}
	return out, nil
}

func (s *Postgres) SaveJournal(ctx context.Context, j *models.Journal) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO journals (`+journalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			publisher = EXCLUDED.publisher,
			address = EXCLUDED.address,
			issn = EXCLUDED.issn,
			isbn = EXCLUDED.isbn,
			url = EXCLUDED.url,
			scimago_id = EXCLUDED.scimago_id,
			wos_id = EXCLUDED.wos_id,
			open_access = EXCLUDED.open_access,
			updated_at = EXCLUDED.updated_at
	`,
		uuid.UUID(j.ID), j.Name, j.Publisher, j.Address, j.ISSN, j.ISBN, j.URL,
		j.ScimagoID, j.WosID, j.OpenAccess, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return translate(err, "save journal")
	}
	return s.replaceIndicators(ctx, uuid.UUID(j.ID), venueJournal, j.Indicators)
}

func (s *Postgres) DeleteJournal(ctx context.Context, id domain.JournalID) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM venue_indicators WHERE venue_id = $1`, uuid.UUID(id)); err != nil {
		return translate(err, "delete journal indicators")
	}
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return translate(err, "delete journal")
	}
	return deleted(res, "journal", id)
}

func (s *Postgres) CountPapersByJournal(ctx context.Context) (map[domain.JournalID]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT journal_id, COUNT(*) FROM papers WHERE journal_id IS NOT NULL GROUP BY journal_id`)
	if err != nil {
		return nil, translate(err, "count papers by journal")
	}
	return scanCounts(rows, func(id uuid.UUID) domain.JournalID { return domain.JournalID(id) })
}

const conferenceColumns = `id, acronym, name, publisher, url, core_id, open_access, created_at, updated_at`

func scanConference(row scanner) (*models.Conference, error) {
	var (
		c  models.Conference
		id uuid.UUID
	)
	err := row.Scan(&id, &c.Acronym, &c.Name, &c.Publisher, &c.URL, &c.CoreID, &c.OpenAccess, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = domain.ConferenceID(id)
	return &c, nil
}

func (s *Postgres) FindConferenceByID(ctx context.Context, id domain.ConferenceID) (*models.Conference, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+conferenceColumns+` FROM conferences WHERE id = $1`, uuid.UUID(id))
	c, err := scanConference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("conference", id)
	}
	if err != nil {
		return nil, translate(err, "find conference")
	}
	ind, err := s.loadIndicators(ctx, []uuid.UUID{uuid.UUID(id)})
	if err != nil {
		return nil, err
	}
	c.Indicators = ind[uuid.UUID(id)]
	return c, nil
}

func (s *Postgres) ListConferences(ctx context.Context) ([]*models.Conference, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+conferenceColumns+` FROM conferences ORDER BY created_at, id`)
	if err != nil {
		return nil, translate(err, "list conferences")
	}
	defer rows.Close()
	var (
		out []*models.Conference
		ids []uuid.UUID
	)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, translate(err, "scan conference")
		}
		out = append(out, c)
		ids = append(ids, uuid.UUID(c.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list conferences")
	}
	ind, err := s.loadIndicators(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range out {
		c.Indicators = ind[uuid.UUID(c.ID)]
	}
	return out, nil
}

func (s *Postgres) SaveConference(ctx context.Context, c *models.Conference) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO conferences (`+conferenceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			acronym = EXCLUDED.acronym,
			name = EXCLUDED.name,
			publisher = EXCLUDED.publisher,
			url = EXCLUDED.url,
			core_id = EXCLUDED.core_id,
			open_access = EXCLUDED.open_access,
			updated_at = EXCLUDED.updated_at
	`,
		uuid.UUID(c.ID), c.Acronym, c.Name, c.Publisher, c.URL, c.CoreID, c.OpenAccess, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return translate(err, "save conference")
	}
	return s.replaceIndicators(ctx, uuid.UUID(c.ID), venueConference, c.Indicators)
}

func (s *Postgres) DeleteConference(ctx context.Context, id domain.ConferenceID) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM venue_indicators WHERE venue_id = $1`, uuid.UUID(id)); err != nil {
		return translate(err, "delete conference indicators")
	}
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM conferences WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return translate(err, "delete conference")
	}
	return deleted(res, "conference", id)
}

func (s *Postgres) CountPapersByConference(ctx context.Context) (map[domain.ConferenceID]int, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT conference_id, COUNT(*) FROM papers WHERE conference_id IS NOT NULL GROUP BY conference_id`)
	if err != nil {
		return nil, translate(err, "count papers by conference")
	}
	return scanCounts(rows, func(id uuid.UUID) domain.ConferenceID { return domain.ConferenceID(id) })
}

// papers

const paperColumns = `id, title, year, doi, journal_id, conference_id, created_at, updated_at`

func scanPaper(row scanner) (*models.Paper, error) {
	var (
		p           models.Paper
		id          uuid.UUID
		jid, confID uuid.NullUUID
	)
	if err := row.Scan(&id, &p.Title, &p.Year, &p.DOI, &jid, &confID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = domain.PaperID(id)
	if jid.Valid {
		j := domain.JournalID(jid.UUID)
		p.JournalID = &j
	}
	if confID.Valid {
		c := domain.ConferenceID(confID.UUID)
		p.ConferenceID = &c
	}
	return &p, nil
}

func (s *Postgres) queryPapers(ctx context.Context, op, where string, args ...any) ([]*models.Paper, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+paperColumns+` FROM papers `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, translate(err, op)
	}
	defer rows.Close()
	var out []*models.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, translate(err, op)
		}
		out = append(out, p)
	}
	return out, translate(rows.Err(), op)
}

func (s *Postgres) FindPaperByID(ctx context.Context, id domain.PaperID) (*models.Paper, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = $1`, uuid.UUID(id))
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("paper", id)
	}
	if err != nil {
		return nil, translate(err, "find paper")
	}
	return p, nil
}

func (s *Postgres) ListPapersByJournal(ctx context.Context, id domain.JournalID) ([]*models.Paper, error) {
	return s.queryPapers(ctx, "list papers by journal", "WHERE journal_id = $1", uuid.UUID(id))
}

func (s *Postgres) ListPapersByConference(ctx context.Context, id domain.ConferenceID) ([]*models.Paper, error) {
	return s.queryPapers(ctx, "list papers by conference", "WHERE conference_id = $1", uuid.UUID(id))
}

func (s *Postgres) SavePaper(ctx context.Context, p *models.Paper) error {
	var jid, cid *uuid.UUID
	if p.JournalID != nil {
		u := uuid.UUID(*p.JournalID)
		jid = &u
	}
	if p.ConferenceID != nil {
		u := uuid.UUID(*p.ConferenceID)
		cid = &u
	}
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO papers (`+paperColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			year = EXCLUDED.year,
			doi = EXCLUDED.doi,
			journal_id = EXCLUDED.journal_id,
			conference_id = EXCLUDED.conference_id,
			updated_at = EXCLUDED.updated_at
	`, uuid.UUID(p.ID), p.Title, p.Year, p.DOI, nullUUID(jid), nullUUID(cid), p.CreatedAt, p.UpdatedAt)
	return translate(err, "save paper")
}

func (s *Postgres) ResolveKind(ctx context.Context, id uuid.UUID) (domain.Kind, error) {
	var kind string
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT 'person' FROM persons WHERE id = $1
		UNION ALL SELECT 'organization' FROM organizations WHERE id = $1
		UNION ALL SELECT 'journal' FROM journals WHERE id = $1
		UNION ALL SELECT 'conference' FROM conferences WHERE id = $1
		LIMIT 1
	`, id).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("entity %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", translate(err, "resolve kind")
	}
	return domain.Kind(kind), nil
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/store"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
)

// Day parses YYYY-MM-DD; the empty string yields nil.
func Day(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := models.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return &d
}

// Lab seeds a store with entities for tests. Every entity gets a
// creation time one second after the previous one so listings are stable.
type Lab struct {
	t   testing.TB
	st  store.Store
	ctx context.Context
	now time.Time
}

func NewLab(t testing.TB, st store.Store) *Lab {
	return &Lab{t: t, st: st, ctx: context.Background(), now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (l *Lab) tick() time.Time {
	l.now = l.now.Add(time.Second)
	return l.now
}

func (l *Lab) Person(first, last string) *models.Person {
	l.t.Helper()
	p, err := models.NewPerson(domain.NewPersonID(), first, last, l.tick())
	require.NoError(l.t, err)
	require.NoError(l.t, l.st.SavePerson(l.ctx, p))
	return p
}

// RawPerson stores a person without factory validation, for malformed data.
func (l *Lab) RawPerson(first, last string) *models.Person {
	l.t.Helper()
	now := l.tick()
	p := &models.Person{ID: domain.NewPersonID(), FirstName: first, LastName: last, CreatedAt: now, UpdatedAt: now}
	require.NoError(l.t, l.st.SavePerson(l.ctx, p))
	return p
}

func (l *Lab) Organization(acronym, name string) *models.ResearchOrganization {
	l.t.Helper()
	o, err := models.NewOrganization(domain.NewOrganizationID(), acronym, name, l.tick())
	require.NoError(l.t, err)
	require.NoError(l.t, l.st.SaveOrganization(l.ctx, o))
	return o
}

// SubOrganization creates an organization under parent.
func (l *Lab) SubOrganization(parent *models.ResearchOrganization, acronym, name string) *models.ResearchOrganization {
	l.t.Helper()
	o, err := models.NewOrganization(domain.NewOrganizationID(), acronym, name, l.tick())
	require.NoError(l.t, err)
	o.SuperOrganizationID = &parent.ID
	require.NoError(l.t, l.st.SaveOrganization(l.ctx, o))
	return o
}

func (l *Lab) Membership(p *models.Person, o *models.ResearchOrganization, since, to string) *models.Membership {
	l.t.Helper()
	m, err := models.NewMembership(domain.NewMembershipID(), p.ID, o.ID, models.StatusResearcher, Day(since), Day(to), l.tick())
	require.NoError(l.t, err)
	require.NoError(l.t, l.st.SaveMembership(l.ctx, m))
	return m
}

func (l *Lab) Paper(title string) *models.Paper {
	l.t.Helper()
	p, err := models.NewPaper(domain.NewPaperID(), title, 2024, l.tick())
	require.NoError(l.t, err)
	require.NoError(l.t, l.st.SavePaper(l.ctx, p))
	return p
}

func (l *Lab) JournalPaper(title string, j *models.Journal) *models.Paper {
	l.t.Helper()
	p, err := models.NewPaper(domain.NewPaperID(), title, 2024, l.tick())
	require.NoError(l.t, err)
	p.JournalID = &j.ID
	require.NoError(l.t, l.st.SavePaper(l.ctx, p))
	return p
}

func (l *Lab) ConferencePaper(title string, c *models.Conference) *models.Paper {
	l.t.Helper()
	p, err := models.NewPaper(domain.NewPaperID(), title, 2024, l.tick())
	require.NoError(l.t, err)
	p.ConferenceID = &c.ID
	require.NoError(l.t, l.st.SavePaper(l.ctx, p))
	return p
}

func (l *Lab) Authorship(p *models.Person, paper *models.Paper, rank int) *models.Authorship {
	l.t.Helper()
	a, err := models.NewAuthorship(domain.NewAuthorshipID(), p.ID, paper.ID, rank, l.tick())
	require.NoError(l.t, err)
	require.NoError(l.t, l.st.SaveAuthorship(l.ctx, a))
	return a
}

func (l *Lab) Journal(name string) *models.Journal {
	l.t.Helper()
	j, err := models.NewJournal(domain.NewJournalID(), name, l.tick())
	require.NoError(l.t, err)
	require.NoError(l.t, l.st.SaveJournal(l.ctx, j))
	return j
}

func (l *Lab) Conference(acronym, name string) *models.Conference {
	l.t.Helper()
	c, err := models.NewConference(domain.NewConferenceID(), acronym, name, l.tick())
	require.NoError(l.t, err)
	require.NoError(l.t, l.st.SaveConference(l.ctx, c))
	return c
}

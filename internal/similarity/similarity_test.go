package similarity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
)

func person(first, last string) PersonCandidate {
	return PersonCandidate{Person: &models.Person{ID: domain.NewPersonID(), FirstName: first, LastName: last}}
}

func TestPersonCandidateDuplicate(t *testing.T) {
	cmp := NewPersonComparator()

	tests := []struct {
		name string
		a, b PersonCandidate
		want bool
	}{
		{"same name", person("Jean", "Dupont"), person("Jean", "Dupont"), true},
		{"accents and case", person("Éric", "Lefèvre"), person("eric", "LEFEVRE"), true},
		{"one letter off in last name", person("Jean", "Dupont"), person("Jean", "Dupond"), true},
		{"initial against full first name", person("J.", "Dupont"), person("Jean", "Dupont"), true},
		{"compound initials", person("J.-P.", "Martin"), person("Jean-Pierre", "Martin"), true},
		{"initial of another name", person("P.", "Dupont"), person("Jean", "Dupont"), false},
		{"different last names", person("Jean", "Dupont"), person("Jean", "Lefebvre"), false},
		{"different first names", person("Jean", "Dupont"), person("Marc", "Dupont"), false},
		{"empty last name", person("Jean", ""), person("Jean", ""), false},
		{"empty first name", person("", "Dupont"), person("", "Dupont"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cmp.IsCandidateDuplicate(tt.a, tt.b))
			assert.Equal(t, tt.want, cmp.IsCandidateDuplicate(tt.b, tt.a), "predicate must be symmetric")
		})
	}
}

func TestPersonORCIDDecides(t *testing.T) {
	cmp := NewPersonComparator()

	a, b := person("Jean", "Dupont"), person("Jean", "Dupont")
	a.Person.ORCID = "0000-0002-1825-0097"
	b.Person.ORCID = "0000-0001-5109-3700"
	assert.False(t, cmp.IsCandidateDuplicate(a, b), "homonyms with distinct ORCIDs")

	c, d := person("J.", "Dupont"), person("Jean-Marc", "Dupuis-Leroy")
	c.Person.ORCID = "https://orcid.org/0000-0002-1825-0097"
	d.Person.ORCID = "0000000218250097"
	assert.True(t, cmp.IsCandidateDuplicate(c, d), "same ORCID whatever the names")
}

func TestPersonThreshold(t *testing.T) {
	strict := NewPersonComparator(WithThreshold(0.95))
	assert.False(t, strict.IsCandidateDuplicate(person("Jean", "Dupont"), person("Jean", "Dupond")))

	ignored := NewPersonComparator(WithThreshold(1.5))
	assert.Equal(t, DefaultThreshold, ignored.Threshold())
}

func TestPersonCompare(t *testing.T) {
	cmp := NewPersonComparator()

	busy := person("Jean", "Dupont")
	busy.Authorships = 10
	idle := person("Jean", "Dupond")
	idle.Authorships = 2
	assert.Negative(t, cmp.Compare(busy, idle))
	assert.Positive(t, cmp.Compare(idle, busy))

	t.Run("active memberships break authorship ties", func(t *testing.T) {
		a, b := person("Jean", "Dupont"), person("Jean", "Dupont")
		a.ActiveMemberships = 1
		assert.Negative(t, cmp.Compare(a, b))
	})

	t.Run("identifier is the last resort", func(t *testing.T) {
		a := person("Jean", "Dupont")
		b := person("Jean", "Dupont")
		a.Person.ID = domain.PersonID(uuid.MustParse("00000000-0000-0000-0000-000000000001"))
		b.Person.ID = domain.PersonID(uuid.MustParse("00000000-0000-0000-0000-000000000002"))
		assert.Negative(t, cmp.Compare(a, b))
		assert.Zero(t, cmp.Compare(a, a))
	})

	t.Run("tie-break runs before the identifier", func(t *testing.T) {
		validatedFirst := NewPersonComparator(WithTieBreak(func(a, b *models.Person) int {
			switch {
			case a.Validated && !b.Validated:
				return -1
			case !a.Validated && b.Validated:
				return 1
			}
			return 0
		}))
		a := person("Jean", "Dupont")
		b := person("Jean", "Dupont")
		a.Person.ID = domain.PersonID(uuid.MustParse("ffffffff-0000-0000-0000-000000000001"))
		b.Person.ID = domain.PersonID(uuid.MustParse("00000000-0000-0000-0000-000000000002"))
		a.Person.Validated = true
		assert.Negative(t, validatedFirst.Compare(a, b))
	})
}

func TestOrganizationComparator(t *testing.T) {
	cmp := NewOrganizationComparator(DefaultThreshold)
	org := func(acronym, name, rnsr string) OrganizationCandidate {
		return OrganizationCandidate{Organization: &models.ResearchOrganization{
			ID: domain.NewOrganizationID(), Acronym: acronym, Name: name, RNSR: rnsr,
		}}
	}

	assert.True(t, cmp.IsCandidateDuplicate(org("CIAD", "", ""), org("ciad", "Other name", "")))
	assert.True(t, cmp.IsCandidateDuplicate(org("", "Université de Technologie", ""), org("UTBM", "Universite de technologie", "")))
	assert.False(t, cmp.IsCandidateDuplicate(org("CIAD", "", "201220256A"), org("CIAD", "", "199912345B")))
	assert.False(t, cmp.IsCandidateDuplicate(org("", "", ""), org("", "", "")))

	a, b := org("CIAD", "", ""), org("CIAD", "", "")
	a.References = 3
	assert.Negative(t, cmp.Compare(a, b))
}

func TestJournalComparator(t *testing.T) {
	cmp := NewJournalComparator(DefaultThreshold)
	journal := func(name, issn string) JournalCandidate {
		return JournalCandidate{Journal: &models.Journal{ID: domain.NewJournalID(), Name: name, ISSN: issn}}
	}

	assert.True(t, cmp.IsCandidateDuplicate(journal("IEEE Trans. on Robotics", ""), journal("IEEE Trans on Robotics", "")))
	assert.True(t, cmp.IsCandidateDuplicate(journal("T-RO", "1552-3098"), journal("IEEE Transactions on Robotics", "15523098")))
	assert.False(t, cmp.IsCandidateDuplicate(journal("Robotics", "1552-3098"), journal("Robotics", "0921-8890")))
}

func TestConferenceComparator(t *testing.T) {
	cmp := NewConferenceComparator(DefaultThreshold)
	conf := func(acronym, name string) ConferenceCandidate {
		return ConferenceCandidate{Conference: &models.Conference{ID: domain.NewConferenceID(), Acronym: acronym, Name: name}}
	}

	assert.True(t, cmp.IsCandidateDuplicate(conf("IROS", ""), conf("iros", "Intelligent Robots and Systems")))
	assert.False(t, cmp.IsCandidateDuplicate(conf("IROS", ""), conf("ICRA", "")))
	assert.False(t, cmp.IsCandidateDuplicate(conf("", ""), conf("", "")))
}

package models

import (
	"maps"
	"strings"
	"time"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// QualityIndicators are the rankings of a venue for one year.
type QualityIndicators struct {
	ScimagoQuartile string  `json:"scimago_quartile,omitempty"`
	WosQuartile     string  `json:"wos_quartile,omitempty"`
	ImpactFactor    float64 `json:"impact_factor,omitempty"`
	CoreRanking     string  `json:"core_ranking,omitempty"`
}

// IsEmpty reports whether no indicator is set.
func (q QualityIndicators) IsEmpty() bool {
	return q == QualityIndicators{}
}

// Journal is a periodical that publishes papers.
type Journal struct {
	ID         domain.JournalID          `json:"id"`
	Name       string                    `json:"name"`
	Publisher  string                    `json:"publisher,omitempty"`
	Address    string                    `json:"address,omitempty"`
	ISSN       string                    `json:"issn,omitempty"`
	ISBN       string                    `json:"isbn,omitempty"`
	URL        string                    `json:"url,omitempty"`
	ScimagoID  string                    `json:"scimago_id,omitempty"`
	WosID      string                    `json:"wos_id,omitempty"`
	OpenAccess bool                      `json:"open_access"`
	Indicators map[int]QualityIndicators `json:"indicators,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// NewJournal requires a name.
func NewJournal(id domain.JournalID, name string, now time.Time) (*Journal, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "journal ID required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "journal name is required")
	}
	return &Journal{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// BackfillFrom copies empty attributes and the indicator years missing on j.
func (j *Journal) BackfillFrom(src *Journal) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}
	fill(&j.Publisher, src.Publisher)
	fill(&j.Address, src.Address)
	fill(&j.ISSN, src.ISSN)
	fill(&j.ISBN, src.ISBN)
	fill(&j.URL, src.URL)
	fill(&j.ScimagoID, src.ScimagoID)
	fill(&j.WosID, src.WosID)
	if !j.OpenAccess && src.OpenAccess {
		j.OpenAccess = true
		changed = true
	}
	if mergeIndicators(&j.Indicators, src.Indicators) {
		changed = true
	}
	return changed
}

// Clone returns a deep copy.
func (j *Journal) Clone() *Journal {
	if j == nil {
		return nil
	}
	c := *j
	c.Indicators = maps.Clone(j.Indicators)
	return &c
}

// Conference is a recurring scientific event whose proceedings hold papers.
type Conference struct {
	ID         domain.ConferenceID       `json:"id"`
	Acronym    string                    `json:"acronym,omitempty"`
	Name       string                    `json:"name"`
	Publisher  string                    `json:"publisher,omitempty"`
	URL        string                    `json:"url,omitempty"`
	CoreID     string                    `json:"core_id,omitempty"`
	OpenAccess bool                      `json:"open_access"`
	Indicators map[int]QualityIndicators `json:"indicators,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// NewConference requires an acronym or a name.
func NewConference(id domain.ConferenceID, acronym, name string, now time.Time) (*Conference, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "conference ID required")
	}
	acronym, name = strings.TrimSpace(acronym), strings.TrimSpace(name)
	if acronym == "" && name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "acronym or name is required")
	}
	return &Conference{ID: id, Acronym: acronym, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// BackfillFrom copies empty attributes and the indicator years missing on c.
func (c *Conference) BackfillFrom(src *Conference) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}
	fill(&c.Acronym, src.Acronym)
	fill(&c.Name, src.Name)
	fill(&c.Publisher, src.Publisher)
	fill(&c.URL, src.URL)
	fill(&c.CoreID, src.CoreID)
	if !c.OpenAccess && src.OpenAccess {
		c.OpenAccess = true
		changed = true
	}
	if mergeIndicators(&c.Indicators, src.Indicators) {
		changed = true
	}
	return changed
}

// Clone returns a deep copy.
func (c *Conference) Clone() *Conference {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Indicators = maps.Clone(c.Indicators)
	return &cp
}

// mergeIndicators adds the years of src that dst lacks.
func mergeIndicators(dst *map[int]QualityIndicators, src map[int]QualityIndicators) bool {
	changed := false
	for year, q := range src {
		if q.IsEmpty() {
			continue
		}
		if *dst == nil {
			*dst = make(map[int]QualityIndicators, len(src))
		}
		if _, ok := (*dst)[year]; ok {
			continue
		}
		(*dst)[year] = q
		changed = true
	}
	return changed
}

// Paper is a publication. It appears in at most one venue.
type Paper struct {
	ID           domain.PaperID       `json:"id"`
	Title        string               `json:"title"`
	Year         int                  `json:"year"`
	DOI          string               `json:"doi,omitempty"`
	JournalID    *domain.JournalID    `json:"journal_id,omitempty"`
	ConferenceID *domain.ConferenceID `json:"conference_id,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// NewPaper requires a title.
func NewPaper(id domain.PaperID, title string, year int, now time.Time) (*Paper, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "paper ID required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "paper title is required")
	}
	return &Paper{ID: id, Title: title, Year: year, CreatedAt: now, UpdatedAt: now}, nil
}

// Clone returns a deep copy.
func (p *Paper) Clone() *Paper {
	if p == nil {
		return nil
	}
	c := *p
	if p.JournalID != nil {
		j := *p.JournalID
		c.JournalID = &j
	}
	if p.ConferenceID != nil {
		cf := *p.ConferenceID
		c.ConferenceID = &cf
	}
	return &c
}

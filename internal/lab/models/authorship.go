package models

import (
	"time"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// Authorship links a person to a paper at a position in its author list.
type Authorship struct {
	ID        domain.AuthorshipID `json:"id"`
	PersonID  domain.PersonID     `json:"person_id"`
	PaperID   domain.PaperID      `json:"paper_id"`
	Rank      int                 `json:"rank"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewAuthorship validates the links and the rank.
func NewAuthorship(id domain.AuthorshipID, person domain.PersonID, paper domain.PaperID, rank int, now time.Time) (*Authorship, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "authorship ID required")
	}
	if person.IsNil() || paper.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "person and paper are required")
	}
	if rank < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "rank must not be negative")
	}
	return &Authorship{ID: id, PersonID: person, PaperID: paper, Rank: rank, CreatedAt: now}, nil
}

// Clone returns a copy.
func (a *Authorship) Clone() *Authorship {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

package domain

import (
	"bytes"

	"github.com/google/uuid"

	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// Typed identifiers. Each entity kind gets its own type so an organization id
// can never be passed where a person id is expected.
//
// Usage: construct via Parse*ID at trust boundaries, or New*ID when creating
// an entity. Direct conversion from uuid.UUID is reserved for stores.
type (
	PersonID       uuid.UUID
	OrganizationID uuid.UUID
	MembershipID   uuid.UUID
	AuthorshipID   uuid.UUID
	JournalID      uuid.UUID
	ConferenceID   uuid.UUID
	PaperID        uuid.UUID
)

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if len(s) > 36 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

func unmarshalUUID(dst *uuid.UUID, text []byte, label string) error {
	u, err := parseUUID(string(text), label)
	if err != nil {
		return err
	}
	*dst = u
	return nil
}

// CompareUUID orders identifiers by their byte representation. It is the
// final tie-break of every preference order so no two entities compare equal.
func CompareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func NewPersonID() PersonID { return PersonID(uuid.New()) }

func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID(s, "person id")
	return PersonID(u), err
}

func (i PersonID) String() string               { return uuid.UUID(i).String() }
func (i PersonID) IsNil() bool                  { return uuid.UUID(i) == uuid.Nil }
func (i PersonID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i *PersonID) UnmarshalText(b []byte) error {
	return unmarshalUUID((*uuid.UUID)(i), b, "person id")
}

func NewOrganizationID() OrganizationID { return OrganizationID(uuid.New()) }

func ParseOrganizationID(s string) (OrganizationID, error) {
	u, err := parseUUID(s, "organization id")
	return OrganizationID(u), err
}

func (i OrganizationID) String() string               { return uuid.UUID(i).String() }
func (i OrganizationID) IsNil() bool                  { return uuid.UUID(i) == uuid.Nil }
func (i OrganizationID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i *OrganizationID) UnmarshalText(b []byte) error {
	return unmarshalUUID((*uuid.UUID)(i), b, "organization id")
}

func NewMembershipID() MembershipID { return MembershipID(uuid.New()) }

func ParseMembershipID(s string) (MembershipID, error) {
	u, err := parseUUID(s, "membership id")
	return MembershipID(u), err
}

func (i MembershipID) String() string               { return uuid.UUID(i).String() }
func (i MembershipID) IsNil() bool                  { return uuid.UUID(i) == uuid.Nil }
func (i MembershipID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i *MembershipID) UnmarshalText(b []byte) error {
	return unmarshalUUID((*uuid.UUID)(i), b, "membership id")
}

func NewAuthorshipID() AuthorshipID { return AuthorshipID(uuid.New()) }

func ParseAuthorshipID(s string) (AuthorshipID, error) {
	u, err := parseUUID(s, "authorship id")
	return AuthorshipID(u), err
}

func (i AuthorshipID) String() string               { return uuid.UUID(i).String() }
func (i AuthorshipID) IsNil() bool                  { return uuid.UUID(i) == uuid.Nil }
func (i AuthorshipID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i *AuthorshipID) UnmarshalText(b []byte) error {
	return unmarshalUUID((*uuid.UUID)(i), b, "authorship id")
}

func NewJournalID() JournalID { return JournalID(uuid.New()) }

func ParseJournalID(s string) (JournalID, error) {
	u, err := parseUUID(s, "journal id")
	return JournalID(u), err
}

func (i JournalID) String() string               { return uuid.UUID(i).String() }
func (i JournalID) IsNil() bool                  { return uuid.UUID(i) == uuid.Nil }
func (i JournalID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i *JournalID) UnmarshalText(b []byte) error {
	return unmarshalUUID((*uuid.UUID)(i), b, "journal id")
}

func NewConferenceID() ConferenceID { return ConferenceID(uuid.New()) }

func ParseConferenceID(s string) (ConferenceID, error) {
	u, err := parseUUID(s, "conference id")
	return ConferenceID(u), err
}

func (i ConferenceID) String() string               { return uuid.UUID(i).String() }
func (i ConferenceID) IsNil() bool                  { return uuid.UUID(i) == uuid.Nil }
func (i ConferenceID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i *ConferenceID) UnmarshalText(b []byte) error {
	return unmarshalUUID((*uuid.UUID)(i), b, "conference id")
}

func NewPaperID() PaperID { return PaperID(uuid.New()) }

func ParsePaperID(s string) (PaperID, error) {
	u, err := parseUUID(s, "paper id")
	return PaperID(u), err
}

func (i PaperID) String() string               { return uuid.UUID(i).String() }
func (i PaperID) IsNil() bool                  { return uuid.UUID(i) == uuid.Nil }
func (i PaperID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i *PaperID) UnmarshalText(b []byte) error {
	return unmarshalUUID((*uuid.UUID)(i), b, "paper id")
}

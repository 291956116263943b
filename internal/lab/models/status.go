package models

// MemberStatus is the role a person holds in an organization.
type MemberStatus string

const (
	StatusEmeritusFullProfessor           MemberStatus = "EMERITUS_FULL_PROFESSOR"
	StatusFullProfessor                   MemberStatus = "FULL_PROFESSOR"
	StatusResearchDirector                MemberStatus = "RESEARCH_DIRECTOR"
	StatusEmeritusAssociateProfessorHDR   MemberStatus = "EMERITUS_ASSOCIATE_PROFESSOR_HDR"
	StatusEmeritusAssociateProfessor      MemberStatus = "EMERITUS_ASSOCIATE_PROFESSOR"
	StatusAssociateProfessorHDR           MemberStatus = "ASSOCIATE_PROFESSOR_HDR"
	StatusAssociateProfessor              MemberStatus = "ASSOCIATE_PROFESSOR"
	StatusContractualResearcherTeacherPhD MemberStatus = "CONTRACTUAL_RESEARCHER_TEACHER_PHD"
	StatusContractualResearcherTeacher    MemberStatus = "CONTRACTUAL_RESEARCHER_TEACHER"
	StatusResearcherPhD                   MemberStatus = "RESEARCHER_PHD"
	StatusResearcher                      MemberStatus = "RESEARCHER"
	StatusPostdoc                         MemberStatus = "POSTDOC"
	StatusResearchEngineerPhD             MemberStatus = "RESEARCH_ENGINEER_PHD"
	StatusResearchEngineer                MemberStatus = "RESEARCH_ENGINEER"
	StatusPhDStudent                      MemberStatus = "PHD_STUDENT"
	StatusEngineerPhD                     MemberStatus = "ENGINEER_PHD"
	StatusEngineer                        MemberStatus = "ENGINEER"
	StatusAdmin                           MemberStatus = "ADMIN"
	StatusTeacherPhD                      MemberStatus = "TEACHER_PHD"
	StatusTeacher                         MemberStatus = "TEACHER"
	StatusMasterStudent                   MemberStatus = "MASTER_STUDENT"
	StatusOtherStudent                    MemberStatus = "OTHER_STUDENT"
	StatusAssociatedMemberPhD             MemberStatus = "ASSOCIATED_MEMBER_PHD"
	StatusAssociatedMember                MemberStatus = "ASSOCIATED_MEMBER"
)

// MemberStatuses lists every status from the most to the least senior.
var MemberStatuses = []MemberStatus{
	StatusEmeritusFullProfessor,
	StatusFullProfessor,
	StatusResearchDirector,
	StatusEmeritusAssociateProfessorHDR,
	StatusEmeritusAssociateProfessor,
	StatusAssociateProfessorHDR,
	StatusAssociateProfessor,
	StatusContractualResearcherTeacherPhD,
	StatusContractualResearcherTeacher,
	StatusResearcherPhD,
	StatusResearcher,
	StatusPostdoc,
	StatusResearchEngineerPhD,
	StatusResearchEngineer,
	StatusPhDStudent,
	StatusEngineerPhD,
	StatusEngineer,
	StatusAdmin,
	StatusTeacherPhD,
	StatusTeacher,
	StatusMasterStudent,
	StatusOtherStudent,
	StatusAssociatedMemberPhD,
	StatusAssociatedMember,
}

var validStatuses = func() map[MemberStatus]struct{} {
	m := make(map[MemberStatus]struct{}, len(MemberStatuses))
	for _, s := range MemberStatuses {
		m[s] = struct{}{}
	}
	return m
}()

// IsValid reports whether s is one of the known statuses.
func (s MemberStatus) IsValid() bool {
	_, ok := validStatuses[s]
	return ok
}

// IsPermanentByDefault reports whether the status normally denotes a tenured position.
func (s MemberStatus) IsPermanentByDefault() bool {
	switch s {
	case StatusFullProfessor, StatusResearchDirector, StatusAssociateProfessorHDR,
		StatusAssociateProfessor, StatusResearcherPhD, StatusResearcher,
		StatusResearchEngineerPhD, StatusResearchEngineer, StatusEngineerPhD,
		StatusEngineer, StatusAdmin, StatusTeacherPhD, StatusTeacher:
		return true
	default:
		return false
	}
}

// IsStudent reports whether the status is a student position.
func (s MemberStatus) IsStudent() bool {
	switch s {
	case StatusPhDStudent, StatusMasterStudent, StatusOtherStudent:
		return true
	default:
		return false
	}
}

func (s MemberStatus) String() string {
	return string(s)
}

// Responsibility is an administrative duty attached to a membership.
type Responsibility string

const (
	ResponsibilityNone            Responsibility = ""
	ResponsibilityDirector        Responsibility = "DIRECTOR"
	ResponsibilityDeputyDirector  Responsibility = "DEPUTY_DIRECTOR"
	ResponsibilityTeamLeader      Responsibility = "TEAM_LEADER"
	ResponsibilityDeputyLeader    Responsibility = "DEPUTY_TEAM_LEADER"
	ResponsibilityCouncilMember   Responsibility = "COUNCIL_MEMBER"
	ResponsibilityProgramDirector Responsibility = "PROGRAM_DIRECTOR"
)

// Responsibilities lists the non-empty responsibilities.
var Responsibilities = []Responsibility{
	ResponsibilityDirector,
	ResponsibilityDeputyDirector,
	ResponsibilityTeamLeader,
	ResponsibilityDeputyLeader,
	ResponsibilityCouncilMember,
	ResponsibilityProgramDirector,
}

// IsValid accepts the known responsibilities and the empty value.
func (r Responsibility) IsValid() bool {
	if r == ResponsibilityNone {
		return true
	}
	for _, known := range Responsibilities {
		if r == known {
			return true
		}
	}
	return false
}

// Classification carries the optional French classification codes of
// a membership: CNU section, CoNRS section and BAP. A zero field means unset.
type Classification struct {
	CNUSection   int       `json:"cnu_section,omitempty"`
	CoNRSSection int       `json:"conrs_section,omitempty"`
	FrenchBAP    FrenchBAP `json:"french_bap,omitempty"`
}

// FrenchBAP is a "branche d'activité professionnelle" letter code (A..J).
type FrenchBAP string

// IsValid accepts the empty value and the letters A through J.
func (b FrenchBAP) IsValid() bool {
	if b == "" {
		return true
	}
	return len(b) == 1 && b[0] >= 'A' && b[0] <= 'J'
}

// Valid checks the ranges of each classification code.
func (c Classification) Valid() bool {
	if c.CNUSection < 0 || c.CNUSection > 99 {
		return false
	}
	if c.CoNRSSection < 0 || c.CoNRSSection > 99 {
		return false
	}
	return c.FrenchBAP.IsValid()
}

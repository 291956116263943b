package membership

import (
	"fmt"
	"time"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// IntervalError reports a membership whose start is after its end.
type IntervalError struct {
	Since time.Time
	To    time.Time
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("membership starts on %s after it ends on %s",
		e.Since.Format(models.DateLayout), e.To.Format(models.DateLayout))
}

func (e *IntervalError) ErrorCode() dErrors.Code {
	return dErrors.CodeInvalidInterval
}

// ConflictError reports the existing membership that would overlap the
// requested one for the same person and organization.
type ConflictError struct {
	MembershipID   domain.MembershipID
	PersonID       domain.PersonID
	OrganizationID domain.OrganizationID
	Since          *time.Time
	To             *time.Time
}

func newConflictError(m *models.Membership) *ConflictError {
	return &ConflictError{
		MembershipID:   m.ID,
		PersonID:       m.PersonID,
		OrganizationID: m.OrganizationID,
		Since:          m.Since,
		To:             m.To,
	}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("membership %s %s of person %s in organization %s overlaps the requested interval",
		e.MembershipID, models.Interval{Since: e.Since, To: e.To}, e.PersonID, e.OrganizationID)
}

func (e *ConflictError) ErrorCode() dErrors.Code {
	return dErrors.CodeActiveMembershipConflict
}

// validateInterval returns an IntervalError when iv is inverted.
func validateInterval(iv models.Interval) error {
	if iv.Valid() {
		return nil
	}
	return &IntervalError{Since: *iv.Since, To: *iv.To}
}

// ErrorDetails exposes the offending dates to clients.
func (e *IntervalError) ErrorDetails() map[string]any {
	return map[string]any{
		"since": e.Since.Format(models.DateLayout),
		"to":    e.To.Format(models.DateLayout),
	}
}

// ErrorDetails exposes the conflicting membership so a client can offer to
// close it.
func (e *ConflictError) ErrorDetails() map[string]any {
	details := map[string]any{
		"membership_id":   e.MembershipID.String(),
		"person_id":       e.PersonID.String(),
		"organization_id": e.OrganizationID.String(),
	}
	if e.Since != nil {
		details["since"] = e.Since.Format(models.DateLayout)
	}
	if e.To != nil {
		details["to"] = e.To.Format(models.DateLayout)
	}
	return details
}

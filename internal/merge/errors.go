package merge

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// IdentityError reports a merge whose source and target sets do not
// describe distinct entities of one kind, or whose result would make an
// organization its own ancestor.
type IdentityError struct {
	Kind   domain.Kind
	ID     uuid.UUID
	Reason string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("cannot merge %s %s: %s", e.Kind, e.ID, e.Reason)
}

func (e *IdentityError) ErrorCode() dErrors.Code {
	return dErrors.CodeIdentityConflict
}

func identityError(kind domain.Kind, id uuid.UUID, format string, args ...any) error {
	return &IdentityError{Kind: kind, ID: id, Reason: fmt.Sprintf(format, args...)}
}

func (e *IdentityError) ErrorDetails() map[string]any {
	return map[string]any{"kind": e.Kind.String(), "id": e.ID.String()}
}

// AngelaMos | 2026
// errors.go

package policy

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientRole = errors.New("insufficient role")
	ErrInvalidAssignee  = errors.New("invalid assignee role")
)

// DeniedError is the value returned for a rejected action. Reason is one
// of the sentinel errors above and is reachable through errors.Is.
type DeniedError struct {
	Action   Action
	Resource Resource
	Role     Role
	Reason   error
}

func (e *DeniedError) Error() string {
	target := e.Resource.Kind
	if e.Resource.ID != "" {
		target += " " + e.Resource.ID
	}
	if target == "" {
		return fmt.Sprintf("%s denied: %v", e.Action, e.Reason)
	}
	return fmt.Sprintf("%s on %s denied: %v", e.Action, target, e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return e.Reason
}

func IsDenied(err error) bool {
	var denied *DeniedError
	return errors.As(err, &denied)
}

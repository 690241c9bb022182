// AngelaMos | 2026
// visibility.go

package policy

import (
	"fmt"
)

type Visibility string

const (
	// VisibilityUnfiltered shows every project to every signed-in role.
	VisibilityUnfiltered Visibility = "unfiltered"
	// VisibilityAssigned limits managers to projects they manage or hold
	// tasks in, and users to projects they hold tasks in.
	VisibilityAssigned Visibility = "assigned"
)

func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case "", VisibilityUnfiltered:
		return VisibilityUnfiltered, nil
	case VisibilityAssigned:
		return VisibilityAssigned, nil
	default:
		return "", fmt.Errorf("unknown visibility mode %q", s)
	}
}

// Member is anything carrying a role, typically a user record.
type Member interface {
	MemberRole() Role
}

// Scoped is anything with assignment information a visibility filter can
// inspect, typically a project.
type Scoped interface {
	ManagedBy() string
	HasAssignee(userID string) bool
}

// Policy holds the configurable part of the engine. The zero value uses
// VisibilityUnfiltered.
type Policy struct {
	Visibility Visibility
}

func New(visibility Visibility) Policy {
	return Policy{Visibility: visibility}
}

// VisibleProjects filters projects for actor, preserving order. It never
// returns nil.
func VisibleProjects[P Scoped](p Policy, actor *Actor, projects []P) []P {
	out := make([]P, 0, len(projects))
	if !HasRole(actor, actionRoles[ActionListProjects]...) {
		return out
	}
	for _, proj := range projects {
		if p.CanSee(actor, proj) {
			out = append(out, proj)
		}
	}
	return out
}

// CanSee reports whether a single project passes the visibility filter.
func (p Policy) CanSee(actor *Actor, proj Scoped) bool {
	if !HasRole(actor, actionRoles[ActionViewProject]...) {
		return false
	}
	if actor.Role == RoleAdmin || p.Visibility != VisibilityAssigned {
		return true
	}
	if actor.Role == RoleManager && proj.ManagedBy() == actor.ID {
		return true
	}
	return proj.HasAssignee(actor.ID)
}

// EligibleManagers returns every member with role MANAGER in input order.
func EligibleManagers[M Member](members []M) []M {
	return filterRoles(members, []Role{RoleManager})
}

// EligibleAssignees returns the members actor may assign a task to, in
// input order.
func EligibleAssignees[M Member](actor *Actor, members []M) []M {
	if !actor.Authenticated() {
		return make([]M, 0)
	}
	return filterRoles(members, AssignableRoles(actor.Role))
}

func filterRoles[M Member](members []M, roles []Role) []M {
	out := make([]M, 0, len(members))
	if len(roles) == 0 {
		return out
	}
	for _, m := range members {
		if containsRole(roles, m.MemberRole()) {
			out = append(out, m)
		}
	}
	return out
}

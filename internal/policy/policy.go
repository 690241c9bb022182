// AngelaMos | 2026
// policy.go

package policy

type Action string

const (
	ActionViewDashboard Action = "view_dashboard"
	ActionListProjects  Action = "list_projects"
	ActionViewProject   Action = "view_project"
	ActionCreateProject Action = "create_project"
	ActionUpdateProject Action = "update_project"
	ActionDeleteProject Action = "delete_project"
	ActionCreateTask    Action = "create_task"
	ActionListUsers     Action = "list_users"
	ActionCreateUser    Action = "create_user"
)

// Actions lists every gated action in display order.
var Actions = []Action{
	ActionViewDashboard,
	ActionListProjects,
	ActionViewProject,
	ActionCreateProject,
	ActionUpdateProject,
	ActionDeleteProject,
	ActionCreateTask,
	ActionListUsers,
	ActionCreateUser,
}

// actionRoles is the exact-membership table. An action missing from it is
// denied for everyone.
var actionRoles = map[Action][]Role{
	ActionViewDashboard: {RoleAdmin, RoleManager, RoleUser},
	ActionListProjects:  {RoleAdmin, RoleManager, RoleUser},
	ActionViewProject:   {RoleAdmin, RoleManager, RoleUser},
	ActionCreateProject: {RoleAdmin},
	ActionUpdateProject: {RoleAdmin},
	ActionDeleteProject: {RoleAdmin},
	ActionCreateTask:    {RoleAdmin, RoleManager},
	ActionListUsers:     {RoleAdmin},
	ActionCreateUser:    {RoleAdmin},
}

// AllowedRoles returns a copy of the roles permitted to perform action.
func AllowedRoles(action Action) []Role {
	roles := actionRoles[action]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// Resource describes what an action targets. AssigneeRole is set when the
// action assigns the resource to someone; it is checked against the
// assignment rules for that action.
type Resource struct {
	Kind         string
	ID           string
	AssigneeRole Role
}

// HasRole is an exact set-membership test. It never consults the rank
// hierarchy, and an empty role set matches nobody.
func HasRole(actor *Actor, roles ...Role) bool {
	if !actor.Authenticated() {
		return false
	}
	for _, r := range roles {
		if actor.Role == r {
			return true
		}
	}
	return false
}

// CanAccessFeature is a minimum-bar check against the rank hierarchy.
func CanAccessFeature(actor *Actor, required Role) bool {
	if !actor.Authenticated() || !required.Valid() {
		return false
	}
	return Compare(actor.Role, required) >= 0
}

// Authorize returns nil when actor may perform action on res, otherwise a
// *DeniedError.
func Authorize(actor *Actor, action Action, res Resource) error {
	var role Role
	if actor != nil {
		role = actor.Role
	}
	deny := func(reason error) error {
		return &DeniedError{Action: action, Resource: res, Role: role, Reason: reason}
	}

	roles, ok := actionRoles[action]
	if !ok || !HasRole(actor, roles...) {
		return deny(ErrInsufficientRole)
	}

	if res.AssigneeRole == "" {
		return nil
	}

	switch action {
	case ActionCreateProject:
		if res.AssigneeRole != RoleManager {
			return deny(ErrInvalidAssignee)
		}
	case ActionCreateTask:
		if !containsRole(AssignableRoles(actor.Role), res.AssigneeRole) {
			return deny(ErrInvalidAssignee)
		}
	}

	return nil
}

// Capabilities evaluates every action for actor with no resource
// constraints.
func Capabilities(actor *Actor) map[Action]bool {
	caps := make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		caps[a] = Authorize(actor, a, Resource{}) == nil
	}
	return caps
}

// AssignableRoles returns the roles an assigner may put on a task. The two
// cases are listed explicitly: admins assign managers and users, managers
// assign users, everyone else assigns nobody. Peers are never assignable.
func AssignableRoles(assigner Role) []Role {
	switch assigner {
	case RoleAdmin:
		return []Role{RoleManager, RoleUser}
	case RoleManager:
		return []Role{RoleUser}
	default:
		return nil
	}
}

func containsRole(roles []Role, r Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}

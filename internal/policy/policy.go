// Package policy decides whether an actor may perform an action on a resource.
package policy

import "github.com/google/uuid"

// Action is an operation on a single resource.
type Action string

// Actions on a task.
const (
	ActionView   Action = "view"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource is anything with an owner.
type Resource interface {
	OwnerID() uuid.UUID
}

// Decision is the outcome of an authorization check.
type Decision bool

// Decisions.
const (
	Deny  Decision = false
	Allow Decision = true
)

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool {
	return bool(d)
}

// String implements fmt.Stringer.
func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Policy authorizes actions. Implementations must be pure functions of their inputs.
type Policy interface {
	Authorize(actor uuid.UUID, resource Resource, action Action) Decision
}

// OwnerPolicy allows every action to the resource's owner and nothing to anyone else.
type OwnerPolicy struct{}

var _ Policy = OwnerPolicy{}

// Authorize implements Policy.
func (OwnerPolicy) Authorize(actor uuid.UUID, resource Resource, action Action) Decision {
	if resource == nil || actor == uuid.Nil {
		return Deny
	}
	switch action {
	case ActionView, ActionUpdate, ActionDelete:
		return Decision(resource.OwnerID() == actor)
	default:
		return Deny
	}
}

// CanView reports whether actor may view resource.
func CanView(p Policy, actor uuid.UUID, resource Resource) bool {
	return p.Authorize(actor, resource, ActionView).Allowed()
}

// CanUpdate reports whether actor may update resource.
func CanUpdate(p Policy, actor uuid.UUID, resource Resource) bool {
	return p.Authorize(actor, resource, ActionUpdate).Allowed()
}

// CanDelete reports whether actor may delete resource.
func CanDelete(p Policy, actor uuid.UUID, resource Resource) bool {
	return p.Authorize(actor, resource, ActionDelete).Allowed()
}

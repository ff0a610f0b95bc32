package rbac

import (
	"net/http"
	"strings"
)

// AdminRole is the role name allowed to administer roles, resources and rules.
const AdminRole = "admin"

// Role represents a named permission grouping. Roles are reference data,
// created administratively.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Resource identifies a protected collection of records by an opaque code.
type Resource struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Rule is the single permission rule for a (role, resource) pair. The plain
// grants apply to records the role's principal owns; the *_all grants apply
// to any record of the resource and strictly dominate the plain grants.
type Rule struct {
	ID         int64 `json:"id"`
	RoleID     int64 `json:"role_id"`
	ResourceID int64 `json:"resource_id"`
	Read       bool  `json:"can_read"`
	ReadAll    bool  `json:"can_read_all"`
	Create     bool  `json:"can_create"`
	Update     bool  `json:"can_update"`
	UpdateAll  bool  `json:"can_update_all"`
	Delete     bool  `json:"can_delete"`
	DeleteAll  bool  `json:"can_delete_all"`
}

// Action is a CRUD action derived from an HTTP verb.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ActionFromMethod maps an HTTP method to an Action. ok is false for verbs
// outside the CRUD set; those are always denied.
func ActionFromMethod(method string) (Action, bool) {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead, true
	case http.MethodPost:
		return ActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate, true
	case http.MethodDelete:
		return ActionDelete, true
	default:
		return "", false
	}
}

// Owned is implemented by records that carry an owner reference. Ownership
// is the only record attribute the enforcer inspects beyond the rule grants.
type Owned interface {
	OwnedBy() int64
}

// Package neris defines the client used to talk to the NERIS API and the
// permission types it returns.
package neris

import (
	"context"
	"sort"
)

// Resource permissions keyed by resource name, e.g. "INCIDENT": ["READ"].
type Resources map[string][]string

// EntityPermissions are the permissions a user holds on one NERIS entity.
type EntityPermissions struct {
	Resources Resources `json:"resources"`
}

// UserPermissions is the user_permissions response of the NERIS API, keyed by
// NERIS entity ID.
type UserPermissions struct {
	Entities map[string]EntityPermissions `json:"entities"`
}

// IDsWith returns the sorted entity IDs on which the user may perform action
// on resource.
func (p UserPermissions) IDsWith(resource, action string) []string {
	ids := []string{}
	for id, perms := range p.Entities {
		for _, a := range perms.Resources[resource] {
			if a == action {
				ids = append(ids, id)

				break
			}
		}
	}
	sort.Strings(ids)

	return ids
}

// Client fetches user permissions from the NERIS API.
//
//go:generate mockgen -package mockneris -source=interface.go -destination=mock/mockneris.go *
type Client interface {
	// UserPermissions fetches the permissions of userSub, authenticating with
	// the user's own access token.
	UserPermissions(ctx context.Context, userSub, accessToken string) (UserPermissions, error)
}

package auth

import "nerisdash/pkg/neris"

const (
	ResourceIncident = "INCIDENT"
	ActionRead       = "READ"
)

// NerisIDsByActionResource returns a Processor yielding the sorted NERIS IDs
// on which the user may perform action on resource.
func NerisIDsByActionResource(resource, action string) Processor {
	return func(perms neris.UserPermissions) any {
		return perms.IDsWith(resource, action)
	}
}

// IncidentReadNerisIDs yields the NERIS IDs whose incidents the user can read.
func IncidentReadNerisIDs(perms neris.UserPermissions) any {
	return perms.IDsWith(ResourceIncident, ActionRead)
}

package model

import (
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Responsible is an actor: a person with a role and area memberships.
// Role and memberships jointly determine what the actor may do.
type Responsible struct {
	ID        types.ResponsibleID
	FullName  string
	Email     string
	Role      types.Role
	AreaIDs   []types.AreaID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberOf reports whether the responsible belongs to the area
func (r *Responsible) MemberOf(areaID types.AreaID) bool {
	for _, id := range r.AreaIDs {
		if id == areaID {
			return true
		}
	}
	return false
}

// MemberOfAny reports whether the responsible belongs to any of the areas
func (r *Responsible) MemberOfAny(areaIDs []types.AreaID) bool {
	for _, id := range areaIDs {
		if r.MemberOf(id) {
			return true
		}
	}
	return false
}

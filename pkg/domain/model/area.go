package model

import (
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Area is an organizational unit that executes or conditions obligations
type Area struct {
	ID        types.AreaID
	Name      string
	MemberIDs []types.ResponsibleID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMember reports whether the responsible belongs to the area
func (a *Area) HasMember(id types.ResponsibleID) bool {
	for _, m := range a.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

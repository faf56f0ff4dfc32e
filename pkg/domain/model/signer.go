package model

import (
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// SignerAssignment names the responsibles allowed to sign or reject an
// obligation at a specific approval status (e.g. board signature).
type SignerAssignment struct {
	ObligationID   types.ObligationID
	Status         types.ObligationStatus
	ResponsibleIDs []types.ResponsibleID
	CreatedAt      time.Time
}

// Includes reports whether the responsible is assigned as a signer
func (s *SignerAssignment) Includes(id types.ResponsibleID) bool {
	for _, r := range s.ResponsibleIDs {
		if r == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the signer assignment
func (s *SignerAssignment) Clone() *SignerAssignment {
	clone := *s
	clone.ResponsibleIDs = append([]types.ResponsibleID(nil), s.ResponsibleIDs...)
	return &clone
}

// Package organizations models the franchise hierarchy and resolves which
// organization is legally accountable for records originating at a site.
package organizations

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rank is the hierarchy level of an organization.
type Rank string

const (
	RankHeadOffice Rank = "HEAD_OFFICE"
	RankFranchise  Rank = "FRANCHISE"
	RankBranch     Rank = "BRANCH"
	RankStandalone Rank = "STANDALONE"
)

// IsSubsidiary reports whether the rank is exempt from holding legal
// accountability. Records for subsidiaries belong to their parent.
func (r Rank) IsSubsidiary() bool {
	return r == RankFranchise || r == RankBranch
}

// Valid reports whether r is a known rank.
func (r Rank) Valid() bool {
	switch r {
	case RankHeadOffice, RankFranchise, RankBranch, RankStandalone:
		return true
	}
	return false
}

// ErrOrphanedSubsidiary is returned when a FRANCHISE or BRANCH has no parent.
// It is a data-integrity violation and is never defaulted away.
var ErrOrphanedSubsidiary = errors.New("subsidiary organization has no parent")

// Organization is one node of the hierarchy.
type Organization struct {
	ID                  uuid.UUID
	Name                string
	Rank                Rank
	ParentID            *uuid.UUID
	AuthorizationNumber *string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Site is an operational location belonging to an organization.
type Site struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	IsHeadquarters bool
	IsActive       bool
	CreatedAt      time.Time
}

// Ownership is the result of resolving the accountable organization.
type Ownership struct {
	OrganizationID      uuid.UUID
	AuthorizationNumber *string
	// WasResolved is true when ownership moved from a subsidiary to its parent.
	WasResolved bool
}

package domain

import "time"

// Placement is a named, finite-capacity advertising slot (a page region).
// MaxSlots bounds the number of simultaneous winners; the resolver never
// returns more winners than MaxSlots.
type Placement struct {
	ID        int64
	Slug      string
	Name      string
	Inventory string // featured or cpc
	MaxSlots  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

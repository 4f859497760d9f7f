package policy

import "github.com/RoaringBitmap/roaring"

// RoleSet is a set of role ids, one bit per role. The zero-capacity cost of
// a compressed bitmap keeps principals cheap even with a large configured
// role maximum.
type RoleSet struct {
	bits *roaring.Bitmap
}

// NewRoleSet creates an empty role set.
func NewRoleSet() *RoleSet {
	return &RoleSet{bits: roaring.New()}
}

// Add marks id as a member.
func (s *RoleSet) Add(id RoleID) {
	s.bits.Add(uint32(id))
}

// Has reports whether id is a member.
func (s *RoleSet) Has(id RoleID) bool {
	return s.bits.Contains(uint32(id))
}

// Len returns the number of member roles.
func (s *RoleSet) Len() int {
	return int(s.bits.GetCardinality())
}

// Clone returns an independent copy. Principals snapshot their role set at
// issuance time, so later membership edits do not leak into live tokens.
func (s *RoleSet) Clone() *RoleSet {
	return &RoleSet{bits: s.bits.Clone()}
}

// Package sparse provides a sparse set data structure for efficient membership testing.
//
// A sparse set supports O(1) insertion, membership testing and clearing while
// keeping a dense list of its elements in insertion order. The scanner uses
// it to track the indexed states that are alive at the current input
// position.
package sparse

// SparseSet is a set of uint32 values drawn from [0, capacity).
// It maintains both a sparse array (for membership testing) and a dense array
// (for iteration). The sparse array maps values to indices in the dense array.
type SparseSet struct {
	sparse []uint32 // Maps value -> index in dense
	dense  []uint32 // Contains the actual values
}

// NewSparseSet creates a new sparse set with the given capacity.
// The capacity represents the maximum value that can be stored (exclusive).
func NewSparseSet(capacity uint32) *SparseSet {
	return &SparseSet{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds a value to the set and reports whether it was not present.
// Panics if value >= capacity.
func (s *SparseSet) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	s.sparse[value] = uint32(len(s.dense))
	s.dense = append(s.dense, value)
	return true
}

// Contains returns true if the value is in the set
func (s *SparseSet) Contains(value uint32) bool {
	if uint64(value) >= uint64(len(s.sparse)) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Clear removes all elements from the set in O(1) time
func (s *SparseSet) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements in the set
func (s *SparseSet) Len() int {
	return len(s.dense)
}

// Capacity returns the exclusive upper bound of storable values
func (s *SparseSet) Capacity() int {
	return len(s.sparse)
}

// IsEmpty returns true if the set contains no elements
func (s *SparseSet) IsEmpty() bool {
	return len(s.dense) == 0
}

// Values returns the elements in insertion order.
// The returned slice is valid until the next mutation.
func (s *SparseSet) Values() []uint32 {
	return s.dense
}

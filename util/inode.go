package util

import "sync/atomic"

// InodeAllocator hands out increasing inode numbers starting after a
// reserved range. The zero value starts at 1.
type InodeAllocator struct {
	highest atomic.Uint64
}

// NewInodeAllocator returns an allocator whose first inode is reserved+1.
func NewInodeAllocator(reserved uint64) *InodeAllocator {
	a := &InodeAllocator{}
	a.highest.Store(reserved)
	return a
}

// Next returns a fresh inode number.
func (a *InodeAllocator) Next() uint64 {
	return a.highest.Add(1)
}

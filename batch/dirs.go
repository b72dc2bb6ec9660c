package batch

import (
	"fmt"
	"sync"
)

// DirAllocator hands out unique output directory names within one batch.
// Two videos can sanitize to the same title; the allocator guarantees the
// second claimant gets a deterministic disambiguated name so jobs never
// write into each other's directories.
type DirAllocator struct {
	mu      sync.Mutex
	claimed map[string]bool
}

// NewDirAllocator creates an empty allocator for one batch run.
func NewDirAllocator() *DirAllocator {
	return &DirAllocator{claimed: make(map[string]bool)}
}

// Claim reserves name for the given job. If the name is already taken the
// job's ordinal is appended until the result is unique. Safe for concurrent
// use by all workers in a batch.
func (a *DirAllocator) Claim(name string, jobID int) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	candidate := name
	for a.claimed[candidate] {
		candidate = fmt.Sprintf("%s_%d", candidate, jobID)
	}
	a.claimed[candidate] = true
	return candidate
}

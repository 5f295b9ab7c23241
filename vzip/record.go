package vzip

import "fmt"

// Record is the compressed form of one frame.
// Payload is owned by the record once it is stored and is never mutated.
type Record struct {
	Ordinal int
	Payload []byte
}

// Len returns the compressed length of the record.
func (r Record) Len() int {
	return len(r.Payload)
}

// ResultStore holds one slot per ordinal. During the parallel phase each slot
// is written by the single worker that claimed its ordinal; after the barrier
// the aggregator takes them in order. No slot is ever touched concurrently, so
// the store carries no lock.
type ResultStore struct {
	slots []*Record
}

// NewResultStore allocates n empty slots.
func NewResultStore(n int) *ResultStore {
	return &ResultStore{slots: make([]*Record, n)}
}

// Len returns the number of slots.
func (s *ResultStore) Len() int {
	return len(s.slots)
}

// Put moves rec into the slot for rec.Ordinal. Filling a slot twice or using
// an ordinal outside the store means the dispatcher contract was broken.
func (s *ResultStore) Put(rec Record) {
	if rec.Ordinal < 0 || rec.Ordinal >= len(s.slots) {
		panic(fmt.Sprintf("vzip: ordinal %d outside result store of %d", rec.Ordinal, len(s.slots)))
	}
	if s.slots[rec.Ordinal] != nil {
		panic(fmt.Sprintf("vzip: result slot %d filled twice", rec.Ordinal))
	}
	s.slots[rec.Ordinal] = &rec
}

// Take removes and returns the record at ordinal i.
func (s *ResultStore) Take(i int) (Record, error) {
	rec := s.slots[i]
	if rec == nil {
		return Record{}, fmt.Errorf("slot %d: %w", i, ErrMissingRecord)
	}
	s.slots[i] = nil
	return *rec, nil
}

// Missing returns the ordinals whose slots are still empty.
func (s *ResultStore) Missing() []int {
	var missing []int
	for i, rec := range s.slots {
		if rec == nil {
			missing = append(missing, i)
		}
	}
	return missing
}

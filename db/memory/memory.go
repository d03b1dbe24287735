// Package memory implements a db.Store that keeps records in process memory.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/jacobpatterson1549/swipe-words/db"
)

// Store is a db.Store whose records are lost when the process stops.
type Store struct {
	mu          sync.RWMutex
	collections map[db.Collection]map[string]entry
	seq         int
}

// entry is a stored record with the order it was created in.
type entry struct {
	fields db.Fields
	seq    int
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := Store{
		collections: make(map[db.Collection]map[string]entry),
	}
	return &s
}

// Create adds the record to the collection.
func (s *Store) Create(ctx context.Context, c db.Collection, r db.Record) (*db.Record, error) {
	f, err := r.Fields.Normalize()
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}
	if len(r.ID) == 0 {
		r.ID = db.NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, ok := s.collections[c]
	if !ok {
		records = make(map[string]entry)
		s.collections[c] = records
	}
	if _, ok := records[r.ID]; ok {
		return nil, fmt.Errorf("creating %v record %q: %w", c, r.ID, db.ErrAlreadyExists)
	}
	s.seq++
	records[r.ID] = entry{
		fields: f,
		seq:    s.seq,
	}
	r2 := db.Record{
		ID:     r.ID,
		Fields: copyFields(f),
	}
	return &r2, nil
}

// Get reads the record with the id.
func (s *Store) Get(ctx context.Context, c db.Collection, id string) (*db.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.collections[c][id]
	if !ok {
		return nil, fmt.Errorf("getting %v record %q: %w", c, id, db.ErrNotFound)
	}
	r := db.Record{
		ID:     id,
		Fields: copyFields(e.fields),
	}
	return &r, nil
}

// List reads the records in the collection, sorted and limited by the options.
func (s *Store) List(ctx context.Context, c db.Collection, o db.ListOptions) ([]db.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.records(c, nil)
	field, descending := o.SortField()
	if len(field) != 0 {
		sort.SliceStable(records, func(i, j int) bool {
			a, b := records[i].Fields[field], records[j].Fields[field]
			if descending {
				return less(b, a)
			}
			return less(a, b)
		})
	}
	if o.Limit > 0 && len(records) > o.Limit {
		records = records[:o.Limit]
	}
	return records, nil
}

// Filter reads the records whose fields match all of the predicate fields, in creation order.
func (s *Store) Filter(ctx context.Context, c db.Collection, predicate db.Fields) ([]db.Record, error) {
	p, err := predicate.Normalize()
	if err != nil {
		return nil, fmt.Errorf("filtering records: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records(c, p), nil
}

// Update merges the fields into the record.
func (s *Store) Update(ctx context.Context, c db.Collection, id string, f db.Fields) error {
	f2, err := f.Normalize()
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.collections[c][id]
	if !ok {
		return fmt.Errorf("updating %v record %q: %w", c, id, db.ErrNotFound)
	}
	merged := copyFields(e.fields)
	for k, v := range f2 {
		merged[k] = v
	}
	e.fields = merged
	s.collections[c][id] = e
	return nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, c db.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[c][id]; !ok {
		return fmt.Errorf("deleting %v record %q: %w", c, id, db.ErrNotFound)
	}
	delete(s.collections[c], id)
	return nil
}

// records copies the records of the collection that match the predicate, in creation order.
// The read lock must be held.
func (s *Store) records(c db.Collection, predicate db.Fields) []db.Record {
	type seqRecord struct {
		db.Record
		seq int
	}
	found := make([]seqRecord, 0, len(s.collections[c]))
	for id, e := range s.collections[c] {
		if !matches(e.fields, predicate) {
			continue
		}
		r := db.Record{
			ID:     id,
			Fields: copyFields(e.fields),
		}
		found = append(found, seqRecord{r, e.seq})
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].seq < found[j].seq
	})
	records := make([]db.Record, len(found))
	for i, m := range found {
		records[i] = m.Record
	}
	return records
}

// matches determines if the fields have all of the values in the predicate.
func matches(f, predicate db.Fields) bool {
	for k, want := range predicate {
		got, ok := f[k]
		if !ok || !reflect.DeepEqual(want, got) {
			return false
		}
	}
	return true
}

// copyFields makes a shallow copy of the fields so callers cannot change stored records.
func copyFields(f db.Fields) db.Fields {
	f2 := make(db.Fields, len(f))
	for k, v := range f {
		f2[k] = v
	}
	return f2
}

// less orders normalized values.  Missing values are first, then booleans, numbers, and strings.
func less(a, b interface{}) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	switch va := a.(type) {
	case bool:
		return !va && b.(bool)
	case float64:
		return va < b.(float64)
	case string:
		return va < b.(string)
	}
	return false
}

// rank is the type order of a normalized value.
func rank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

// Package firestore uses a google cloud firestore database.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/jacobpatterson1549/swipe-words/db"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store is a db.Store that keeps each collection under a services document.
type Store struct {
	client *firestore.Client
	db.Config
}

// NewStore creates a store in the project.
func NewStore(ctx context.Context, cfg db.Config, projectID string) (*Store, error) {
	if len(projectID) == 0 {
		return nil, fmt.Errorf("creating firestore store: validation: project id required")
	}
	client, err := firestore.NewClient(ctx, projectID) // do not timeout context - the client is used by the store
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	s := Store{
		client: client,
		Config: cfg,
	}
	return &s, nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) collection(c db.Collection) *firestore.CollectionRef {
	return s.client.Collection("services").Doc("swipe-words").Collection(string(c))
}

// withTimeoutContext configures the context to timeout when running the function.
func (s *Store) withTimeoutContext(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	return f(ctx)
}

// Create adds the document, failing if it already exists.
func (s *Store) Create(ctx context.Context, c db.Collection, r db.Record) (*db.Record, error) {
	f, err := r.Fields.Normalize()
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}
	if len(r.ID) == 0 {
		r.ID = db.NewID()
	}
	if err := s.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := s.collection(c).Doc(r.ID)
		_, err := docRef.Create(ctx, map[string]interface{}(f))
		return err
	}); err != nil {
		return nil, fmt.Errorf("creating %v record %q: %w", c, r.ID, storeError(err))
	}
	r2 := db.Record{
		ID:     r.ID,
		Fields: f,
	}
	return &r2, nil
}

// Get reads the document.
func (s *Store) Get(ctx context.Context, c db.Collection, id string) (*db.Record, error) {
	var r *db.Record
	if err := s.withTimeoutContext(ctx, func(ctx context.Context) error {
		snapshot, err := s.collection(c).Doc(id).Get(ctx)
		if err != nil {
			return err
		}
		r, err = record(snapshot)
		return err
	}); err != nil {
		return nil, fmt.Errorf("getting %v record %q: %w", c, id, storeError(err))
	}
	return r, nil
}

// List reads the documents, ordered by the sort field.
func (s *Store) List(ctx context.Context, c db.Collection, o db.ListOptions) ([]db.Record, error) {
	q := s.collection(c).Query
	if field, descending := o.SortField(); len(field) != 0 {
		dir := firestore.Asc
		if descending {
			dir = firestore.Desc
		}
		q = q.OrderBy(field, dir)
	}
	if o.Limit > 0 {
		q = q.Limit(o.Limit)
	}
	records, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing %v records: %w", c, err)
	}
	return records, nil
}

// Filter reads the documents whose fields equal the predicate fields.
func (s *Store) Filter(ctx context.Context, c db.Collection, predicate db.Fields) ([]db.Record, error) {
	q := s.collection(c).Query
	for k, v := range predicate {
		q = q.Where(k, "==", v)
	}
	records, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("filtering %v records: %w", c, err)
	}
	return records, nil
}

// Update sets the top-level fields of the existing document.
func (s *Store) Update(ctx context.Context, c db.Collection, id string, f db.Fields) error {
	f2, err := f.Normalize()
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	if err := s.withTimeoutContext(ctx, func(ctx context.Context) error {
		updates := make([]firestore.Update, 0, len(f2))
		for k, v := range f2 {
			u := firestore.Update{
				FieldPath: firestore.FieldPath{k},
				Value:     v,
			}
			updates = append(updates, u)
		}
		_, err := s.collection(c).Doc(id).Update(ctx, updates) // returns an error if the document does not exist
		return err
	}); err != nil {
		return fmt.Errorf("updating %v record %q: %w", c, id, storeError(err))
	}
	return nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, c db.Collection, id string) error {
	if err := s.withTimeoutContext(ctx, func(ctx context.Context) error {
		_, err := s.collection(c).Doc(id).Delete(ctx, firestore.Exists)
		return err
	}); err != nil {
		return fmt.Errorf("deleting %v record %q: %w", c, id, storeError(err))
	}
	return nil
}

// query reads all of the documents of the query.
func (s *Store) query(ctx context.Context, q firestore.Query) ([]db.Record, error) {
	var records []db.Record
	err := s.withTimeoutContext(ctx, func(ctx context.Context) error {
		iter := q.Documents(ctx)
		defer iter.Stop()
		for {
			snapshot, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			if err != nil {
				return err
			}
			r, err := record(snapshot)
			if err != nil {
				return err
			}
			records = append(records, *r)
		}
	})
	return records, err
}

// record converts the document data to normalized fields.
func record(snapshot *firestore.DocumentSnapshot) (*db.Record, error) {
	f, err := db.Fields(snapshot.Data()).Normalize()
	if err != nil {
		return nil, err
	}
	r := db.Record{
		ID:     snapshot.Ref.ID,
		Fields: f,
	}
	return &r, nil
}

// storeError converts grpc status errors to db errors.
func storeError(err error) error {
	switch status.Code(err) {
	case codes.AlreadyExists:
		return db.ErrAlreadyExists
	case codes.NotFound:
		return db.ErrNotFound
	}
	return err
}

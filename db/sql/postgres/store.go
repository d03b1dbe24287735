// Package postgres implements a db.Store on a Postgres SQL Database.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/db/sql"
	"github.com/lib/pq"
)

type (
	// Store keeps records as JSONB in a single records table, calling functions created by the setup sql.
	Store struct {
		Database
	}

	// Database contains methods to create, read, update, and delete data.
	Database interface {
		// Setup initializes the database by reading the files.
		Setup(ctx context.Context, files []io.Reader) error
		// Query reads a row from the database without updating it.
		Query(ctx context.Context, q sql.Query, dest ...interface{}) error
		// QueryRows reads many rows from the database without updating it.
		QueryRows(ctx context.Context, q sql.Query, scanRow func(scan func(dest ...interface{}) error) error) error
		// Exec makes a change to existing data, creating/modifying/removing it.
		Exec(ctx context.Context, queries ...sql.Query) error
	}
)

const (
	// uniqueViolation is the error code when a primary key is reused.
	uniqueViolation = "23505"
	// noDataFound is the error code raised by functions that change records which do not exist.
	noDataFound = "P0002"
)

// Create adds the record, generating an id if it has none.
func (s *Store) Create(ctx context.Context, c db.Collection, r db.Record) (*db.Record, error) {
	f, err := r.Fields.Normalize()
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}
	if len(r.ID) == 0 {
		r.ID = db.NewID()
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}
	q := sql.NewExecFunction("record_create", string(c), r.ID, string(b))
	if err := s.Database.Exec(ctx, q); err != nil {
		return nil, fmt.Errorf("creating %v record %q: %w", c, r.ID, storeError(err))
	}
	r2 := db.Record{
		ID:     r.ID,
		Fields: f,
	}
	return &r2, nil
}

// Get reads the record with the id.
func (s *Store) Get(ctx context.Context, c db.Collection, id string) (*db.Record, error) {
	cols := []string{
		"fields",
	}
	q := sql.NewQueryFunction("record_read", cols, string(c), id)
	var b []byte
	if err := s.Database.Query(ctx, q, &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting %v record %q: %w", c, id, db.ErrNotFound)
		}
		return nil, fmt.Errorf("getting %v record %q: %w", c, id, err)
	}
	var f db.Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("reading %v record %q fields: %w", c, id, err)
	}
	r := db.Record{
		ID:     id,
		Fields: f,
	}
	return &r, nil
}

// List reads the records of the collection, ordered by the sort field.
func (s *Store) List(ctx context.Context, c db.Collection, o db.ListOptions) ([]db.Record, error) {
	field, descending := o.SortField()
	var limit interface{}
	if o.Limit > 0 {
		limit = o.Limit
	}
	q := sql.NewQueryFunction("record_list", recordCols, string(c), field, descending, limit)
	records, err := s.queryRecords(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing %v records: %w", c, err)
	}
	return records, nil
}

// Filter reads the records that contain all of the predicate fields.
func (s *Store) Filter(ctx context.Context, c db.Collection, predicate db.Fields) ([]db.Record, error) {
	p, err := predicate.Normalize()
	if err != nil {
		return nil, fmt.Errorf("filtering records: %w", err)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("filtering records: %w", err)
	}
	q := sql.NewQueryFunction("record_filter", recordCols, string(c), string(b))
	records, err := s.queryRecords(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("filtering %v records: %w", c, err)
	}
	return records, nil
}

// Update merges the fields into the JSONB of the record.
func (s *Store) Update(ctx context.Context, c db.Collection, id string, f db.Fields) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	q := sql.NewExecFunction("record_update", string(c), id, string(b))
	if err := s.Database.Exec(ctx, q); err != nil {
		return fmt.Errorf("updating %v record %q: %w", c, id, storeError(err))
	}
	return nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, c db.Collection, id string) error {
	q := sql.NewExecFunction("record_delete", string(c), id)
	if err := s.Database.Exec(ctx, q); err != nil {
		return fmt.Errorf("deleting %v record %q: %w", c, id, storeError(err))
	}
	return nil
}

// recordCols are the columns of functions that return many records.
var recordCols = []string{
	"id",
	"fields",
}

// queryRecords scans the id and fields of each row.
func (s *Store) queryRecords(ctx context.Context, q sql.Query) ([]db.Record, error) {
	var records []db.Record
	scanRow := func(scan func(dest ...interface{}) error) error {
		var r db.Record
		var b []byte
		if err := scan(&r.ID, &b); err != nil {
			return err
		}
		if err := json.Unmarshal(b, &r.Fields); err != nil {
			return fmt.Errorf("reading record %q fields: %w", r.ID, err)
		}
		records = append(records, r)
		return nil
	}
	if err := s.Database.QueryRows(ctx, q, scanRow); err != nil {
		return nil, err
	}
	return records, nil
}

// storeError converts postgres errors to db errors.
func storeError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return db.ErrAlreadyExists
		case noDataFound:
			return db.ErrNotFound
		}
	}
	return err
}

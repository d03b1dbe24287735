// Package dbtest contains mock testing utilities.
package dbtest

import (
	"context"

	"github.com/jacobpatterson1549/swipe-words/db"
)

// MockStore implements the db.Store interface.
type MockStore struct {
	// CreateFunc is called by Create.
	CreateFunc func(ctx context.Context, c db.Collection, r db.Record) (*db.Record, error)
	// GetFunc is called by Get.
	GetFunc func(ctx context.Context, c db.Collection, id string) (*db.Record, error)
	// ListFunc is called by List.
	ListFunc func(ctx context.Context, c db.Collection, o db.ListOptions) ([]db.Record, error)
	// FilterFunc is called by Filter.
	FilterFunc func(ctx context.Context, c db.Collection, predicate db.Fields) ([]db.Record, error)
	// UpdateFunc is called by Update.
	UpdateFunc func(ctx context.Context, c db.Collection, id string, f db.Fields) error
	// DeleteFunc is called by Delete.
	DeleteFunc func(ctx context.Context, c db.Collection, id string) error
}

// Create calls CreateFunc.
func (m MockStore) Create(ctx context.Context, c db.Collection, r db.Record) (*db.Record, error) {
	return m.CreateFunc(ctx, c, r)
}

// Get calls GetFunc.
func (m MockStore) Get(ctx context.Context, c db.Collection, id string) (*db.Record, error) {
	return m.GetFunc(ctx, c, id)
}

// List calls ListFunc.
func (m MockStore) List(ctx context.Context, c db.Collection, o db.ListOptions) ([]db.Record, error) {
	return m.ListFunc(ctx, c, o)
}

// Filter calls FilterFunc.
func (m MockStore) Filter(ctx context.Context, c db.Collection, predicate db.Fields) ([]db.Record, error) {
	return m.FilterFunc(ctx, c, predicate)
}

// Update calls UpdateFunc.
func (m MockStore) Update(ctx context.Context, c db.Collection, id string, f db.Fields) error {
	return m.UpdateFunc(ctx, c, id, f)
}

// Delete calls DeleteFunc.
func (m MockStore) Delete(ctx context.Context, c db.Collection, id string) error {
	return m.DeleteFunc(ctx, c, id)
}

// Package mongo implements a db.Store for mongodb.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jacobpatterson1549/swipe-words/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	databaseName = "swipe-words-db"
	idField      = "_id"
)

// Store keeps each collection as a mongo collection, using the record id as the document id.
type Store struct {
	database *mongo.Database
	db.Config
}

// NewStore connects to the database.
func NewStore(ctx context.Context, cfg db.Config, databaseURL string) (*Store, error) {
	if len(databaseURL) == 0 {
		return nil, fmt.Errorf("creating mongo store: validation: database url required")
	}
	clientOptions := options.Client()
	clientOptions.ApplyURI(databaseURL)
	ctx, cancelFunc := context.WithTimeout(ctx, cfg.QueryPeriod)
	defer cancelFunc()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	s := Store{
		database: client.Database(databaseName),
		Config:   cfg,
	}
	return &s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.database.Client().Disconnect(ctx)
}

// Create inserts the document.
func (s *Store) Create(ctx context.Context, c db.Collection, r db.Record) (*db.Record, error) {
	f, err := r.Fields.Normalize()
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}
	if len(r.ID) == 0 {
		r.ID = db.NewID()
	}
	document := bson.M{idField: r.ID}
	for k, v := range f {
		document[k] = v
	}
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	if _, err := s.database.Collection(string(c)).InsertOne(ctx, document); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = db.ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating %v record %q: %w", c, r.ID, err)
	}
	r2 := db.Record{
		ID:     r.ID,
		Fields: f,
	}
	return &r2, nil
}

// Get finds the document with the id.
func (s *Store) Get(ctx context.Context, c db.Collection, id string) (*db.Record, error) {
	filter := d(e(idField, id))
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	result := s.database.Collection(string(c)).FindOne(ctx, filter)
	var document bson.M
	if err := result.Decode(&document); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = db.ErrNotFound
		}
		return nil, fmt.Errorf("getting %v record %q: %w", c, id, err)
	}
	r, err := record(document)
	if err != nil {
		return nil, fmt.Errorf("getting %v record %q: %w", c, id, err)
	}
	return r, nil
}

// List finds the documents, sorted by the field.  Documents are in natural order when not sorted.
func (s *Store) List(ctx context.Context, c db.Collection, o db.ListOptions) ([]db.Record, error) {
	findOptions := options.Find()
	if field, descending := o.SortField(); len(field) != 0 {
		dir := 1
		if descending {
			dir = -1
		}
		findOptions.SetSort(d(e(field, dir)))
	}
	if o.Limit > 0 {
		findOptions.SetLimit(int64(o.Limit))
	}
	records, err := s.find(ctx, c, d(), findOptions)
	if err != nil {
		return nil, fmt.Errorf("listing %v records: %w", c, err)
	}
	return records, nil
}

// Filter finds the documents with the predicate fields.
func (s *Store) Filter(ctx context.Context, c db.Collection, predicate db.Fields) ([]db.Record, error) {
	p, err := predicate.Normalize()
	if err != nil {
		return nil, fmt.Errorf("filtering records: %w", err)
	}
	filter := bson.M(p)
	records, err := s.find(ctx, c, filter, options.Find())
	if err != nil {
		return nil, fmt.Errorf("filtering %v records: %w", c, err)
	}
	return records, nil
}

// Update sets the fields on the document.
func (s *Store) Update(ctx context.Context, c db.Collection, id string, f db.Fields) error {
	f2, err := f.Normalize()
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	filter := d(e(idField, id))
	update := d(e("$set", bson.M(f2)))
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	result, err := s.database.Collection(string(c)).UpdateOne(ctx, filter, update)
	switch {
	case err != nil:
		return fmt.Errorf("updating %v record %q: %w", c, id, err)
	case result.MatchedCount == 0:
		return fmt.Errorf("updating %v record %q: %w", c, id, db.ErrNotFound)
	}
	return nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, c db.Collection, id string) error {
	filter := d(e(idField, id))
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	result, err := s.database.Collection(string(c)).DeleteOne(ctx, filter)
	switch {
	case err != nil:
		return fmt.Errorf("deleting %v record %q: %w", c, id, err)
	case result.DeletedCount == 0:
		return fmt.Errorf("deleting %v record %q: %w", c, id, db.ErrNotFound)
	}
	return nil
}

// find reads all of the documents that match the filter.
func (s *Store) find(ctx context.Context, c db.Collection, filter interface{}, findOptions *options.FindOptions) ([]db.Record, error) {
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	cursor, err := s.database.Collection(string(c)).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	var documents []bson.M
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}
	records := make([]db.Record, len(documents))
	for i, document := range documents {
		r, err := record(document)
		if err != nil {
			return nil, err
		}
		records[i] = *r
	}
	return records, nil
}

// record converts the document to a record.
// The document is written as relaxed extended json so nested documents and numbers decode as they were encoded.
func record(document bson.M) (*db.Record, error) {
	id, _ := document[idField].(string)
	delete(document, idField)
	b, err := bson.MarshalExtJSON(document, false, false)
	if err != nil {
		return nil, fmt.Errorf("converting document %q to json: %w", id, err)
	}
	var f db.Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("reading document %q: %w", id, err)
	}
	r := db.Record{
		ID:     id,
		Fields: f,
	}
	return &r, nil
}

// d is a helper function to create bson.D elements.
func d(e ...bson.E) bson.D {
	return bson.D(e)
}

// e is a helper function to create bson.E elements.
func e(key string, value interface{}) bson.E {
	return bson.E{Key: key, Value: value}
}

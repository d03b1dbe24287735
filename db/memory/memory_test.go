package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCollection db.Collection = "things"

func TestCreate(t *testing.T) {
	createTests := []struct {
		existingID string
		r          db.Record
		wantErr    error
		wantID     string
	}{
		{
			r: db.Record{Fields: db.Fields{"a": 1}},
		},
		{
			r:      db.Record{ID: "x", Fields: db.Fields{"a": 1}},
			wantID: "x",
		},
		{
			existingID: "x",
			r:          db.Record{ID: "x"},
			wantErr:    db.ErrAlreadyExists,
		},
	}
	for i, test := range createTests {
		ctx := context.Background()
		s := NewStore()
		if len(test.existingID) != 0 {
			_, err := s.Create(ctx, testCollection, db.Record{ID: test.existingID})
			require.NoError(t, err, "Test %v", i)
		}
		got, err := s.Create(ctx, testCollection, test.r)
		if test.wantErr != nil {
			assert.True(t, errors.Is(err, test.wantErr), "Test %v: wanted %v, got %v", i, test.wantErr, err)
			continue
		}
		require.NoError(t, err, "Test %v", i)
		assert.NotEmpty(t, got.ID, "Test %v", i)
		if len(test.wantID) != 0 {
			assert.Equal(t, test.wantID, got.ID, "Test %v", i)
		}
		r, err := s.Get(ctx, testCollection, got.ID)
		require.NoError(t, err, "Test %v", i)
		assert.Equal(t, got.Fields, r.Fields, "Test %v", i)
	}
}

func TestGetNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Get(context.Background(), testCollection, "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestFieldsNormalized(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	type thing struct {
		Count int      `json:"count"`
		Words []string `json:"words"`
	}
	f, err := db.Encode(thing{Count: 3, Words: []string{"cat"}})
	require.NoError(t, err)
	r, err := s.Create(ctx, testCollection, db.Record{Fields: f})
	require.NoError(t, err)
	got, err := s.Filter(ctx, testCollection, db.Fields{"count": 3})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r.ID, got[0].ID)
	var th thing
	require.NoError(t, got[0].Fields.Decode(&th))
	assert.Equal(t, thing{Count: 3, Words: []string{"cat"}}, th)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i, score := range []int{20, 50, 10} {
		_, err := s.Create(ctx, testCollection, db.Record{ID: string(rune('a' + i)), Fields: db.Fields{"score": score}})
		require.NoError(t, err)
	}
	listTests := []struct {
		o       db.ListOptions
		wantIDs []string
	}{
		{
			wantIDs: []string{"a", "b", "c"},
		},
		{
			o:       db.ListOptions{Sort: "score"},
			wantIDs: []string{"c", "a", "b"},
		},
		{
			o:       db.ListOptions{Sort: "-score", Limit: 2},
			wantIDs: []string{"b", "a"},
		},
		{
			o:       db.ListOptions{Limit: 1},
			wantIDs: []string{"a"},
		},
	}
	for i, test := range listTests {
		records, err := s.List(ctx, testCollection, test.o)
		require.NoError(t, err, "Test %v", i)
		gotIDs := make([]string, len(records))
		for j, r := range records {
			gotIDs[j] = r.ID
		}
		assert.Equal(t, test.wantIDs, gotIDs, "Test %v", i)
	}
}

func TestUpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Create(ctx, testCollection, db.Record{ID: "d", Fields: db.Fields{"p1": 1, "p2": 2}})
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, testCollection, "d", db.Fields{"p1": 10}))
	require.NoError(t, s.Update(ctx, testCollection, "d", db.Fields{"p2": 20}))
	r, err := s.Get(ctx, testCollection, "d")
	require.NoError(t, err)
	assert.Equal(t, db.Fields{"p1": 10.0, "p2": 20.0}, r.Fields)
	err = s.Update(ctx, testCollection, "missing", db.Fields{"p1": 1})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Create(ctx, testCollection, db.Record{ID: "d"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, testCollection, "d"))
	assert.ErrorIs(t, s.Delete(ctx, testCollection, "d"), db.ErrNotFound)
	_, err = s.Get(ctx, testCollection, "d")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Create(ctx, testCollection, db.Record{ID: "d", Fields: db.Fields{"a": "b"}})
	require.NoError(t, err)
	r, err := s.Get(ctx, testCollection, "d")
	require.NoError(t, err)
	r.Fields["a"] = "changed"
	r2, err := s.Get(ctx, testCollection, "d")
	require.NoError(t, err)
	assert.Equal(t, "b", r2.Fields["a"])
}

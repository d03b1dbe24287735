package word

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai/jsonschema"
)

type mockLexicon func(ctx context.Context, word string) (found, ok bool)

func (m mockLexicon) Lookup(ctx context.Context, word string) (found, ok bool) {
	return m(ctx, word)
}

type mockLedger struct {
	lookupFunc func(ctx context.Context, word string) (*LedgerEntry, error)
	recordFunc func(ctx context.Context, word string, isValid bool) error
}

func (m mockLedger) Lookup(ctx context.Context, word string) (*LedgerEntry, error) {
	return m.lookupFunc(ctx, word)
}

func (m mockLedger) Record(ctx context.Context, word string, isValid bool) error {
	return m.recordFunc(ctx, word, isValid)
}

type mockOracle func(ctx context.Context, prompt string, schema jsonschema.Definition) (json.RawMessage, error)

func (m mockOracle) Invoke(ctx context.Context, prompt string, schema jsonschema.Definition) (json.RawMessage, error) {
	return m(ctx, prompt, schema)
}

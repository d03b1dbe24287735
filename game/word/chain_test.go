package word

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jacobpatterson1549/swipe-words/server/log/logtest"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChain(t *testing.T) {
	lex := mockLexicon(func(ctx context.Context, word string) (bool, bool) { return false, false })
	ledger := mockLedger{}
	online := func() bool { return true }
	newChainTests := []struct {
		ChainConfig
		wantOk bool
	}{
		{},
		{
			ChainConfig: ChainConfig{
				Log: logtest.DiscardLogger,
			},
		},
		{
			ChainConfig: ChainConfig{
				Log:     logtest.DiscardLogger,
				Lexicon: lex,
			},
		},
		{
			ChainConfig: ChainConfig{
				Log:     logtest.DiscardLogger,
				Lexicon: lex,
				Ledger:  ledger,
			},
		},
		{
			ChainConfig: ChainConfig{
				Log:        logtest.DiscardLogger,
				Lexicon:    lex,
				Ledger:     ledger,
				OnlineFunc: online,
			},
			wantOk: true,
		},
	}
	for i, test := range newChainTests {
		_, err := test.ChainConfig.NewChain()
		if test.wantOk {
			assert.NoError(t, err, "Test %v", i)
		} else {
			assert.Error(t, err, "Test %v", i)
		}
	}
}

func TestChainIsValid(t *testing.T) {
	isValidTests := []struct {
		word         string
		inLexicon    bool
		lexiconReady bool
		offline      bool
		ledgerEntry  *LedgerEntry
		ledgerErr    error
		noOracle     bool
		oracleAnswer string
		oracleErr    error
		recordErr    error
		want         bool
		wantErr      error
		wantOracle   bool
		wantRecord   bool
	}{
		{ // 0: local match short-circuits
			word:         "cat",
			inLexicon:    true,
			lexiconReady: true,
			want:         true,
		},
		{ // 1: local match works offline
			word:         "CAT",
			inLexicon:    true,
			lexiconReady: true,
			offline:      true,
			want:         true,
		},
		{ // 2: offline words not in the lexicon are unavailable
			word:         "zyzzyva",
			lexiconReady: true,
			offline:      true,
			wantErr:      ErrValidationUnavailable,
		},
		{ // 3: ledger invalid entry is authoritative
			word:         "qwrt",
			lexiconReady: true,
			ledgerEntry:  &LedgerEntry{Word: "qwrt", IsValid: false},
		},
		{ // 4: ledger valid entry is authoritative
			word:        "zyzzyva",
			ledgerEntry: &LedgerEntry{Word: "zyzzyva", IsValid: true},
			want:        true,
		},
		{ // 5: oracle answers valid and it is recorded
			word:         "zyzzyva",
			lexiconReady: true,
			oracleAnswer: `{"isValid":true}`,
			want:         true,
			wantOracle:   true,
			wantRecord:   true,
		},
		{ // 6: oracle answers invalid and it is recorded
			word:         "qwrt",
			lexiconReady: true,
			oracleAnswer: `{"isValid":false}`,
			wantOracle:   true,
			wantRecord:   true,
		},
		{ // 7: oracle failure is not recorded
			word:       "qwrt",
			oracleErr:  fmt.Errorf("network down"),
			wantErr:    ErrValidationUnavailable,
			wantOracle: true,
		},
		{ // 8: oracle answers without the field
			word:         "qwrt",
			oracleAnswer: `{}`,
			wantErr:      ErrValidationUnavailable,
			wantOracle:   true,
		},
		{ // 9: ledger read failure falls through to the oracle
			word:         "zyzzyva",
			ledgerErr:    fmt.Errorf("store down"),
			oracleAnswer: `{"isValid":true}`,
			want:         true,
			wantOracle:   true,
			wantRecord:   true,
		},
		{ // 10: ledger write failure still returns the answer
			word:         "zyzzyva",
			oracleAnswer: `{"isValid":true}`,
			recordErr:    fmt.Errorf("store down"),
			want:         true,
			wantOracle:   true,
			wantRecord:   true,
		},
		{ // 11: no oracle configured
			word:     "zyzzyva",
			noOracle: true,
			wantErr:  ErrValidationUnavailable,
		},
		{ // 12: a word in the lexicon is not checked when the lexicon is not ready
			word:         "cat",
			inLexicon:    true,
			oracleAnswer: `{"isValid":true}`,
			want:         true,
			wantOracle:   true,
			wantRecord:   true,
		},
	}
	for i, test := range isValidTests {
		oracleCalled, recordCalled := false, false
		cfg := ChainConfig{
			Log: logtest.DiscardLogger,
			Lexicon: mockLexicon(func(ctx context.Context, word string) (bool, bool) {
				return test.inLexicon && test.lexiconReady, test.lexiconReady
			}),
			Ledger: mockLedger{
				lookupFunc: func(ctx context.Context, word string) (*LedgerEntry, error) {
					if test.offline {
						t.Errorf("Test %v: ledger read while offline", i)
					}
					return test.ledgerEntry, test.ledgerErr
				},
				recordFunc: func(ctx context.Context, word string, isValid bool) error {
					recordCalled = true
					assert.Equal(t, test.want, isValid, "Test %v: recorded judgement", i)
					return test.recordErr
				},
			},
			OnlineFunc: func() bool {
				return !test.offline
			},
		}
		if !test.noOracle {
			cfg.Oracle = mockOracle(func(ctx context.Context, prompt string, schema jsonschema.Definition) (json.RawMessage, error) {
				oracleCalled = true
				wantPrompt := fmt.Sprintf(`Is "%s" a real, common English word? Answer only in JSON.`, test.word)
				assert.Equal(t, wantPrompt, prompt, "Test %v", i)
				assert.Equal(t, []string{"isValid"}, schema.Required, "Test %v", i)
				return json.RawMessage(test.oracleAnswer), test.oracleErr
			})
		}
		c, err := cfg.NewChain()
		require.NoError(t, err, "Test %v", i)
		got, err := c.IsValid(context.Background(), test.word)
		switch {
		case test.wantErr != nil:
			assert.True(t, errors.Is(err, test.wantErr), "Test %v: wanted %v, got %v", i, test.wantErr, err)
		default:
			assert.NoError(t, err, "Test %v", i)
		}
		assert.Equal(t, test.want, got, "Test %v", i)
		assert.Equal(t, test.wantOracle, oracleCalled, "Test %v: oracle called", i)
		assert.Equal(t, test.wantRecord, recordCalled, "Test %v: ledger recorded", i)
	}
}

package word

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Oracle makes a single natural-language judgement, answering with json that matches the schema.
type Oracle interface {
	Invoke(ctx context.Context, prompt string, schema jsonschema.Definition) (json.RawMessage, error)
}

// judgement is the structured answer of the oracle.
type judgement struct {
	IsValid *bool `json:"isValid"`
}

// judgementSchema requires a single boolean isValid field.
var judgementSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"isValid": {
			Type:        jsonschema.Boolean,
			Description: "true if the word is a real, common English word",
		},
	},
	Required:             []string{"isValid"},
	AdditionalProperties: false,
}

// judgementPrompt asks the oracle about the word.
func judgementPrompt(word string) string {
	return fmt.Sprintf("Is %q a real, common English word? Answer only in JSON.", word)
}

// ask invokes the oracle and parses its judgement of the word.
func ask(ctx context.Context, o Oracle, word string) (bool, error) {
	raw, err := o.Invoke(ctx, judgementPrompt(word), judgementSchema)
	if err != nil {
		return false, err
	}
	var j judgement
	if err := json.Unmarshal(raw, &j); err != nil {
		return false, fmt.Errorf("parsing oracle judgement: %w", err)
	}
	if j.IsValid == nil {
		return false, fmt.Errorf("oracle judgement missing isValid: %s", raw)
	}
	return *j.IsValid, nil
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const extractMaxTokens = 200

// factsSchema constrains what the extractor may hand to the fact store:
// an object whose values are strings, string arrays, or null. Anything
// else the model invents is treated as malformed output.
const factsSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": ["string", "array", "null"],
		"items": {"type": "string"}
	}
}`

var factsValidator = jsonschema.MustCompileString("facts.json", factsSchema)

// ExtractFacts pulls permanent user facts out of a conversation summary.
// Malformed model output is recovered locally: the result is an empty
// mapping, never an error. Only the upstream call itself can fail.
func (c *Client) ExtractFacts(ctx context.Context, summary string) (map[string]any, error) {
	prompt := fmt.Sprintf(`From this conversation summary, extract permanent facts about the user.
Return ONLY valid JSON, nothing else.

Summary: %s

Return JSON with these fields (use null if not mentioned):
{
  "name": null,
  "skills": [],
  "current_projects": [],
  "goals": [],
  "preferences": [],
  "background": null
}`, summary)

	raw, err := c.Complete(ctx, summaryModel, []Message{
		{Role: "user", Content: prompt},
	}, extractMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}

	return parseFacts(raw), nil
}

// parseFacts decodes and validates the extractor's output. Any failure
// yields an empty mapping; the lifecycle archives the source memory
// either way, so there is nothing useful to propagate.
func parseFacts(raw string) map[string]any {
	text := stripFence(strings.TrimSpace(raw))

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return map[string]any{}
	}
	if err := factsValidator.Validate(decoded); err != nil {
		return map[string]any{}
	}

	facts, ok := decoded.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return facts
}

// stripFence unwraps a markdown-fenced code block, tolerating a "json"
// language tag. Models add these despite being told not to.
func stripFence(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	parts := strings.Split(text, "```")
	if len(parts) < 2 {
		return text
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

package outfit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractJSONObject(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, ExtractJSONObject("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, ExtractJSONObject("Sure, here you go: {\"a\": 1} hope it helps!"))
	assert.Equal(t, "", ExtractJSONObject("no json here"))
	assert.Equal(t, "", ExtractJSONObject(""))
}

type cannedLLM struct {
	text        string
	err         error
	unavailable bool
}

func (c cannedLLM) Available() bool {
	return !c.unavailable
}

func (c cannedLLM) Complete(ctx context.Context, systemInstruction string, prompt string, maxTokens int32, temperature float32) (*LLMCompletion, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &LLMCompletion{Text: c.text, Model: "canned", InputTokenCount: 1, OutputTokenCount: 2, TotalTokenCount: 3}, nil
}

func llmSelection(top, bottom, footwear uint) string {
	return fmt.Sprintf(`{"outfits": [{"top": %v, "bottom": %v, "footwear": %v, "name": "Test Look", "vibe": "clean", "reasoning": "because", "styling_tip": "tuck it", "color_harmony": "neutrals", "confidence": 0.8}]}`,
		top, bottom, footwear)
}

func TestComposeWithLLMValidSelection(t *testing.T) {
	in := composerTestInput(casualCloset(), "casual")
	llm := cannedLLM{text: llmSelection(1, 3, 4)}

	outfits := composeWithLLM(context.Background(), llm, in, 3, casualCloset())
	require.Len(t, outfits, 1)
	out := outfits[0]
	assert.Equal(t, []uint{1, 3, 4}, out.ItemIDs())
	assert.Equal(t, "llm", out.ComposedBy)
	assert.Equal(t, "Test Look", out.Name)
	require.NotNil(t, out.StylingTip)
	assert.Equal(t, "tuck it", *out.StylingTip)
	require.NotNil(t, out.LLMModel)
	assert.Equal(t, "canned", *out.LLMModel)
	// scores are recomputed from the chosen items, not trusted from the model
	assert.Greater(t, out.StyleScore, 0.0)
	assert.InDelta(t, 0.8, out.ConfidenceScore, 1e-9)
}

func TestComposeWithLLMUnknownIdDropped(t *testing.T) {
	in := composerTestInput(casualCloset(), "casual")
	llm := cannedLLM{text: llmSelection(999, 3, 4)}

	outfits := composeWithLLM(context.Background(), llm, in, 3, casualCloset())
	assert.Empty(t, outfits)
}

func TestComposeWithLLMWrongSlotDropped(t *testing.T) {
	in := composerTestInput(casualCloset(), "casual")
	// sneakers proposed as a top
	llm := cannedLLM{text: llmSelection(4, 3, 1)}

	outfits := composeWithLLM(context.Background(), llm, in, 3, casualCloset())
	assert.Empty(t, outfits)
}

func TestComposeWithLLMExcludedIdDropped(t *testing.T) {
	in := composerTestInput(casualCloset(), "casual")
	in.exclude[3] = true
	llm := cannedLLM{text: llmSelection(1, 3, 4)}

	outfits := composeWithLLM(context.Background(), llm, in, 3, casualCloset())
	assert.Empty(t, outfits)
}

func TestComposeWithLLMFailures(t *testing.T) {
	in := composerTestInput(casualCloset(), "casual")

	assert.Nil(t, composeWithLLM(context.Background(), nil, in, 3, casualCloset()))
	assert.Nil(t, composeWithLLM(context.Background(), cannedLLM{unavailable: true}, in, 3, casualCloset()))
	assert.Empty(t, composeWithLLM(context.Background(), cannedLLM{err: fmt.Errorf("quota")}, in, 3, casualCloset()))
	assert.Empty(t, composeWithLLM(context.Background(), cannedLLM{text: "I cannot help with that"}, in, 3, casualCloset()))
	assert.Empty(t, composeWithLLM(context.Background(), cannedLLM{text: "{broken json"}, in, 3, casualCloset()))
}

func TestComposeWithLLMDuplicateAcrossOutfits(t *testing.T) {
	payload := fmt.Sprintf(`{"outfits": [%s, %s]}`,
		`{"top": 1, "bottom": 3, "footwear": 4, "name": "A", "vibe": "v", "reasoning": "r", "confidence": 0.9}`,
		`{"top": 2, "bottom": 3, "footwear": 5, "name": "B", "vibe": "v", "reasoning": "r", "confidence": 0.9}`)
	in := composerTestInput(casualCloset(), "casual")
	outfits := composeWithLLM(context.Background(), cannedLLM{text: payload}, in, 3, casualCloset())
	// the second outfit reuses the chinos and gets rejected
	require.Len(t, outfits, 1)
	assert.Equal(t, "A", outfits[0].Name)
}

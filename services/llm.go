package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"vestiqapi/outfit"
)

// LLMModelName is the GenAI model to use for a completion.
type LLMModelName int32

const (
	Flash25 LLMModelName = iota
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

func Int32Pointer(i int32) *int32 {
	return &i
}

const llmCallTimeout = 45 * time.Second

// ordered fallback chain: a model that errors hands over to the next one
var defaultStylistModels = []LLMModelName{Flash25, Flash20, FlashLite25}

// GeminiStylist implements outfit.LLMProvider on top of the Gemini API.
type GeminiStylist struct {
	// Models overrides the default fallback chain when set
	Models []LLMModelName
}

func (g GeminiStylist) Available() bool {
	return os.Getenv("GOOGLE_API_KEY") != ""
}

func (g GeminiStylist) models() []LLMModelName {
	if len(g.Models) > 0 {
		return g.Models
	}
	return defaultStylistModels
}

func (g GeminiStylist) Complete(ctx context.Context, systemInstruction string, prompt string, maxTokens int32, temperature float32) (*outfit.LLMCompletion, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, model := range g.models() {
		completion, err := g.completeWithModel(ctx, client, model, systemInstruction, prompt, maxTokens, temperature)
		if err == nil {
			return completion, nil
		}
		fmt.Printf("[LLM] model %s failed: %v\n", model, err)
		lastErr = err
	}
	return nil, fmt.Errorf("all models exhausted: %v", lastErr)
}

const embeddingModel = "gemini-embedding-001"

// EmbedText returns a 768-dim embedding for the given text.
func (g GeminiStylist) EmbedText(ctx context.Context, text string) ([]float64, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	result, err := client.Models.EmbedContent(callCtx, embeddingModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: text}}},
	}, &genai.EmbedContentConfig{OutputDimensionality: Int32Pointer(int32(outfit.TasteVectorDim))})
	if err != nil {
		return nil, err
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding response is empty for model %s", embeddingModel)
	}
	values := result.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, v := range values {
		embedding[i] = float64(v)
	}
	return embedding, nil
}

func (g GeminiStylist) completeWithModel(ctx context.Context, client *genai.Client, model LLMModelName,
	systemInstruction string, prompt string, maxTokens int32, temperature float32) (*outfit.LLMCompletion, error) {

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	result, err := client.Models.GenerateContent(callCtx, model.String(), []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{
		CandidateCount:  1,
		MaxOutputTokens: maxTokens,
		Temperature:     floatPointer(temperature),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	})
	if err != nil {
		return nil, err
	}

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}
	for _, c := range result.Candidates {
		for _, rating := range c.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
	}

	var inputTokenCount, outputTokenCount, totalTokenCount int32
	if result.UsageMetadata != nil {
		inputTokenCount = result.UsageMetadata.PromptTokenCount
		outputTokenCount = result.UsageMetadata.CandidatesTokenCount
		totalTokenCount = result.UsageMetadata.TotalTokenCount
		fmt.Println("Input token count:", inputTokenCount)
		fmt.Println("Output token count:", outputTokenCount)
		fmt.Println("Total token count:", totalTokenCount)
	} else {
		fmt.Println("UsageMetadata is nil!")
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("model %s returned empty response", model)
	}

	return &outfit.LLMCompletion{
		Text:             text,
		Model:            model.String(),
		InputTokenCount:  inputTokenCount,
		OutputTokenCount: outputTokenCount,
		TotalTokenCount:  totalTokenCount,
	}, nil
}

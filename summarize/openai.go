package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"ewintr.nl/ytsum/metrics"
	"ewintr.nl/ytsum/model"
)

const (
	summaryModel = openai.GPT4oMini

	// Token estimate: one token per four characters of input.
	maxInputTokens = 80000

	systemPrompt = "You are a helpful assistant that creates concise, informative summaries of video transcripts."

	promptTemplate = `Summarize the following transcript as a high-impact audio script.

Requirements:
1. The summary should be optimized for listening, not reading.
2. Start with a strong hook that highlights the core problem.
3. Extract the main mental model(s) and present them clearly.
4. Convert abstract ideas into concrete, actionable steps.
5. Include short, memorable phrases or quotes.
6. End with a practical reflection question for the listener.
7. Length: in approximately %d words

Transcript:
%s`
)

// OpenAI generates transcript summaries. An unconfigured generator is a
// valid state, every call then fails with a configuration error instead
// of a crash at startup.
type OpenAI struct {
	client *openai.Client
}

func NewOpenAI(apiKey string) *OpenAI {
	if apiKey == "" {
		return &OpenAI{}
	}

	return &OpenAI{client: openai.NewClient(apiKey)}
}

// NewOpenAIWithClient injects a preconfigured client, used to point the
// generator at a fake backend.
func NewOpenAIWithClient(client *openai.Client) *OpenAI {
	return &OpenAI{client: client}
}

// Summarize produces a summary of roughly maxWords words and its word
// count. The upstream call is budgeted at twice the requested words.
func (o *OpenAI) Summarize(ctx context.Context, text string, maxWords int) (string, int, error) {
	if o.client == nil {
		return "", 0, model.NewError(model.KindServiceUnconfigured,
			"OpenAI API key not configured. Please set OPENAI_API_KEY.")
	}

	if estimated := len(text) / 4; estimated > maxInputTokens {
		return "", 0, model.NewErrorf(model.KindInputTooLarge,
			"transcript too long for summarization (%d tokens estimated). Maximum is %d tokens. Try a shorter video.",
			estimated, maxInputTokens)
	}

	metrics.IncrSummaryCalls()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: summaryModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, maxWords, text)},
		},
		Temperature: 0.7,
		MaxTokens:   maxWords * 2,
	})
	if err != nil {
		metrics.IncrSummaryErrors()
		return "", 0, generationError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.IncrSummaryErrors()
		return "", 0, model.NewError(model.KindEmptyGeneration, "summary service returned an empty response")
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		metrics.IncrSummaryErrors()
		return "", 0, model.NewError(model.KindEmptyGeneration, "summary service returned an empty response")
	}

	return summary, WordCount(summary), nil
}

// WordCount splits on whitespace runs.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func generationError(err error) *model.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		metrics.IncrUpstreamTimeouts()
		return model.NewError(model.KindUpstreamTimeout, "summary service did not respond in time")
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401:
			return model.NewError(model.KindAuthFailed, "invalid OpenAI API key")
		case apiErr.HTTPStatusCode == 429:
			return model.NewError(model.KindUpstreamRateLimited, "OpenAI API rate limit exceeded")
		case apiErr.HTTPStatusCode >= 500:
			return model.NewError(model.KindUpstreamUnavailable, "OpenAI API service unavailable")
		}
	}

	return model.NewErrorf(model.KindGenerationFailed, "error generating summary: %v", err)
}

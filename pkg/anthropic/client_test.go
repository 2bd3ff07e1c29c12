package anthropic

import (
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"

	"github.com/breachcase/breachwatch/internal/resilience"
)

func TestEstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}

	cost := usage.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 1e-9)

	cost = usage.EstimateCost("claude-sonnet-4-5-20250929")
	assert.InDelta(t, 3.00+7.50, cost, 1e-9)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	usage := TokenUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.Zero(t, usage.EstimateCost("unknown-model"))
}

func TestEstimateCost_ZeroUsage(t *testing.T) {
	assert.Zero(t, TokenUsage{}.EstimateCost("claude-haiku-4-5-20251001"))
}

// A plain 500 from the API carries no retryable wording in its body, so
// classification must key on the status code, not the message text.
func TestClassifyAPIError_TransientStatuses(t *testing.T) {
	for _, code := range []int{500, 502, 503, 529} {
		err := classifyAPIError(&sdk.Error{StatusCode: code})
		assert.True(t, resilience.IsTransient(err), "status %d", code)
	}
}

func TestClassifyAPIError_NonRetryableStatusesPassThrough(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404} {
		err := classifyAPIError(&sdk.Error{StatusCode: code})
		_, transient := err.(*resilience.TransientError)
		assert.False(t, transient, "status %d", code)
	}
}

func TestClassifyAPIError_NonAPIErrorPassThrough(t *testing.T) {
	assert.Same(t, assert.AnError, classifyAPIError(assert.AnError))
}

func TestToSDKMessages_Roles(t *testing.T) {
	out := toSDKMessages([]Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	})
	assert.Len(t, out, 2)
	assert.Equal(t, "user", string(out[0].Role))
	assert.Equal(t, "assistant", string(out[1].Role))
}

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.promptcache/internal/models"
)

func TestFingerprint_Deterministic(t *testing.T) {
	params := map[string]interface{}{"temperature": 0.7, "max_tokens": 512}

	k1, err := Fingerprint("claude-3", "What is the capital of France?", params)
	require.NoError(t, err)
	k2, err := Fingerprint("claude-3", "What is the capital of France?", params)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32) // 16 bytes hex encoded
}

func TestFingerprint_ParamOrderIrrelevant(t *testing.T) {
	// Maps don't preserve insertion order, so build the canonical case
	// explicitly with differing construction order.
	a := map[string]interface{}{}
	a["temperature"] = 0.7
	a["top_p"] = 0.9
	a["max_tokens"] = 512

	b := map[string]interface{}{}
	b["max_tokens"] = 512
	b["top_p"] = 0.9
	b["temperature"] = 0.7

	k1, err := Fingerprint("claude-3", "prompt", a)
	require.NoError(t, err)
	k2, err := Fingerprint("claude-3", "prompt", b)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestFingerprint_SemanticFieldsChangeKey(t *testing.T) {
	base, err := Fingerprint("claude-3", "prompt", map[string]interface{}{"temperature": 0.7})
	require.NoError(t, err)

	otherPrompt, err := Fingerprint("claude-3", "a different prompt", map[string]interface{}{"temperature": 0.7})
	require.NoError(t, err)
	assert.NotEqual(t, base, otherPrompt)

	otherModel, err := Fingerprint("claude-4", "prompt", map[string]interface{}{"temperature": 0.7})
	require.NoError(t, err)
	assert.NotEqual(t, base, otherModel)

	otherParams, err := Fingerprint("claude-3", "prompt", map[string]interface{}{"temperature": 0.2})
	require.NoError(t, err)
	assert.NotEqual(t, base, otherParams)
}

func TestFingerprint_FieldBoundariesUnambiguous(t *testing.T) {
	// Field content must never be able to pose as a field boundary: a
	// prompt carrying delimiter-looking bytes is not the same request as
	// one with those bytes split across fields.
	withParam, err := Fingerprint("m", "p", map[string]interface{}{"a": 1})
	require.NoError(t, err)
	injected, err := Fingerprint("m", "p\x00a=1", nil)
	require.NoError(t, err)
	assert.NotEqual(t, withParam, injected)

	base, err := Fingerprint("m", "p", nil)
	require.NoError(t, err)
	shifted, err := Fingerprint("m\x00p", "", nil)
	require.NoError(t, err)
	assert.NotEqual(t, base, shifted)

	joined, err := Fingerprint("mp", "", nil)
	require.NoError(t, err)
	assert.NotEqual(t, base, joined)
}

func TestFingerprint_UnserializableInput(t *testing.T) {
	_, err := Fingerprint("claude-3", "prompt", map[string]interface{}{
		"callback": make(chan int),
	})
	require.Error(t, err)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "callback", inputErr.Field)
}

func TestRequestKey_IgnoresVolatileFields(t *testing.T) {
	params := map[string]interface{}{"temperature": 0.7}

	r1 := models.NewCompletionRequest("claude-3", "prompt", params)
	r2 := models.NewCompletionRequest("claude-3", "prompt", params)
	require.NotEqual(t, r1.ID, r2.ID)

	k1, err := RequestKey(r1)
	require.NoError(t, err)
	k2, err := RequestKey(r2)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

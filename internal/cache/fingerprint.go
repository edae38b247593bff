package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"dev.helix.promptcache/internal/models"
)

// fingerprintDoc is the canonical form of a request for hashing. JSON
// encoding sorts map keys and escapes control bytes, so parameter insertion
// order never changes the key and no field content can masquerade as a
// field boundary.
type fingerprintDoc struct {
	Model  string                 `json:"model"`
	Prompt string                 `json:"prompt"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Fingerprint derives a deterministic cache key from the semantically
// relevant fields of a request: model identifier, prompt text, and sampling
// parameters. Volatile fields (request ID, trace ID, timestamps) are
// deliberately not part of the input.
//
// Returns an *InputError when a parameter value cannot be serialized.
func Fingerprint(model, prompt string, params map[string]interface{}) (string, error) {
	data, err := json.Marshal(fingerprintDoc{Model: model, Prompt: prompt, Params: params})
	if err != nil {
		for name, value := range params {
			if _, perr := json.Marshal(value); perr != nil {
				return "", &InputError{Field: name, Err: perr}
			}
		}
		return "", &InputError{Field: "request", Err: err}
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}

// RequestKey fingerprints a CompletionRequest.
func RequestKey(req *models.CompletionRequest) (string, error) {
	return Fingerprint(req.Model, req.Prompt, req.Params)
}

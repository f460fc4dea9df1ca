package dispatch

import (
	"encoding/hex"
	"encoding/json"

	"github.com/go-crypt/x/blake2b"
)

// IdempotencyKey derives a stable lease key from a tool name and its
// arguments. json.Marshal sorts map keys, so argument order never changes
// the key; two submissions of the same work always collide.
func IdempotencyKey(tool string, args map[string]any) string {
	payload, err := json.Marshal(args)
	if err != nil {
		// Unmarshalable arguments still need a key; fall back to the tool
		// name so at least per-tool duplicates collide.
		payload = nil
	}

	h, _ := blake2b.New(16, nil)
	h.Write([]byte(tool))
	h.Write([]byte{0})
	h.Write(payload)
	return "task:" + hex.EncodeToString(h.Sum(nil))
}

package drive

import (
	"encoding/json"
	"fmt"

	"teledrive-web/internal/model"
)

// TransferMIME is the same-origin drag-and-drop transfer type. The
// payload is a JSON array of prefixed keys, which keeps the wire
// format compatible with what the folder/file cards already emit; it
// is not meant for cross-application interop.
const TransferMIME = "application/td-items"

// EncodeTransfer serializes an ordered list of references into a drag
// payload.
func EncodeTransfer(refs []Reference) ([]byte, error) {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, ref.Key())
	}
	return json.Marshal(keys)
}

// DecodeTransfer parses a drag payload back into references,
// preserving order.
func DecodeTransfer(payload []byte) ([]Reference, error) {
	var keys []string
	if err := json.Unmarshal(payload, &keys); err != nil {
		return nil, fmt.Errorf("%w: malformed drag payload", model.ErrInvalidInput)
	}

	refs := make([]Reference, 0, len(keys))
	for _, key := range keys {
		ref, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

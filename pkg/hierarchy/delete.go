package hierarchy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mlindner/waterhub/pkg/logging"
)

// deleteValuesTo is the far-future cutoff that wipes all measurement
// history for a value key
const deleteValuesTo = "2099-01-01T00%3A00%3A00"

// DeleteValueKey deletes a value key from an instrumentation by
// deleting its values from every linked asset with references, which
// also removes it from the instrumentation on the hub. On success the
// local value-key list of this instrumentation (and only this
// instrumentation) is invalidated.
func (h *Hierarchy) DeleteValueKey(ctx context.Context, instr *Instrumentation, key string) error {
	if !instr.HasValueKey(key) {
		return fmt.Errorf("%w: %q on %s", ErrUnknownValueKey, key, instr)
	}

	for _, asset := range h.Assets(instr) {
		cmd := fmt.Sprintf("assets/%d/values/%s?to=%s&with_references=true", asset.ID, key, deleteValuesTo)
		h.log.Info("deleting value key",
			logging.ValueKey(key),
			logging.AssetID(asset.ID),
			logging.InstrumentationID(instr.ID),
		)
		if _, err := h.hub.Call(ctx, http.MethodDelete, cmd, nil); err != nil {
			return fmt.Errorf("delete value key %q from asset %d: %w", key, asset.ID, err)
		}
	}

	keys := instr.ValueKeys[:0]
	for _, k := range instr.ValueKeys {
		if k != key {
			keys = append(keys, k)
		}
	}
	instr.ValueKeys = keys
	delete(instr.Thresholds, key)
	return nil
}

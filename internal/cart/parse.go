package cart

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeSnapshot is the read boundary for persisted carts. Lines without an
// id, with a non-positive qty, or with a negative price are dropped and
// duplicate ids are merged into the first occurrence. The number of
// discarded lines is returned so the caller can log it.
func decodeSnapshot(raw string) (Snapshot, int, error) {
	var doc Snapshot
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Snapshot{}, 0, fmt.Errorf("decode cart: %w", err)
	}

	dropped := 0
	lines := make([]Line, 0, len(doc.Lines))
	index := make(map[string]int, len(doc.Lines))
	for _, line := range doc.Lines {
		line.ID = strings.TrimSpace(line.ID)
		if line.ID == "" || line.Qty <= 0 || line.Price < 0 {
			dropped++
			continue
		}
		if i, ok := index[line.ID]; ok {
			lines[i].Qty += line.Qty
			continue
		}
		index[line.ID] = len(lines)
		lines = append(lines, line)
	}

	return Snapshot{Lines: lines, Coupon: normalizeCoupon(doc.Coupon)}, dropped, nil
}

// normalizeCoupon folds empty and whitespace-only codes into unset.
func normalizeCoupon(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

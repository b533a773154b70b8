package state

import "strings"

const detailSeparator = " | "

// MemoryPatch is the typed form of the gate's memory_write block, decoded
// and validated at the oracle boundary. Pointer fields distinguish "absent"
// from zero values; counters carry the new absolute value, not a delta.
type MemoryPatch struct {
	ReasonCategory         *string        `json:"reason_category,omitempty"`
	AbilityScore           *string        `json:"ability_score,omitempty"`
	ReasonDetail           string         `json:"reason_detail,omitempty"`
	UnresolvedObstacles    []string       `json:"unresolved_obstacles,omitempty"`
	BrokenPromises         *int           `json:"broken_promises,omitempty"`
	PaymentRefusals        *int           `json:"payment_refusals,omitempty"`
	HasAbilityConfirmed    *bool          `json:"has_ability_confirmed,omitempty"`
	PaymentDateConfirmed   *string        `json:"payment_date_confirmed,omitempty"`
	PaymentAmountConfirmed *float64       `json:"payment_amount_confirmed,omitempty"`
	PaymentTypeConfirmed   *string        `json:"payment_type_confirmed,omitempty"`
	ExtensionRequested     *bool          `json:"extension_requested,omitempty"`
	NoResponseStreak       *int           `json:"no_response_streak,omitempty"`
	Extra                  map[string]any `json:"extra,omitempty"`
}

// IsZero reports whether the patch carries nothing to merge.
func (p MemoryPatch) IsZero() bool {
	return p.ReasonCategory == nil &&
		p.AbilityScore == nil &&
		p.ReasonDetail == "" &&
		len(p.UnresolvedObstacles) == 0 &&
		p.BrokenPromises == nil &&
		p.PaymentRefusals == nil &&
		p.HasAbilityConfirmed == nil &&
		p.PaymentDateConfirmed == nil &&
		p.PaymentAmountConfirmed == nil &&
		p.PaymentTypeConfirmed == nil &&
		p.ExtensionRequested == nil &&
		p.NoResponseStreak == nil &&
		len(p.Extra) == 0
}

// Merge applies a patch to a memory record and returns the merged copy. The
// input state is never aliased or mutated. Field semantics:
//
//   - unresolved_obstacles: set union, deduplicated, insertion order kept
//   - reason_detail: appended with a separator when new and different,
//     capped at ReasonDetailCap runes by trimming the oldest content
//   - extra: shallow merge, patch keys overwrite same-named keys
//   - counters: monotonic, a lower patched value is ignored
//   - everything else: last-write-wins when present in the patch
//
// Applying the same patch twice leaves the result unchanged after the first
// application.
func Merge(cur MemoryState, patch MemoryPatch) MemoryState {
	out := cur.Clone()
	if patch.IsZero() {
		return out
	}

	if patch.ReasonCategory != nil {
		out.ReasonCategory = *patch.ReasonCategory
	}
	if patch.AbilityScore != nil {
		out.AbilityScore = *patch.AbilityScore
	}
	if patch.ReasonDetail != "" {
		out.ReasonDetail = appendDetail(out.ReasonDetail, patch.ReasonDetail)
	}
	for _, obstacle := range patch.UnresolvedObstacles {
		obstacle = strings.TrimSpace(obstacle)
		if obstacle == "" || containsString(out.UnresolvedObstacles, obstacle) {
			continue
		}
		out.UnresolvedObstacles = append(out.UnresolvedObstacles, obstacle)
	}

	if patch.BrokenPromises != nil && *patch.BrokenPromises > out.BrokenPromises {
		out.BrokenPromises = *patch.BrokenPromises
	}
	if patch.PaymentRefusals != nil && *patch.PaymentRefusals > out.PaymentRefusals {
		out.PaymentRefusals = *patch.PaymentRefusals
	}

	if patch.HasAbilityConfirmed != nil {
		v := *patch.HasAbilityConfirmed
		out.HasAbilityConfirmed = &v
	}
	if patch.PaymentDateConfirmed != nil {
		out.PaymentDateConfirmed = *patch.PaymentDateConfirmed
	}
	if patch.PaymentAmountConfirmed != nil {
		out.PaymentAmountConfirmed = *patch.PaymentAmountConfirmed
	}
	if patch.PaymentTypeConfirmed != nil {
		out.PaymentTypeConfirmed = *patch.PaymentTypeConfirmed
	}
	if patch.ExtensionRequested != nil {
		out.ExtensionRequested = *patch.ExtensionRequested
	}
	if patch.NoResponseStreak != nil {
		out.NoResponseStreak = *patch.NoResponseStreak
	}

	if len(patch.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]any, len(patch.Extra))
		}
		for k, v := range patch.Extra {
			out.Extra[k] = v
		}
	}

	return out
}

// appendDetail accumulates reason detail text. A duplicate of the current
// tail is ignored; the cap trims from the front so the newest addition
// always survives intact.
func appendDetail(cur, add string) string {
	add = strings.TrimSpace(add)
	if add == "" {
		return cur
	}
	if cur == add || strings.HasSuffix(cur, detailSeparator+add) {
		return cur
	}

	merged := add
	if cur != "" {
		merged = cur + detailSeparator + add
	}

	runes := []rune(merged)
	if len(runes) <= ReasonDetailCap {
		return merged
	}
	addRunes := []rune(add)
	if len(addRunes) >= ReasonDetailCap {
		return string(addRunes[len(addRunes)-ReasonDetailCap:])
	}
	return string(runes[len(runes)-ReasonDetailCap:])
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

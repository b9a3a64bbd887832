package store

import "context"

// ToggleState is the visible like-state of an item: its counter and whether
// the acting user currently has it toggled on.
type ToggleState struct {
	Count  int
	Active bool
}

// flip returns the optimistic prediction for toggling the state.
func (s ToggleState) flip() ToggleState {
	if s.Active {
		count := s.Count - 1
		if count < 0 {
			count = 0
		}
		return ToggleState{Count: count, Active: false}
	}
	return ToggleState{Count: s.Count + 1, Active: true}
}

// ReconcileToggle runs the optimistic-update protocol shared by post, comment
// and reply likes:
//
//  1. capture the current state
//  2. apply the optimistic flip immediately
//  3. run the authoritative toggle, which reports the resulting flag
//  4. if the authoritative flag disagrees with the prediction (a concurrent
//     toggle won), correct to the authoritative state
//  5. on error, revert to the captured state
//
// apply publishes each intermediate state to whatever holds it (usually a
// cached detail entry). The caller is responsible for invalidating the
// affected cache entries afterwards regardless of outcome.
func ReconcileToggle(ctx context.Context, current ToggleState, apply func(ToggleState), toggle func(context.Context) (bool, error)) (ToggleState, error) {
	snapshot := current
	predicted := current.flip()
	apply(predicted)

	active, err := toggle(ctx)
	if err != nil {
		apply(snapshot)
		return snapshot, err
	}

	if active == predicted.Active {
		return predicted, nil
	}

	// The server disagreed: rebuild the state from the authoritative flag.
	corrected := ToggleState{Active: active, Count: snapshot.Count}
	if active && !snapshot.Active {
		corrected.Count = snapshot.Count + 1
	} else if !active && snapshot.Active {
		corrected.Count = snapshot.Count - 1
		if corrected.Count < 0 {
			corrected.Count = 0
		}
	}
	apply(corrected)
	return corrected, nil
}

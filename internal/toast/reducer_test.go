package toast

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignoreInternals = cmpopts.IgnoreUnexported(Toast{}, State{})

func addAll(t *testing.T, state State, ids ...ID) State {
	t.Helper()
	for _, id := range ids {
		state, _ = Reduce(state, AddToast{Toast: Toast{ID: id, Title: string(id)}}, DefaultLimit)
	}
	return state
}

func TestReduce_AddKeepsMostRecent(t *testing.T) {
	for n := 1; n <= 8; n++ {
		t.Run(fmt.Sprintf("%d adds", n), func(t *testing.T) {
			var state State
			var ids []ID
			for i := 1; i <= n; i++ {
				ids = append(ids, ID(fmt.Sprint(i)))
			}
			state = addAll(t, state, ids...)

			require.LessOrEqual(t, state.Len(), DefaultLimit)

			var want []ID
			for i := n; i >= 1 && len(want) < DefaultLimit; i-- {
				want = append(want, ID(fmt.Sprint(i)))
			}
			assert.Equal(t, want, state.IDs())
		})
	}
}

func TestReduce_AddOpensToast(t *testing.T) {
	state, effects := Reduce(State{}, AddToast{Toast: Toast{ID: "a"}}, DefaultLimit)
	assert.Empty(t, effects)
	got, ok := state.Find("a")
	require.True(t, ok)
	assert.True(t, got.Open)
}

func TestReduce_AddExistingIDUpdatesInPlace(t *testing.T) {
	state := addAll(t, State{}, "a", "b", "c")

	state, _ = Reduce(state, AddToast{Toast: Toast{ID: "b", Title: "again", Type: TypeSuccess}}, DefaultLimit)

	assert.Equal(t, []ID{"c", "b", "a"}, state.IDs())
	got, _ := state.Find("b")
	assert.Equal(t, "again", got.Title)
	assert.Equal(t, TypeSuccess, got.Type)
}

func TestReduce_UpdateMergesSetFields(t *testing.T) {
	state, _ := Reduce(State{}, AddToast{Toast: Toast{ID: "a", Title: "Loading", Description: "keep", Type: TypeLoading}}, DefaultLimit)

	state, _ = Reduce(state, UpdateToast{Patch: Patch{ID: "a", Title: Ptr("Done"), Type: Ptr(TypeSuccess)}}, DefaultLimit)

	got, _ := state.Find("a")
	want := Toast{ID: "a", Title: "Done", Description: "keep", Type: TypeSuccess, Open: true}
	if diff := cmp.Diff(want, got, ignoreInternals); diff != "" {
		t.Errorf("updated toast mismatch (-want +got):\n%s", diff)
	}
}

func TestReduce_UpdateUnknownIDIsNoop(t *testing.T) {
	state := addAll(t, State{}, "a")
	next, effects := Reduce(state, UpdateToast{Patch: Patch{ID: "zzz", Title: Ptr("x")}}, DefaultLimit)
	assert.Empty(t, effects)
	if diff := cmp.Diff(state, next, cmp.AllowUnexported(Toast{}, State{})); diff != "" {
		t.Errorf("state changed (-want +got):\n%s", diff)
	}
}

func TestReduce_UpsertNeverGrowsForResidentID(t *testing.T) {
	state := addAll(t, State{}, "a", "b")
	for i := 0; i < 5; i++ {
		title := fmt.Sprintf("v%d", i)
		state, _ = Reduce(state, UpsertToast{Toast: Toast{ID: "a", Title: title}}, DefaultLimit)
		assert.Equal(t, 2, state.Len())
		got, _ := state.Find("a")
		assert.Equal(t, title, got.Title)
	}
	assert.Equal(t, []ID{"b", "a"}, state.IDs())
}

func TestReduce_UpsertAddsUnknownID(t *testing.T) {
	state := addAll(t, State{}, "a")
	state, _ = Reduce(state, UpsertToast{Toast: Toast{ID: "b", Title: "new"}}, DefaultLimit)
	assert.Equal(t, []ID{"b", "a"}, state.IDs())
}

func TestReduce_DismissOneLeavesOthersUntouched(t *testing.T) {
	dismissed := 0
	state, _ := Reduce(State{}, AddToast{Toast: Toast{ID: "a", Title: "a"}}, DefaultLimit)
	state, _ = Reduce(state, AddToast{Toast: Toast{ID: "b", Title: "b", OnDismiss: func(Toast) { dismissed++ }}}, DefaultLimit)
	state, _ = Reduce(state, AddToast{Toast: Toast{ID: "c", Title: "c"}}, DefaultLimit)

	next, effects := Reduce(state, DismissToast{ID: "b"}, DefaultLimit)
	for _, fx := range effects {
		fx()
	}

	assert.Equal(t, 1, dismissed)
	got, _ := next.Find("b")
	assert.False(t, got.Open)
	for _, id := range []ID{"a", "c"} {
		before, _ := state.Find(id)
		after, _ := next.Find(id)
		if diff := cmp.Diff(before, after, cmp.AllowUnexported(Toast{})); diff != "" {
			t.Errorf("toast %s changed (-want +got):\n%s", id, diff)
		}
	}

	// a second dismiss of a closed toast does not call back again
	_, effects = Reduce(next, DismissToast{ID: "b"}, DefaultLimit)
	assert.Empty(t, effects)
}

func TestReduce_DismissAllClearsAndCallsEachOnce(t *testing.T) {
	calls := map[ID]int{}
	var state State
	for _, id := range []ID{"a", "b", "c"} {
		state, _ = Reduce(state, AddToast{Toast: Toast{ID: id, OnDismiss: func(t Toast) { calls[t.ID]++ }}}, DefaultLimit)
	}

	next, effects := Reduce(state, DismissToast{}, DefaultLimit)
	for _, fx := range effects {
		fx()
	}

	assert.Zero(t, next.Len())
	assert.Equal(t, map[ID]int{"a": 1, "b": 1, "c": 1}, calls)
}

func TestReduce_DismissAllReachesAutoClosedToasts(t *testing.T) {
	calls := map[ID]int{}
	onDismiss := func(t Toast) { calls[t.ID]++ }
	state, _ := Reduce(State{}, AddToast{Toast: Toast{ID: "closing", OnDismiss: onDismiss}}, DefaultLimit)
	state, _ = Reduce(state, AddToast{Toast: Toast{ID: "gone", OnDismiss: onDismiss}}, DefaultLimit)

	closing, _ := state.Find("closing")
	state, _ = Reduce(state, closeToast{id: "closing", instance: closing.instance}, DefaultLimit)
	state, effects := Reduce(state, DismissToast{ID: "gone"}, DefaultLimit)
	for _, fx := range effects {
		fx()
	}
	require.Equal(t, map[ID]int{"gone": 1}, calls)

	next, effects := Reduce(state, DismissToast{}, DefaultLimit)
	for _, fx := range effects {
		fx()
	}

	assert.Zero(t, next.Len())
	assert.Equal(t, map[ID]int{"closing": 1, "gone": 1}, calls)
}

func TestReduce_Remove(t *testing.T) {
	state := addAll(t, State{}, "a", "b", "c")

	next, _ := Reduce(state, RemoveToast{ID: "b"}, DefaultLimit)
	assert.Equal(t, []ID{"c", "a"}, next.IDs())

	same, _ := Reduce(next, RemoveToast{ID: "missing"}, DefaultLimit)
	assert.Equal(t, next.IDs(), same.IDs())

	empty, _ := Reduce(next, RemoveToast{}, DefaultLimit)
	assert.Zero(t, empty.Len())
}

func TestReduce_RemoveIgnoresOtherIncarnation(t *testing.T) {
	state := addAll(t, State{}, "a")
	old, _ := state.Find("a")

	state, _ = Reduce(state, RemoveToast{ID: "a"}, DefaultLimit)
	state = addAll(t, state, "a")
	fresh, _ := state.Find("a")
	require.NotEqual(t, old.instance, fresh.instance)

	state, _ = Reduce(state, RemoveToast{ID: "a", instance: old.instance}, DefaultLimit)
	assert.Equal(t, []ID{"a"}, state.IDs())
}

func TestReduce_CloseRunsAutoClose(t *testing.T) {
	var closed []ID
	state, _ := Reduce(State{}, AddToast{Toast: Toast{ID: "a", OnAutoClose: func(t Toast) { closed = append(closed, t.ID) }}}, DefaultLimit)
	got, _ := state.Find("a")

	next, effects := Reduce(state, closeToast{id: "a", instance: got.instance}, DefaultLimit)
	for _, fx := range effects {
		fx()
	}
	after, _ := next.Find("a")
	assert.False(t, after.Open)
	assert.Equal(t, []ID{"a"}, closed)

	_, effects = Reduce(next, closeToast{id: "a", instance: got.instance}, DefaultLimit)
	assert.Empty(t, effects)
}

func TestReduce_UnknownActionPassesThrough(t *testing.T) {
	state := addAll(t, State{}, "a", "b")
	next, effects := Reduce(state, nil, DefaultLimit)
	assert.Empty(t, effects)
	assert.Equal(t, state.IDs(), next.IDs())
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	state := addAll(t, State{}, "a", "b", "c")
	snapshot := append([]Toast(nil), state.Toasts...)

	Reduce(state, DismissToast{ID: "a"}, DefaultLimit)
	Reduce(state, UpdateToast{Patch: Patch{ID: "b", Title: Ptr("changed")}}, DefaultLimit)
	Reduce(state, AddToast{Toast: Toast{ID: "d"}}, DefaultLimit)

	if diff := cmp.Diff(snapshot, state.Toasts, cmp.AllowUnexported(Toast{})); diff != "" {
		t.Errorf("input state mutated (-want +got):\n%s", diff)
	}
}

func TestReduce_CustomLimit(t *testing.T) {
	var state State
	for i := 0; i < 10; i++ {
		state, _ = Reduce(state, AddToast{Toast: Toast{ID: ID(fmt.Sprint(i))}}, 5)
	}
	assert.Equal(t, 5, state.Len())
}

func TestTypeString(t *testing.T) {
	seen := map[string]bool{}
	for _, typ := range Types {
		s := typ.String()
		assert.NotEqual(t, "unknown", s)
		assert.False(t, seen[s], "duplicate name %s", s)
		seen[s] = true
	}
	assert.Equal(t, "unknown", Type(99).String())
}

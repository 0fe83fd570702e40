package status

import (
	"math/rand"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range All() {
		got, ok := Parse(c.String())
		if !ok {
			t.Fatalf("Parse(%q) rejected a lexicon code", c.String())
		}
		if got != c {
			t.Fatalf("Parse(%q) = %v, want %v", c.String(), got, c)
		}
	}
	if len(All()) != 27 {
		t.Fatalf("expected 26 git codes plus NoStatus, got %d", len(All()))
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{" T", "XY", "M", "MMM", " A"} {
		if _, ok := Parse(raw); ok {
			t.Fatalf("Parse(%q) should fail", raw)
		}
	}
}

func TestOrderedListsShape(t *testing.T) {
	t.Parallel()

	if OrderedDirStatusList[0] != WDOnlyModified || OrderedDirStatusList[len(OrderedDirStatusList)-1] != NotTracked {
		t.Fatalf("unexpected ends of OrderedDirStatusList: %v", OrderedDirStatusList)
	}
	for _, c := range OrderedDirCleanStatusList {
		if CleanSet.Has(c) {
			t.Fatalf("clean code %q present in OrderedDirCleanStatusList", c)
		}
	}
	if len(OrderedDirStatusList) != 24 || len(OrderedDirCleanStatusList) != 19 {
		t.Fatalf("list lengths = %d/%d, want 24/19", len(OrderedDirStatusList), len(OrderedDirCleanStatusList))
	}
	if !SignificantSet.Has(NotTracked) || SignificantSet.Has(Ignored) || SignificantSet.Has(Unmodified) {
		t.Fatalf("unexpected SignificantSet members: %v", SignificantSet.Codes())
	}
}

func TestFirstInSet(t *testing.T) {
	t.Parallel()

	yes := func() bool { return true }
	no := func() bool { return false }
	tests := []struct {
		name    string
		set     Set
		ignored func() bool
		want    Code
	}{
		{name: "modified_beats_untracked", set: NewSet(Modified, NotTracked), ignored: no, want: Modified},
		{name: "wd_only_first", set: NewSet(Added, WDOnlyDeleted, WDOnlyModified), ignored: no, want: WDOnlyModified},
		{name: "unmerged_before_plain", set: NewSet(Renamed, UnmergedDeletedUs), ignored: no, want: UnmergedDeletedUs},
		{name: "untracked_only", set: NewSet(NotTracked, Ignored), ignored: yes, want: NotTracked},
		{name: "ignored_fallback", set: NewSet(Ignored), ignored: yes, want: Ignored},
		{name: "no_status_fallback", set: NewSet(Unmodified), ignored: no, want: NoStatus},
		{name: "nil_check_is_no_status", set: Set(0), ignored: nil, want: NoStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FirstInSet(OrderedDirStatusList, tt.set, tt.ignored); got != tt.want {
				t.Fatalf("FirstInSet() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstInSetIsOrderIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	all := All()
	for range 200 {
		codes := make([]Code, 0, 4)
		for range 1 + rng.Intn(4) {
			codes = append(codes, all[rng.Intn(len(all))])
		}
		forward := NewSet(codes...)
		for i, j := 0, len(codes)-1; i < j; i, j = i+1, j-1 {
			codes[i], codes[j] = codes[j], codes[i]
		}
		backward := NewSet(codes...)

		want := NoStatus
		for _, c := range OrderedDirStatusList {
			if forward.Has(c) {
				want = c
				break
			}
		}
		got1 := FirstInSet(OrderedDirStatusList, forward, nil)
		got2 := FirstInSet(OrderedDirStatusList, backward, nil)
		if got1 != want || got2 != want {
			t.Fatalf("codes %v: got %q/%q, want %q", codes, got1, got2, want)
		}
	}
}

func TestRollupCallsIgnoreCheckOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	dir, clean := Rollup(NewSet(Unmodified), func() bool {
		calls++
		return true
	})
	if dir != Ignored || clean != Ignored {
		t.Fatalf("Rollup() = %q/%q, want !!/!!", dir, clean)
	}
	if calls != 1 {
		t.Fatalf("ignore check ran %d times, want 1", calls)
	}
}

func TestRollupCleanStatusSkipsCleanCodes(t *testing.T) {
	t.Parallel()

	dir, clean := Rollup(NewSet(Modified, Added), nil)
	if dir != Modified {
		t.Fatalf("dir status = %q, want %q", dir, Modified)
	}
	if clean != NoStatus {
		t.Fatalf("clean status = %q, want empty", clean)
	}
}

func TestSetString(t *testing.T) {
	t.Parallel()

	if got := NewSet(NotTracked, WDOnlyModified, NoStatus).String(); got != `["" " M" "??"]` {
		t.Fatalf("String() = %s", got)
	}
	if got := NewSet().String(); got != "[]" {
		t.Fatalf("empty String() = %s", got)
	}
}

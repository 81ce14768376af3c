package task

import (
	"reflect"
	"testing"
	"time"

	"github.com/existflow/taskdeck/internal/model"
)

func viewIDs(view []model.Task) []string {
	ids := make([]string, len(view))
	for i, t := range view {
		ids[i] = t.ID
	}
	return ids
}

func TestDeriveViewZeroFilter(t *testing.T) {
	tasks := seed()
	view := DeriveView(tasks, Filter{})
	if !reflect.DeepEqual(viewIDs(view), []string{"t1", "t2", "t3"}) {
		t.Errorf("zero filter changed order: %v", viewIDs(view))
	}
}

func TestDeriveViewTagsAreANDed(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Categories: []string{"work"}},
		{ID: "b", Categories: []string{"work", "urgent"}},
		{ID: "c", Categories: []string{"urgent"}},
		{ID: "d"},
	}

	cases := []struct {
		tags []string
		want []string
	}{
		{nil, []string{"a", "b", "c", "d"}},
		{[]string{"work"}, []string{"a", "b"}},
		{[]string{"work", "urgent"}, []string{"b"}},
		{[]string{"missing"}, []string{}},
	}
	for _, tc := range cases {
		view := DeriveView(tasks, Filter{Tags: tc.tags})
		if got := viewIDs(view); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("tags %v: got %v, want %v", tc.tags, got, tc.want)
		}
	}
}

func TestDeriveViewDateExactMatch(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Deadline: "01/09/2026"},
		{ID: "b", Deadline: "02/09/2026"},
		{ID: "c"},
	}

	view := DeriveView(tasks, Filter{Date: "01/09/2026"})
	if got := viewIDs(view); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("date filter got %v", got)
	}

	// A date no task carries yields an empty view, tasks without a
	// deadline never match
	view = DeriveView(tasks, Filter{Date: "03/09/2026"})
	if len(view) != 0 {
		t.Errorf("unmatched date returned %v", viewIDs(view))
	}
}

func TestDeriveViewStableSort(t *testing.T) {
	two := 2
	tasks := []model.Task{
		{ID: "a", Priority: &two},
		{ID: "c"},
		{ID: "b", Priority: &two},
	}

	// Equal priorities keep their relative order; the unprioritized task
	// ranks below everything when sorting high to low
	view := DeriveView(tasks, Filter{Sort: SortHighToLow})
	if got := viewIDs(view); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("high-to-low got %v, want [a b c]", got)
	}

	view = DeriveView(tasks, Filter{Sort: SortLowToHigh})
	if got := viewIDs(view); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("low-to-high got %v, want [c a b]", got)
	}
}

func TestDeriveViewSortOrders(t *testing.T) {
	low, med, high := model.PriorityLow, model.PriorityMedium, model.PriorityHigh
	tasks := []model.Task{
		{ID: "m", Priority: &med},
		{ID: "n"},
		{ID: "h", Priority: &high},
		{ID: "l", Priority: &low},
	}

	view := DeriveView(tasks, Filter{Sort: SortLowToHigh})
	if got := viewIDs(view); !reflect.DeepEqual(got, []string{"n", "l", "m", "h"}) {
		t.Errorf("low-to-high got %v", got)
	}

	view = DeriveView(tasks, Filter{Sort: SortHighToLow})
	if got := viewIDs(view); !reflect.DeepEqual(got, []string{"h", "m", "l", "n"}) {
		t.Errorf("high-to-low got %v", got)
	}
}

func TestDeriveViewFilterThenSort(t *testing.T) {
	low, high := model.PriorityLow, model.PriorityHigh
	tasks := []model.Task{
		{ID: "a", Categories: []string{"work"}, Priority: &low},
		{ID: "b", Categories: []string{"home"}, Priority: &high},
		{ID: "c", Categories: []string{"work"}, Priority: &high},
	}

	view := DeriveView(tasks, Filter{Tags: []string{"work"}, Sort: SortHighToLow})
	if got := viewIDs(view); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Errorf("got %v, want [c a]", got)
	}
}

func TestDeriveViewDoesNotMutateInput(t *testing.T) {
	high := model.PriorityHigh
	tasks := []model.Task{
		{ID: "a", Categories: []string{"work"}},
		{ID: "b", Priority: &high, Subtasks: []model.Subtask{{ID: "s", Text: "x"}}},
	}
	before := model.CloneTasks(tasks)

	view := DeriveView(tasks, Filter{Sort: SortHighToLow})
	view[0].Title = "mutated"
	view[0].Subtasks[0].Text = "mutated"
	view[1].Categories[0] = "mutated"

	if !reflect.DeepEqual(tasks, before) {
		t.Errorf("DeriveView mutated its input")
	}
}

func TestFilterIsZero(t *testing.T) {
	if !(Filter{}).IsZero() {
		t.Errorf("zero filter not zero")
	}
	for _, f := range []Filter{
		{Tags: []string{"x"}},
		{Date: "01/01/2026"},
		{Sort: SortLowToHigh},
	} {
		if f.IsZero() {
			t.Errorf("filter %+v reported zero", f)
		}
	}
}

func TestFilterSetDate(t *testing.T) {
	var f Filter
	f.SetDate(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC))
	if f.Date != "05/09/2026" {
		t.Errorf("Date = %q, want 05/09/2026", f.Date)
	}
}

func TestCollectTags(t *testing.T) {
	tasks := []model.Task{
		{Categories: []string{"b", "a"}},
		{Categories: []string{"a", "c"}},
		{},
	}
	want := []string{"b", "a", "c"}
	if got := CollectTags(tasks); !reflect.DeepEqual(got, want) {
		t.Errorf("CollectTags = %v, want %v", got, want)
	}
}

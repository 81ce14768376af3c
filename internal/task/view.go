package task

import (
	"sort"
	"time"

	"github.com/existflow/taskdeck/internal/model"
)

// SortOrder is a priority sort directive. It reorders the view but never
// removes tasks from it.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortLowToHigh
	SortHighToLow
)

// Filter is the transient view criteria. Zero value means "show
// everything in server order".
type Filter struct {
	Tags []string  // AND semantics: a task must carry every listed tag
	Date string    // dd/mm/yyyy; exact match against the deadline string
	Sort SortOrder // priority ordering
}

// IsZero reports whether the filter is a no-op
func (f Filter) IsZero() bool {
	return len(f.Tags) == 0 && f.Date == "" && f.Sort == SortNone
}

// SetDate sets the date criterion from a time value
func (f *Filter) SetDate(t time.Time) {
	f.Date = model.FormatDeadline(t)
}

// DeriveView computes the presented view from the canonical collection
// and the filter criteria. Pure and deterministic: the input collection
// is never mutated, and equal-priority tasks keep their relative order
// (stable sort, no secondary key).
func DeriveView(tasks []model.Task, f Filter) []model.Task {
	view := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesTags(&t, f.Tags) {
			continue
		}
		if f.Date != "" && t.Deadline != f.Date {
			continue
		}
		view = append(view, t.Clone())
	}

	switch f.Sort {
	case SortLowToHigh:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].PriorityRank() < view[j].PriorityRank()
		})
	case SortHighToLow:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].PriorityRank() > view[j].PriorityRank()
		})
	}

	return view
}

func matchesTags(t *model.Task, tags []string) bool {
	for _, tag := range tags {
		if !t.HasCategory(tag) {
			return false
		}
	}
	return true
}

// CollectTags returns the distinct tags across a collection in
// first-seen order
func CollectTags(tasks []model.Task) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, t := range tasks {
		for _, tag := range t.Categories {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

// Package listing derives the displayed task list from fetched tasks, a search
// term and a selected category, and computes category facet counts.
package listing

import (
	"strings"
	"taskMap/internal/models/task"
)

type Filter struct {
	Search   string
	Category task.Category
}

// selector возвращает выбранную категорию, пустая равна "all"
func (f Filter) selector() task.Category {
	c := task.Category(strings.TrimSpace(string(f.Category)))
	if c == "" {
		return task.CategoryAll
	}
	return c
}

// Match: категория совпадает (или выбрано "all") и строка поиска без учёта
// регистра входит в название, описание или адрес
func (f Filter) Match(t *task.Task) bool {
	if sel := f.selector(); sel != task.CategoryAll && t.Category != sel {
		return false
	}

	needle := strings.ToLower(f.Search)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.Location), needle)
}

// Apply сохраняет исходный порядок; неизвестная категория даёт пустой список
func Apply(tasks []*task.Task, f Filter) []*task.Task {
	res := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			res = append(res, t)
		}
	}
	return res
}

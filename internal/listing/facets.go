package listing

import "taskMap/internal/models/task"

type Facet struct {
	ID    task.Category `json:"id"`
	Name  string        `json:"name"`
	Count int           `json:"count"`
}

// CategoryInfo - запись реестра известных категорий
type CategoryInfo struct {
	ID   task.Category
	Name string
}

type Registry []CategoryInfo

func DefaultRegistry() Registry {
	return Registry{
		{ID: "cleaning", Name: "Cleaning"},
		{ID: "delivery", Name: "Delivery"},
		{ID: "pet-care", Name: "Pet Care"},
		{ID: "handyman", Name: "Handyman"},
		{ID: "admin", Name: "Admin"},
		{ID: "moving", Name: "Moving"},
		{ID: "gardening", Name: "Gardening"},
		{ID: "tutoring", Name: "Tutoring"},
	}
}

func (r Registry) name(id task.Category) string {
	for _, c := range r {
		if c.ID == id {
			return c.Name
		}
	}
	return string(id)
}

// Count - "all" равен числу задач, плюс по записи на каждую встреченную категорию
func Count(tasks []*task.Task) map[task.Category]int {
	counts := map[task.Category]int{task.CategoryAll: len(tasks)}
	for _, t := range tasks {
		counts[t.Category]++
	}
	return counts
}

// Facets упорядочивает счётчики для фильтра: сначала "all", затем категории
// реестра (включая нулевые), затем незнакомые категории в порядке появления
func Facets(tasks []*task.Task, registry Registry) []Facet {
	counts := Count(tasks)

	res := make([]Facet, 0, len(registry)+1)
	res = append(res, Facet{ID: task.CategoryAll, Name: "All Tasks", Count: counts[task.CategoryAll]})

	seen := map[task.Category]bool{task.CategoryAll: true}
	for _, c := range registry {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		res = append(res, Facet{ID: c.ID, Name: c.Name, Count: counts[c.ID]})
	}

	for _, t := range tasks {
		if seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		res = append(res, Facet{ID: t.Category, Name: registry.name(t.Category), Count: counts[t.Category]})
	}
	return res
}

// Package fixtures is the single provider of sample tasks. Listings built from
// it are always flagged as sample data.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"taskMap/internal/models/task"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed samples.yml
var embedded []byte

type sampleFile struct {
	Tasks []sampleTask `yaml:"tasks"`
}

type sampleTask struct {
	ID            string    `yaml:"id"`
	Title         string    `yaml:"title"`
	Description   string    `yaml:"description"`
	Price         string    `yaml:"price"`
	Category      string    `yaml:"category"`
	Location      string    `yaml:"location"`
	Latitude      float64   `yaml:"latitude"`
	Longitude     float64   `yaml:"longitude"`
	EstimatedTime string    `yaml:"estimated_time"`
	Urgency       string    `yaml:"urgency"`
	CreatedAt     time.Time `yaml:"created_at"`
	Poster        *struct {
		FirstName string `yaml:"first_name"`
		LastName  string `yaml:"last_name"`
		Rating    string `yaml:"rating"`
	} `yaml:"poster"`
}

type Provider struct {
	tasks []*task.Task
}

// Default - набор из samples.yml, встроенный в бинарник
func Default() (*Provider, error) {
	return Parse(embedded)
}

func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение файла примеров: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Provider, error) {
	var file sampleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("разбор примеров: %w", err)
	}

	tasks := make([]*task.Task, 0, len(file.Tasks))
	for i, s := range file.Tasks {
		t, err := s.toTask()
		if err != nil {
			return nil, fmt.Errorf("пример #%d: %w", i+1, err)
		}
		tasks = append(tasks, t)
	}

	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return &Provider{tasks: tasks}, nil
}

func (s sampleTask) toTask() (*task.Task, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("price должна быть больше 0")
	}

	t := &task.Task{
		ID:            id,
		Title:         s.Title,
		Description:   s.Description,
		Category:      task.Category(s.Category),
		Location:      s.Location,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		Price:         price,
		EstimatedTime: s.EstimatedTime,
		Urgency:       s.Urgency,
		Status:        task.StatusOpen,
		Images:        []string{},
		CreatedAt:     s.CreatedAt,
	}

	if s.Poster != nil {
		rating := decimal.Zero
		if s.Poster.Rating != "" {
			rating, err = decimal.NewFromString(s.Poster.Rating)
			if err != nil {
				return nil, fmt.Errorf("rating: %w", err)
			}
		}
		t.PosterID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("taskmap:sample:"+s.Poster.FirstName+s.Poster.LastName))
		t.Poster = &task.PosterSummary{
			FirstName: s.Poster.FirstName,
			LastName:  s.Poster.LastName,
			Rating:    rating,
		}
	}
	return t, nil
}

// Tasks возвращает копии, вызывающий может их менять
func (p *Provider) Tasks() []*task.Task {
	res := make([]*task.Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		res = append(res, clone(t))
	}
	return res
}

func (p *Provider) Find(id uuid.UUID) (*task.Task, bool) {
	for _, t := range p.tasks {
		if t.ID == id {
			return clone(t), true
		}
	}
	return nil, false
}

func clone(t *task.Task) *task.Task {
	out := *t
	out.Images = slices.Clone(t.Images)
	if t.Poster != nil {
		poster := *t.Poster
		out.Poster = &poster
	}
	return &out
}

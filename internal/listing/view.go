package listing

import (
	"context"
	"taskMap/internal/logger"
	"taskMap/internal/models/task"

	"go.uber.org/zap"
)

type Source string

const SourceLive Source = "live"
const SourceSample Source = "sample"

type Mode string

const ModeLive Mode = "live"
const ModeSample Mode = "sample"

type FetchFunc func(context.Context) ([]*task.Task, error)

type SampleSet interface {
	Tasks() []*task.Task
}

type Options struct {
	Mode     Mode
	Fallback bool
	Registry Registry
}

// View - то, что отдаётся на страницу списка. Source всегда показывает,
// живые это данные или примеры.
type View struct {
	Tasks      []*task.Task `json:"tasks"`
	Categories []Facet      `json:"categories"`
	Total      int          `json:"total"`
	Source     Source       `json:"source"`
	Error      string       `json:"error,omitempty"`
}

type Builder struct {
	fetch   FetchFunc
	samples SampleSet
	opts    Options
}

func NewBuilder(fetch FetchFunc, samples SampleSet, opts Options) *Builder {
	if opts.Mode == "" {
		opts.Mode = ModeLive
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	return &Builder{fetch: fetch, samples: samples, opts: opts}
}

// Build делает одну попытку загрузки. Если запрос отменён, примеры не подставляются:
// потребителя уже нет.
func (b *Builder) Build(ctx context.Context, f Filter) View {
	if b.opts.Mode == ModeSample {
		return b.view(b.sampleTasks(), SourceSample, "", f)
	}

	tasks, err := b.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return View{Tasks: []*task.Task{}, Categories: []Facet{}, Source: SourceLive, Error: ctx.Err().Error()}
		}
		logger.Warn("Service: Не удалось загрузить задачи", zap.Error(err), zap.Bool("fallback", b.opts.Fallback))
		if b.opts.Fallback && b.samples != nil {
			return b.view(b.sampleTasks(), SourceSample, err.Error(), f)
		}
		return b.view([]*task.Task{}, SourceLive, err.Error(), f)
	}

	if len(tasks) == 0 && b.opts.Fallback && b.samples != nil {
		logger.Info("Service: Открытых задач нет, показываем примеры")
		return b.view(b.sampleTasks(), SourceSample, "", f)
	}
	return b.view(tasks, SourceLive, "", f)
}

func (b *Builder) sampleTasks() []*task.Task {
	if b.samples == nil {
		return []*task.Task{}
	}
	return b.samples.Tasks()
}

// счётчики категорий считаются по всему набору, а не по отфильтрованному:
// выбор категории не обнуляет остальные кнопки фильтра
func (b *Builder) view(all []*task.Task, source Source, errMsg string, f Filter) View {
	return View{
		Tasks:      Apply(all, f),
		Categories: Facets(all, b.opts.Registry),
		Total:      len(all),
		Source:     source,
		Error:      errMsg,
	}
}

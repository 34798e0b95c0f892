package fixtures_test

import (
	"taskMap/internal/fixtures"
	"taskMap/internal/models/task"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p, err := fixtures.Default()
	require.NoError(t, err)

	tasks := p.Tasks()
	require.Len(t, tasks, 6)

	for i, tk := range tasks {
		assert.Equal(t, task.StatusOpen, tk.Status)
		assert.True(t, tk.Price.IsPositive(), tk.Title)
		assert.NotEqual(t, task.CategoryAll, tk.Category)
		require.NotNil(t, tk.Poster, tk.Title)
		if i > 0 {
			assert.False(t, tk.CreatedAt.After(tasks[i-1].CreatedAt), "samples are newest first")
		}
	}

	assert.Equal(t, "Clean my apartment", tasks[0].Title)
	assert.True(t, decimal.NewFromInt(80).Equal(tasks[0].Price))
}

func TestProvider_TasksAreCopies(t *testing.T) {
	p, err := fixtures.Default()
	require.NoError(t, err)

	first := p.Tasks()
	first[0].Title = "changed"
	first[0].Poster.FirstName = "changed"

	second := p.Tasks()
	assert.Equal(t, "Clean my apartment", second[0].Title)
	assert.NotEqual(t, "changed", second[0].Poster.FirstName)
}

func TestProvider_Find(t *testing.T) {
	p, err := fixtures.Default()
	require.NoError(t, err)

	id := uuid.MustParse("6f1c2a90-0003-4b1e-9c3a-5a0d7e1f0003")
	found, ok := p.Find(id)
	require.True(t, ok)
	assert.Equal(t, "Walk my dog", found.Title)

	_, ok = p.Find(uuid.New())
	assert.False(t, ok)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"broken yaml", "tasks: [\n"},
		{"bad price", "tasks:\n  - id: 6f1c2a90-0001-4b1e-9c3a-5a0d7e1f0001\n    title: x\n    price: abc\n    category: cleaning\n"},
		{"zero price", "tasks:\n  - id: 6f1c2a90-0001-4b1e-9c3a-5a0d7e1f0001\n    title: x\n    price: \"0\"\n    category: cleaning\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixtures.Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

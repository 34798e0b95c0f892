// Package repotest holds the behaviour every storage backend must share.
// Backend test packages call Run with a factory that returns an empty store.
package repotest

import (
	"context"
	"errors"
	"taskMap/internal/models/application"
	"taskMap/internal/models/profile"
	"taskMap/internal/models/task"
	repo "taskMap/internal/repository"
	"taskMap/internal/service"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Factory func(t *testing.T) service.Repository

func newTask(posterID uuid.UUID, title string, category task.Category) *task.Task {
	return task.New(posterID, title, "описание "+title, category, decimal.RequireFromString("25.50"),
		task.WithLocation("Downtown"),
		task.WithCoordinates(40.7128, -74.0060),
		task.WithEstimatedTime("1-2 hours"),
		task.WithUrgency("Today"),
	)
}

func floatPtr(f float64) *float64 { return &f }

func Run(t *testing.T, factory Factory) {
	t.Run("HealthCheck", func(t *testing.T) {
		r := factory(t)
		assert.NoError(t, r.HealthCheck(context.Background()))
	})

	t.Run("CreateAndGetTask", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()
		posterID := uuid.New()

		created := newTask(posterID, "Clean my apartment", "cleaning")
		created.Images = []string{"https://img.example/1.jpg"}
		require.NoError(t, r.CreateTask(ctx, created))
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := r.GetTaskByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Clean my apartment", got.Title)
		assert.Equal(t, task.Category("cleaning"), got.Category)
		assert.Equal(t, task.StatusOpen, got.Status)
		assert.Equal(t, posterID, got.PosterID)
		assert.True(t, decimal.RequireFromString("25.50").Equal(got.Price), got.Price.String())
		assert.InDelta(t, 40.7128, got.Latitude, 1e-9)
		assert.Equal(t, []string{"https://img.example/1.jpg"}, got.Images)
		assert.Nil(t, got.Poster, "poster without a profile")
	})

	t.Run("GetTaskNotFound", func(t *testing.T) {
		r := factory(t)
		_, err := r.GetTaskByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("ListOpenTasksNewestFirstWithPoster", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()

		posterID := uuid.New()
		require.NoError(t, r.UpsertProfile(ctx, &profile.Profile{
			ID: posterID, FirstName: "Sarah", LastName: "M", Role: profile.RoleTaskProvider,
		}))

		titles := []string{"first", "second", "third"}
		for _, title := range titles {
			require.NoError(t, r.CreateTask(ctx, newTask(posterID, title, "delivery")))
			time.Sleep(5 * time.Millisecond)
		}
		closed := newTask(posterID, "closed", "delivery")
		closed.Status = task.StatusCompleted
		require.NoError(t, r.CreateTask(ctx, closed))

		open, err := r.ListOpenTasks(ctx)
		require.NoError(t, err)
		require.Len(t, open, 3)
		assert.Equal(t, "third", open[0].Title)
		assert.Equal(t, "second", open[1].Title)
		assert.Equal(t, "first", open[2].Title)
		for _, tk := range open {
			require.NotNil(t, tk.Poster)
			assert.Equal(t, "Sarah", tk.Poster.FirstName)
		}
	})

	t.Run("ListOpenTasksEmpty", func(t *testing.T) {
		r := factory(t)
		open, err := r.ListOpenTasks(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, open)
		assert.Empty(t, open)
	})

	t.Run("Applications", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()

		target := newTask(uuid.New(), "Walk my dog", "pet-care")
		require.NoError(t, r.CreateTask(ctx, target))

		workerID := uuid.New()
		require.NoError(t, r.UpsertProfile(ctx, &profile.Profile{
			ID: workerID, FirstName: "John", LastName: "D",
			Latitude: floatPtr(40.75), Longitude: floatPtr(-73.98), Role: profile.RoleGigWorker,
		}))

		first := application.New(target.ID, workerID, "I can help")
		require.NoError(t, r.CreateApplication(ctx, first))
		assert.NotEqual(t, uuid.Nil, first.ID)
		assert.False(t, first.AppliedAt.IsZero())

		time.Sleep(5 * time.Millisecond)
		// повторный отклик того же исполнителя допустим
		second := application.New(target.ID, workerID, "")
		require.NoError(t, r.CreateApplication(ctx, second))

		apps, err := r.ListApplicationsByTask(ctx, target.ID)
		require.NoError(t, err)
		require.Len(t, apps, 2)
		assert.Equal(t, second.ID, apps[0].ID)
		assert.Equal(t, first.ID, apps[1].ID)
		assert.Equal(t, application.StatusPending, apps[1].Status)
		assert.Equal(t, "I can help", apps[1].Message)
		require.NotNil(t, apps[0].Worker)
		assert.Equal(t, "John", apps[0].Worker.FirstName)
		require.NotNil(t, apps[0].Worker.Latitude)
		assert.InDelta(t, 40.75, *apps[0].Worker.Latitude, 1e-9)

		other, err := r.ListApplicationsByTask(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("ApplicationForMissingTask", func(t *testing.T) {
		r := factory(t)
		err := r.CreateApplication(context.Background(), application.New(uuid.New(), uuid.New(), ""))
		assert.True(t, errors.Is(err, repo.ErrNotFound), "got %v", err)
	})

	t.Run("UpsertProfileKeepsRating", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()
		id := uuid.New()

		_, err := r.GetProfileByID(ctx, id)
		assert.ErrorIs(t, err, repo.ErrNotFound)

		p := &profile.Profile{ID: id, FirstName: "Emily", LastName: "R", Role: profile.RoleBoth,
			Rating: decimal.RequireFromString("4.50"), TotalRatings: 2}
		require.NoError(t, r.UpsertProfile(ctx, p))
		assert.False(t, p.CreatedAt.IsZero())

		update := &profile.Profile{ID: id, FirstName: "Emily", LastName: "Rose", Email: "emily@example.com", Role: profile.RoleGigWorker}
		require.NoError(t, r.UpsertProfile(ctx, update))
		assert.True(t, decimal.RequireFromString("4.5").Equal(update.Rating))
		assert.NotNil(t, update.UpdatedAt)

		got, err := r.GetProfileByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Rose", got.LastName)
		assert.Equal(t, "emily@example.com", got.Email)
		assert.Equal(t, profile.RoleGigWorker, got.Role)
		assert.True(t, decimal.RequireFromString("4.5").Equal(got.Rating), got.Rating.String())
		assert.Equal(t, 2, got.TotalRatings)
	})
}

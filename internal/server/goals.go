package server

import (
	"net/http"

	"calendar-api/internal/calendar"
	"calendar-api/internal/store"
)

// listGoals handles GET /api/goals. An empty collection is filled with the
// sample goals first. Concurrent first reads may both insert them.
func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	const msg = "Failed to fetch goals"
	ctx := r.Context()
	goals := s.db.Collection(store.Goals)

	docs, err := goals.Find(ctx, nil)
	if err != nil {
		fail(w, r, msg, err)
		return
	}

	if len(docs) == 0 {
		if _, err := goals.InsertMany(ctx, calendar.Documents(calendar.SampleGoals())); err != nil {
			fail(w, r, msg, err)
			return
		}
		GetMetrics().RecordSampleSeed(store.Goals)
		Info("sample goals inserted", map[string]any{"rid": RequestIDFromContext(ctx)})

		if docs, err = goals.Find(ctx, nil); err != nil {
			fail(w, r, msg, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, docs)
}

// listTasks handles GET /api/tasks. An empty collection gets the sample
// tasks attached to the LEARN goal, but only when that goal exists.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	const msg = "Failed to fetch tasks"
	ctx := r.Context()
	tasks := s.db.Collection(store.Tasks)

	docs, err := tasks.Find(ctx, nil)
	if err != nil {
		fail(w, r, msg, err)
		return
	}

	if len(docs) == 0 {
		learn, err := s.db.Collection(store.Goals).FindOne(ctx, store.Filter{"name": calendar.LearnGoalName})
		if err != nil {
			fail(w, r, msg, err)
			return
		}

		if goal, ok := learn.Get(); ok {
			goalID, _ := goal[store.IDField].(string)
			if _, err := tasks.InsertMany(ctx, calendar.Documents(calendar.SampleTasks(goalID))); err != nil {
				fail(w, r, msg, err)
				return
			}
			GetMetrics().RecordSampleSeed(store.Tasks)
			Info("sample tasks inserted", map[string]any{
				"rid":     RequestIDFromContext(ctx),
				"goal_id": goalID,
			})

			if docs, err = tasks.Find(ctx, nil); err != nil {
				fail(w, r, msg, err)
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, docs)
}

package server

import (
	"context"
	"fmt"
	"net/http"

	"calendar-api/internal/calendar"
	"calendar-api/internal/store"
)

// seed handles GET /api/seed: every collection is cleared and refilled with
// the sample data.
func (s *Server) seed(w http.ResponseWriter, r *http.Request) {
	if err := s.reseed(r.Context()); err != nil {
		GetMetrics().RecordReseed(false)
		Error("seed failed", map[string]any{"rid": RequestIDFromContext(r.Context())}, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to seed database"})
		return
	}

	GetMetrics().RecordReseed(true)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Database seeded successfully"})
}

func (s *Server) reseed(ctx context.Context) error {
	for _, name := range []string{store.Goals, store.Tasks, store.Events} {
		if err := s.db.Collection(name).DeleteAll(ctx); err != nil {
			return err
		}
	}

	goalIDs, err := s.db.Collection(store.Goals).InsertMany(ctx, calendar.Documents(calendar.SampleGoals()))
	if err != nil {
		return err
	}
	if len(goalIDs) <= calendar.LearnGoalIndex {
		return fmt.Errorf("seed goals: got %d ids, want at least %d", len(goalIDs), calendar.LearnGoalIndex+1)
	}

	// Tasks hang off whichever goal was inserted third.
	learnID := goalIDs[calendar.LearnGoalIndex]
	if _, err := s.db.Collection(store.Tasks).InsertMany(ctx, calendar.Documents(calendar.SampleTasks(learnID))); err != nil {
		return err
	}

	if _, err := s.db.Collection(store.Events).InsertMany(ctx, calendar.Documents(calendar.SampleEvents(s.now()))); err != nil {
		return err
	}
	return nil
}

package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-api/internal/store"
)

func TestSampleGoals(t *testing.T) {
	goals := SampleGoals()
	require.Len(t, goals, 4)
	assert.Equal(t, LearnGoalName, goals[LearnGoalIndex].Name)
	for _, g := range goals {
		assert.NotEmpty(t, g.Name)
		assert.NotEmpty(t, g.Color)
	}
}

func TestSampleTasks(t *testing.T) {
	tasks := SampleTasks("abc")
	require.Len(t, tasks, 4)
	for _, task := range tasks {
		assert.Equal(t, "abc", task.GoalID)
	}
	assert.Equal(t, "AI based agents", tasks[0].Name)
	assert.Equal(t, "Basics", tasks[3].Name)
}

func TestSampleEvents_UseLocalDate(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.Local)
	events := SampleEvents(now)
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, "2024-06-01", e.Date)
		assert.NotEmpty(t, e.StartTime)
		assert.NotEmpty(t, e.EndTime)
	}
}

func TestDocuments(t *testing.T) {
	docs := Documents(SampleGoals())
	require.Len(t, docs, 4)
	assert.Equal(t, store.Document{"name": "Be fit", "color": "bg-red-200"}, docs[0])

	created := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	doc := Event{Title: "Standup", CreatedAt: &created}.Document()
	assert.Equal(t, created, doc["createdAt"])
	assert.NotContains(t, doc, "updatedAt")
	assert.NotContains(t, doc, store.IDField)
}

func TestWriteICS(t *testing.T) {
	stamp := time.Date(2024, time.June, 1, 7, 0, 0, 0, time.UTC)
	events := []store.Document{
		{
			store.IDField: "665b1f0e8f1b2c3d4e5f6a7b",
			"title":       "Standup",
			"category":    "work",
			"date":        "2024-06-01",
			"startTime":   "9:00",
			"endTime":     "9:15",
		},
		{
			store.IDField: "665b1f0e8f1b2c3d4e5f6a7c",
			"title":       "Holiday",
			"date":        "2024-06-02",
			"startTime":   "all day",
		},
		{
			store.IDField: "665b1f0e8f1b2c3d4e5f6a7d",
			"title":       "No date",
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteICS(&sb, events, stamp))
	out := sb.String()

	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:665b1f0e8f1b2c3d4e5f6a7b@calendar")
	assert.Contains(t, out, "SUMMARY:Standup")
	assert.Contains(t, out, "CATEGORIES:work")
	assert.Contains(t, out, "DTSTART:20240601T090000")
	assert.Contains(t, out, "DTEND:20240601T091500")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240602")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240603")
	assert.NotContains(t, out, "No date")
}

func TestWriteICS_Empty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteICS(&sb, nil, time.Now()))
	assert.Contains(t, sb.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, sb.String(), "PRODID:"+productID)
}

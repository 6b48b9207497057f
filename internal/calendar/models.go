// Package calendar defines the event, goal and task shapes and the fixed
// sample data used to seed an empty database.
package calendar

import (
	"time"

	"calendar-api/internal/store"
)

// DateLayout is the YYYY-MM-DD format events use for their date.
const DateLayout = "2006-01-02"

// Event is a calendar entry. Times are free-form strings such as "8:00".
type Event struct {
	ID        string     `json:"_id,omitempty"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Date      string     `json:"date"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Goal groups tasks; Color is a CSS class name.
type Goal struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Task belongs to a goal by GoalID. The reference is never checked.
type Task struct {
	ID     string `json:"_id,omitempty"`
	Name   string `json:"name"`
	GoalID string `json:"goalId"`
}

func (e Event) Document() store.Document {
	doc := store.Document{
		"title":     e.Title,
		"category":  e.Category,
		"date":      e.Date,
		"startTime": e.StartTime,
		"endTime":   e.EndTime,
	}
	if e.CreatedAt != nil {
		doc["createdAt"] = *e.CreatedAt
	}
	if e.UpdatedAt != nil {
		doc["updatedAt"] = *e.UpdatedAt
	}
	return doc
}

func (g Goal) Document() store.Document {
	return store.Document{"name": g.Name, "color": g.Color}
}

func (t Task) Document() store.Document {
	return store.Document{"name": t.Name, "goalId": t.GoalID}
}

// Documents converts typed values for insertion.
func Documents[T interface{ Document() store.Document }](items []T) []store.Document {
	docs := make([]store.Document, 0, len(items))
	for _, item := range items {
		docs = append(docs, item.Document())
	}
	return docs
}

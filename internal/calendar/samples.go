package calendar

import "time"

// LearnGoalName is the goal sample tasks are attached to.
const LearnGoalName = "LEARN"

// LearnGoalIndex is the position of the LEARN goal in SampleGoals. The reset
// path attaches tasks to whatever id was inserted at this position.
const LearnGoalIndex = 2

// SampleGoals returns the four goals inserted into an empty goals collection.
func SampleGoals() []Goal {
	return []Goal{
		{Name: "Be fit", Color: "bg-red-200"},
		{Name: "Academics", Color: "bg-blue-200"},
		{Name: LearnGoalName, Color: "bg-purple-200"},
		{Name: "Sports", Color: "bg-green-200"},
	}
}

// SampleTasks returns the four sample tasks, all pointing at goalID.
func SampleTasks(goalID string) []Task {
	names := []string{"AI based agents", "MLE", "DE related", "Basics"}
	tasks := make([]Task, 0, len(names))
	for _, n := range names {
		tasks = append(tasks, Task{Name: n, GoalID: goalID})
	}
	return tasks
}

// SampleEvents returns three events on the local calendar day of now.
func SampleEvents(now time.Time) []Event {
	day := now.Local().Format(DateLayout)
	return []Event{
		{Title: "Monday Wake-Up", Category: "exercise", Date: day, StartTime: "8:00", EndTime: "8:30"},
		{Title: "All-Team Kickoff", Category: "work", Date: day, StartTime: "9:00", EndTime: "10:00"},
		{Title: "Financial Update", Category: "work", Date: day, StartTime: "10:00", EndTime: "11:00"},
	}
}

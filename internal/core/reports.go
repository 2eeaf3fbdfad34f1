package core

// DailyReport is the server-computed aggregate for one identity and day.
type DailyReport struct {
	TasksCreated       int     `json:"tasksCreated"`
	TasksCompleted     int     `json:"tasksCompleted"`
	ProductivityRating float64 `json:"productivityRating"` // 0-5
	DaySpend           float64 `json:"daySpend"`
}

// MonthlyReport is the server-computed aggregate for one identity and month.
type MonthlyReport struct {
	Year                int     `json:"year"`
	Month               int     `json:"month"` // 1-12
	TotalSpend          float64 `json:"totalSpend"`
	AverageSpend        float64 `json:"averageSpend"`
	TotalCompletedTasks int     `json:"totalCompletedTasks"`
	AverageProductivity float64 `json:"averageProductivity"`
	TotalTasksCreated   int     `json:"totalTasksCreated"`
	DaysWithData        int     `json:"daysWithData"`
}

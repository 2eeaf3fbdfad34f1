package render

import "daybook/internal/core"

// NoActivity is shown when the local activity log is empty.
const NoActivity = "No activity recorded yet"

type (
	ActivityEntry struct {
		At       string
		Kind     string
		Identity string
		EntityID string
		Date     string
	}

	ActivityLog struct {
		Items       []ActivityEntry
		Placeholder string
	}
)

// Activities builds the activity log, keeping the given order.
func Activities(list []core.Activity) ActivityLog {
	if len(list) == 0 {
		return ActivityLog{Placeholder: NoActivity}
	}
	v := ActivityLog{Items: make([]ActivityEntry, 0, len(list))}
	for _, a := range list {
		v.Items = append(v.Items, ActivityEntry{
			At:       a.At.Local().Format("2006-01-02 15:04:05"),
			Kind:     string(a.Kind),
			Identity: a.Identity.String(),
			EntityID: a.EntityID,
			Date:     a.Date.String(),
		})
	}
	return v
}

// Line renders one entry for a streaming feed.
func (e ActivityEntry) Line() string {
	s := e.At + "  " + e.Kind + "  " + e.Identity
	if e.EntityID != "" {
		s += "  " + e.EntityID
	}
	if e.Date != "" {
		s += "  (" + e.Date + ")"
	}
	return s
}

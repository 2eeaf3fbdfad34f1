package storage

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/core"
)

// activityTimeLayout is fixed width so the stored text sorts chronologically.
const activityTimeLayout = "2006-01-02T15:04:05.000000000Z"

// RecordActivity appends one activity to the local log.
func (r *SQLiteRepository) RecordActivity(ctx context.Context, a core.Activity) error {
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity (kind, identity, entity_id, day, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(a.Kind), a.Identity.String(), a.EntityID, a.Date.String(), at.UTC().Format(activityTimeLayout))
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// RecentActivity returns up to limit activities, newest first.
func (r *SQLiteRepository) RecentActivity(ctx context.Context, limit int) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, identity, entity_id, day, occurred_at
		FROM activity
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []core.Activity
	for rows.Next() {
		var kind, identity, entityID, day, at string
		if err := rows.Scan(&kind, &identity, &entityID, &day, &at); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a := core.Activity{
			Kind:     core.ActivityKind(kind),
			Identity: core.Identity(identity),
			EntityID: entityID,
		}
		if day != "" {
			if a.Date, err = core.ParseDate(day); err != nil {
				return nil, fmt.Errorf("scan activity: %w", err)
			}
		}
		if a.At, err = time.Parse(activityTimeLayout, at); err != nil {
			return nil, fmt.Errorf("scan activity time: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

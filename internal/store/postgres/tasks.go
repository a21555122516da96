package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/groblegark/okrd/internal/model"
)

// taskColumns is the column list used for SELECT statements on the tasks table.
const taskColumns = `id, kr_id, title, status, priority, due_at, completed_at,
	created_at, created_by, updated_at`

func queryCreateTask(ctx context.Context, db executor, t *model.Task) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, kr_id, title, status, priority, due_at, completed_at,
			created_at, created_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID,
		nullString(t.KrID),
		t.Title,
		string(t.Status),
		t.Priority,
		nullTimePtr(t.DueAt),
		nullTimePtr(t.CompletedAt),
		t.CreatedAt,
		nullString(t.CreatedBy),
		t.UpdatedAt,
	)
	return err
}

func queryGetTask(ctx context.Context, db executor, id string) (*model.Task, error) {
	row := db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func queryListTasks(ctx context.Context, db executor, filter model.TaskFilter) ([]*model.Task, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.KrID != "" {
		whereClauses = append(whereClauses, "kr_id = "+nextArg())
		args = append(args, filter.KrID)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Priority != nil {
		whereClauses = append(whereClauses, "priority = "+nextArg())
		args = append(args, *filter.Priority)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + taskColumns + " FROM tasks" + whereSQL + " ORDER BY " + parseTaskSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	var total int
	for rows.Next() {
		t, tc, err := scanTaskWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan tasks: %w", err)
		}
		total = tc
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan tasks: %w", err)
	}

	return tasks, total, nil
}

func queryListTasksByKr(ctx context.Context, db executor, krID string) ([]*model.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE kr_id = $1
		ORDER BY created_at ASC`,
		krID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func queryUpdateTask(ctx context.Context, db executor, t *model.Task) error {
	return db.QueryRowContext(ctx, `
		UPDATE tasks SET
			kr_id = $2,
			title = $3,
			status = $4,
			priority = $5,
			due_at = $6,
			completed_at = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		t.ID,
		nullString(t.KrID),
		t.Title,
		string(t.Status),
		t.Priority,
		nullTimePtr(t.DueAt),
		nullTimePtr(t.CompletedAt),
	).Scan(&t.UpdatedAt)
}

func queryDeleteTask(ctx context.Context, db executor, id string) error {
	return execExpectingRow(ctx, db, `DELETE FROM tasks WHERE id = $1`, id)
}

func parseTaskSortClause(sort string) string {
	if sort == "" {
		return "created_at DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"priority": true, "created_at": true, "updated_at": true,
		"title": true, "status": true, "due_at": true,
	}
	if !allowed[col] {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

func querySaveLayout(ctx context.Context, db executor, l *model.Layout) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO layouts (plan_id, view, positions)
		VALUES ($1, $2, $3)
		ON CONFLICT (plan_id, view) DO UPDATE SET positions = $3, updated_at = NOW()
		RETURNING created_at, updated_at`,
		l.PlanID, l.View, jsonbBytes(l.Positions),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func queryGetLayout(ctx context.Context, db executor, planID, view string) (*model.Layout, error) {
	row := db.QueryRowContext(ctx, `
		SELECT plan_id, view, positions, created_at, updated_at
		FROM layouts WHERE plan_id = $1 AND view = $2`,
		planID, view,
	)
	return scanLayout(row)
}

func queryDeleteLayout(ctx context.Context, db executor, planID, view string) error {
	return execExpectingRow(ctx, db,
		`DELETE FROM layouts WHERE plan_id = $1 AND view = $2`, planID, view)
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, entity_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, e.EntityID, nullString(e.Actor), jsonbBytes(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, entityID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, entity_id, actor, payload, created_at
		FROM events
		WHERE entity_id = $1
		ORDER BY created_at ASC`,
		entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func querySetConfig(ctx context.Context, db executor, c *model.Config) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO configs (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
		RETURNING created_at, updated_at`,
		c.Key, []byte(c.Value),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func queryGetConfig(ctx context.Context, db executor, key string) (*model.Config, error) {
	row := db.QueryRowContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs WHERE key = $1`, key)
	return scanConfig(row)
}

func queryListConfigs(ctx context.Context, db executor, namespace string) ([]*model.Config, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs WHERE key LIKE $1 || ':%'
		ORDER BY key`, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func queryListAllConfigs(ctx context.Context, db executor) ([]*model.Config, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func queryDeleteConfig(ctx context.Context, db executor, key string) error {
	return execExpectingRow(ctx, db, `DELETE FROM configs WHERE key = $1`, key)
}

// queryGetStats computes entity counts in a single round trip per table.
func queryGetStats(ctx context.Context, db executor) (*model.Stats, error) {
	stats := &model.Stats{}
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM plans),
			(SELECT COUNT(*) FROM objectives),
			(SELECT COUNT(*) FROM krs),
			(SELECT COUNT(*) FROM check_ins),
			COALESCE(SUM(CASE WHEN status = 'not_started' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0)
		FROM tasks`).Scan(
		&stats.TotalPlans,
		&stats.TotalObjectives,
		&stats.TotalKeyResults,
		&stats.TotalCheckIns,
		&stats.TasksNotStarted,
		&stats.TasksInProgress,
		&stats.TasksCompleted,
		&stats.TasksCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

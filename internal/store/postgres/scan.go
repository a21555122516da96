package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/groblegark/okrd/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanPlan scans a single row into a model.Plan.
// The row must contain columns in the order defined by planColumns.
func scanPlan(row scannable) (*model.Plan, error) {
	var p model.Plan
	var createdBy sql.NullString

	err := row.Scan(
		&p.ID,
		&p.Year,
		&p.Name,
		&p.CreatedAt,
		&createdBy,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = createdBy.String
	return &p, nil
}

func scanPlans(rows *sql.Rows) ([]*model.Plan, error) {
	var plans []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// scanObjective scans a single row into a model.Objective.
func scanObjective(row scannable) (*model.Objective, error) {
	var o model.Objective
	var (
		code      sql.NullString
		createdBy sql.NullString
	)
	err := row.Scan(
		&o.ID,
		&o.PlanID,
		&code,
		&o.Name,
		&o.CreatedAt,
		&createdBy,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Code = code.String
	o.CreatedBy = createdBy.String
	return &o, nil
}

func scanObjectives(rows *sql.Rows) ([]*model.Objective, error) {
	var objs []*model.Objective
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return objs, nil
}

// scanKeyResult scans a single row into a model.KeyResult.
// The row must contain columns in the order defined by krColumns.
func scanKeyResult(row scannable) (*model.KeyResult, error) {
	var kr model.KeyResult
	var (
		unit      sql.NullString
		createdBy sql.NullString
	)
	err := row.Scan(
		&kr.ID,
		&kr.ObjectiveID,
		&kr.Title,
		&kr.KrType,
		&kr.StartValue,
		&kr.TargetValue,
		&unit,
		&kr.Direction,
		&kr.Year,
		&kr.CreatedAt,
		&createdBy,
		&kr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	kr.Unit = unit.String
	kr.CreatedBy = createdBy.String
	return &kr, nil
}

// scanKeyResultWithTotal scans a row that has a leading total_count column
// followed by the standard KR columns. Used by queryListKeyResults with
// COUNT(*) OVER().
func scanKeyResultWithTotal(row scannable) (*model.KeyResult, int, error) {
	var total int
	var kr model.KeyResult
	var (
		unit      sql.NullString
		createdBy sql.NullString
	)
	err := row.Scan(
		&total,
		&kr.ID,
		&kr.ObjectiveID,
		&kr.Title,
		&kr.KrType,
		&kr.StartValue,
		&kr.TargetValue,
		&unit,
		&kr.Direction,
		&kr.Year,
		&kr.CreatedAt,
		&createdBy,
		&kr.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}
	kr.Unit = unit.String
	kr.CreatedBy = createdBy.String
	return &kr, total, nil
}

// scanCheckIn scans a single row into a model.CheckIn.
func scanCheckIn(row scannable) (*model.CheckIn, error) {
	var c model.CheckIn
	var (
		note       sql.NullString
		recordedBy sql.NullString
	)
	err := row.Scan(
		&c.ID,
		&c.KrID,
		&c.Value,
		&c.PreviousValue,
		&note,
		&c.RecordedAt,
		&recordedBy,
	)
	if err != nil {
		return nil, err
	}
	c.Note = note.String
	c.RecordedBy = recordedBy.String
	return &c, nil
}

func scanCheckIns(rows *sql.Rows) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return checkIns, nil
}

// scanQuarterTarget scans a single row into a model.QuarterTarget.
func scanQuarterTarget(row scannable) (*model.QuarterTarget, error) {
	var q model.QuarterTarget
	err := row.Scan(&q.ID, &q.KrID, &q.Quarter, &q.TargetValue)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuarterTargets(rows *sql.Rows) ([]*model.QuarterTarget, error) {
	var quarters []*model.QuarterTarget
	for rows.Next() {
		q, err := scanQuarterTarget(rows)
		if err != nil {
			return nil, err
		}
		quarters = append(quarters, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quarters, nil
}

// scanTask scans a single row into a model.Task.
// The row must contain columns in the order defined by taskColumns.
func scanTask(row scannable) (*model.Task, error) {
	var t model.Task
	var (
		krID        sql.NullString
		dueAt       sql.NullTime
		completedAt sql.NullTime
		createdBy   sql.NullString
	)
	err := row.Scan(
		&t.ID,
		&krID,
		&t.Title,
		&t.Status,
		&t.Priority,
		&dueAt,
		&completedAt,
		&t.CreatedAt,
		&createdBy,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.KrID = krID.String
	t.CreatedBy = createdBy.String
	if dueAt.Valid {
		v := dueAt.Time
		t.DueAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}
	return &t, nil
}

// scanTaskWithTotal scans a row with a leading total_count column followed
// by the standard task columns.
func scanTaskWithTotal(row scannable) (*model.Task, int, error) {
	var total int
	var t model.Task
	var (
		krID        sql.NullString
		dueAt       sql.NullTime
		completedAt sql.NullTime
		createdBy   sql.NullString
	)
	err := row.Scan(
		&total,
		&t.ID,
		&krID,
		&t.Title,
		&t.Status,
		&t.Priority,
		&dueAt,
		&completedAt,
		&t.CreatedAt,
		&createdBy,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}
	t.KrID = krID.String
	t.CreatedBy = createdBy.String
	if dueAt.Valid {
		v := dueAt.Time
		t.DueAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}
	return &t, total, nil
}

func scanTasks(rows *sql.Rows) ([]*model.Task, error) {
	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// scanLayout scans a single row into a model.Layout.
func scanLayout(row scannable) (*model.Layout, error) {
	var l model.Layout
	var positions []byte
	err := row.Scan(&l.PlanID, &l.View, &positions, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(positions) > 0 {
		l.Positions = json.RawMessage(positions)
	}
	return &l, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.EntityID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// scanConfig scans a single row into a model.Config.
func scanConfig(row scannable) (*model.Config, error) {
	var c model.Config
	var value []byte
	err := row.Scan(&c.Key, &value, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Value = json.RawMessage(value)
	return &c, nil
}

func scanConfigs(rows *sql.Rows) ([]*model.Config, error) {
	var configs []*model.Config
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/groblegark/okrd/internal/model"
)

// Column lists used for SELECT statements.
const (
	planColumns = `id, year, name, created_at, created_by, updated_at`

	objectiveColumns = `id, plan_id, code, name, created_at, created_by, updated_at`

	krColumns = `id, objective_id, title, kr_type, start_value, target_value,
	unit, direction, year, created_at, created_by, updated_at`

	checkInColumns = `id, kr_id, value, previous_value, note, recorded_at, recorded_by`
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreatePlan(ctx context.Context, db executor, p *model.Plan) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO plans (id, year, name, created_at, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID,
		p.Year,
		p.Name,
		p.CreatedAt,
		nullString(p.CreatedBy),
		p.UpdatedAt,
	)
	return err
}

// queryGetPlan loads a plan with its full objective/KR tree, including each
// KR's check-ins, quarterly targets, and tasks.
func queryGetPlan(ctx context.Context, db executor, id string) (*model.Plan, error) {
	row := db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
	p, err := scanPlan(row)
	if err != nil {
		return nil, err
	}

	objs, err := queryListObjectives(ctx, db, id)
	if err != nil {
		return nil, err
	}
	for _, o := range objs {
		krs, err := queryListKRsByObjective(ctx, db, o.ID)
		if err != nil {
			return nil, err
		}
		for _, kr := range krs {
			if err := attachKrRelations(ctx, db, kr); err != nil {
				return nil, err
			}
		}
		o.KeyResults = krs
	}
	p.Objectives = objs
	return p, nil
}

func queryListPlans(ctx context.Context, db executor, year int) ([]*model.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	var args []any
	if year > 0 {
		query += ` WHERE year = $1`
		args = append(args, year)
	}
	query += ` ORDER BY year DESC, created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

func queryUpdatePlan(ctx context.Context, db executor, p *model.Plan) error {
	return db.QueryRowContext(ctx, `
		UPDATE plans SET year = $2, name = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Year, p.Name,
	).Scan(&p.UpdatedAt)
}

func queryDeletePlan(ctx context.Context, db executor, id string) error {
	return execExpectingRow(ctx, db, `DELETE FROM plans WHERE id = $1`, id)
}

func queryCreateObjective(ctx context.Context, db executor, o *model.Objective) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO objectives (id, plan_id, code, name, created_at, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID,
		o.PlanID,
		nullString(o.Code),
		o.Name,
		o.CreatedAt,
		nullString(o.CreatedBy),
		o.UpdatedAt,
	)
	return err
}

func queryGetObjective(ctx context.Context, db executor, id string) (*model.Objective, error) {
	row := db.QueryRowContext(ctx, `SELECT `+objectiveColumns+` FROM objectives WHERE id = $1`, id)
	o, err := scanObjective(row)
	if err != nil {
		return nil, err
	}

	krs, err := queryListKRsByObjective(ctx, db, id)
	if err != nil {
		return nil, err
	}
	o.KeyResults = krs
	return o, nil
}

func queryListObjectives(ctx context.Context, db executor, planID string) ([]*model.Objective, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+objectiveColumns+`
		FROM objectives
		WHERE plan_id = $1
		ORDER BY code NULLS LAST, created_at ASC`,
		planID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanObjectives(rows)
}

func queryUpdateObjective(ctx context.Context, db executor, o *model.Objective) error {
	return db.QueryRowContext(ctx, `
		UPDATE objectives SET code = $2, name = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		o.ID, nullString(o.Code), o.Name,
	).Scan(&o.UpdatedAt)
}

func queryDeleteObjective(ctx context.Context, db executor, id string) error {
	return execExpectingRow(ctx, db, `DELETE FROM objectives WHERE id = $1`, id)
}

func queryCreateKeyResult(ctx context.Context, db executor, kr *model.KeyResult) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO krs (
			id, objective_id, title, kr_type, start_value, target_value,
			unit, direction, year, created_at, created_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		kr.ID,
		kr.ObjectiveID,
		kr.Title,
		string(kr.KrType),
		kr.StartValue,
		kr.TargetValue,
		nullString(kr.Unit),
		string(kr.Direction),
		kr.Year,
		kr.CreatedAt,
		nullString(kr.CreatedBy),
		kr.UpdatedAt,
	)
	return err
}

func queryGetKeyResult(ctx context.Context, db executor, id string) (*model.KeyResult, error) {
	row := db.QueryRowContext(ctx, `SELECT `+krColumns+` FROM krs WHERE id = $1`, id)
	kr, err := scanKeyResult(row)
	if err != nil {
		return nil, err
	}
	if err := attachKrRelations(ctx, db, kr); err != nil {
		return nil, err
	}
	return kr, nil
}

// attachKrRelations loads a KR's check-ins, quarterly targets, and tasks.
func attachKrRelations(ctx context.Context, db executor, kr *model.KeyResult) error {
	checkIns, err := queryGetCheckIns(ctx, db, kr.ID)
	if err != nil {
		return err
	}
	kr.CheckIns = checkIns

	quarters, err := queryGetQuarterTargets(ctx, db, kr.ID)
	if err != nil {
		return err
	}
	kr.Quarters = quarters

	tasks, err := queryListTasksByKr(ctx, db, kr.ID)
	if err != nil {
		return err
	}
	kr.Tasks = tasks
	return nil
}

func queryListKRsByObjective(ctx context.Context, db executor, objectiveID string) ([]*model.KeyResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+krColumns+`
		FROM krs
		WHERE objective_id = $1
		ORDER BY created_at ASC`,
		objectiveID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var krs []*model.KeyResult
	for rows.Next() {
		kr, err := scanKeyResult(rows)
		if err != nil {
			return nil, err
		}
		krs = append(krs, kr)
	}
	return krs, rows.Err()
}

func queryListKeyResults(ctx context.Context, db executor, filter model.KeyResultFilter) ([]*model.KeyResult, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.ObjectiveID != "" {
		whereClauses = append(whereClauses, "objective_id = "+nextArg())
		args = append(args, filter.ObjectiveID)
	}

	if filter.PlanID != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("objective_id IN (SELECT id FROM objectives WHERE plan_id = %s)", p))
		args = append(args, filter.PlanID)
	}

	if len(filter.KrType) > 0 {
		placeholders := make([]string, len(filter.KrType))
		for i, t := range filter.KrType {
			placeholders[i] = nextArg()
			args = append(args, string(t))
		}
		whereClauses = append(whereClauses, "kr_type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Direction) > 0 {
		placeholders := make([]string, len(filter.Direction))
		for i, d := range filter.Direction {
			placeholders[i] = nextArg()
			args = append(args, string(d))
		}
		whereClauses = append(whereClauses, "direction IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Year != nil {
		whereClauses = append(whereClauses, "year = "+nextArg())
		args = append(args, *filter.Year)
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("title ILIKE '%%' || %s || '%%'", p))
		args = append(args, filter.Search)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + krColumns + " FROM krs" + whereSQL + " ORDER BY " + parseSortClause(filter.Sort)

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
		return nil, 0, fmt.Errorf("list krs: %w", err)
	}
	defer rows.Close()

	var krs []*model.KeyResult
	var total int
	for rows.Next() {
		kr, t, err := scanKeyResultWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan krs: %w", err)
		}
		total = t
		krs = append(krs, kr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan krs: %w", err)
	}

	return krs, total, nil
}

func queryUpdateKeyResult(ctx context.Context, db executor, kr *model.KeyResult) error {
	return db.QueryRowContext(ctx, `
		UPDATE krs SET
			title = $2,
			kr_type = $3,
			start_value = $4,
			target_value = $5,
			unit = $6,
			direction = $7,
			year = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		kr.ID,
		kr.Title,
		string(kr.KrType),
		kr.StartValue,
		kr.TargetValue,
		nullString(kr.Unit),
		string(kr.Direction),
		kr.Year,
	).Scan(&kr.UpdatedAt)
}

func queryDeleteKeyResult(ctx context.Context, db executor, id string) error {
	return execExpectingRow(ctx, db, `DELETE FROM krs WHERE id = $1`, id)
}

// queryAddCheckIn inserts a check-in. Check-ins are append-only; there is no
// corresponding update or delete.
func queryAddCheckIn(ctx context.Context, db executor, c *model.CheckIn) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO check_ins (id, kr_id, value, previous_value, note, recorded_at, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID,
		c.KrID,
		c.Value,
		c.PreviousValue,
		nullString(c.Note),
		c.RecordedAt,
		nullString(c.RecordedBy),
	)
	return err
}

func queryGetCheckIns(ctx context.Context, db executor, krID string) ([]*model.CheckIn, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+checkInColumns+`
		FROM check_ins
		WHERE kr_id = $1
		ORDER BY recorded_at ASC`,
		krID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCheckIns(rows)
}

func querySetQuarterTarget(ctx context.Context, db executor, q *model.QuarterTarget) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO quarter_targets (id, kr_id, quarter, target_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kr_id, quarter) DO UPDATE SET target_value = $4`,
		q.ID, q.KrID, q.Quarter, q.TargetValue,
	)
	return err
}

func queryGetQuarterTargets(ctx context.Context, db executor, krID string) ([]*model.QuarterTarget, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, kr_id, quarter, target_value
		FROM quarter_targets
		WHERE kr_id = $1
		ORDER BY quarter ASC`,
		krID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuarterTargets(rows)
}

func queryDeleteQuarterTarget(ctx context.Context, db executor, krID string, quarter int) error {
	return execExpectingRow(ctx, db,
		`DELETE FROM quarter_targets WHERE kr_id = $1 AND quarter = $2`, krID, quarter)
}

// execExpectingRow runs a statement and returns sql.ErrNoRows when no row
// was affected, so deletes of missing IDs surface as not-found.
func execExpectingRow(ctx context.Context, db executor, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func parseSortClause(sort string) string {
	if sort == "" {
		return "created_at DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"created_at": true, "updated_at": true, "title": true,
		"year": true, "kr_type": true, "target_value": true,
	}
	if !allowed[col] {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreatePlan(ctx context.Context, plan *model.Plan) error {
	return queryCreatePlan(ctx, s.db, plan)
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	return queryGetPlan(ctx, s.db, id)
}

func (s *PostgresStore) ListPlans(ctx context.Context, year int) ([]*model.Plan, error) {
	return queryListPlans(ctx, s.db, year)
}

func (s *PostgresStore) UpdatePlan(ctx context.Context, plan *model.Plan) error {
	return queryUpdatePlan(ctx, s.db, plan)
}

func (s *PostgresStore) DeletePlan(ctx context.Context, id string) error {
	return queryDeletePlan(ctx, s.db, id)
}

func (s *PostgresStore) CreateObjective(ctx context.Context, obj *model.Objective) error {
	return queryCreateObjective(ctx, s.db, obj)
}

func (s *PostgresStore) GetObjective(ctx context.Context, id string) (*model.Objective, error) {
	return queryGetObjective(ctx, s.db, id)
}

func (s *PostgresStore) ListObjectives(ctx context.Context, planID string) ([]*model.Objective, error) {
	return queryListObjectives(ctx, s.db, planID)
}

func (s *PostgresStore) UpdateObjective(ctx context.Context, obj *model.Objective) error {
	return queryUpdateObjective(ctx, s.db, obj)
}

func (s *PostgresStore) DeleteObjective(ctx context.Context, id string) error {
	return queryDeleteObjective(ctx, s.db, id)
}

func (s *PostgresStore) CreateKeyResult(ctx context.Context, kr *model.KeyResult) error {
	return queryCreateKeyResult(ctx, s.db, kr)
}

func (s *PostgresStore) GetKeyResult(ctx context.Context, id string) (*model.KeyResult, error) {
	return queryGetKeyResult(ctx, s.db, id)
}

func (s *PostgresStore) ListKeyResults(ctx context.Context, filter model.KeyResultFilter) ([]*model.KeyResult, int, error) {
	return queryListKeyResults(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateKeyResult(ctx context.Context, kr *model.KeyResult) error {
	return queryUpdateKeyResult(ctx, s.db, kr)
}

func (s *PostgresStore) DeleteKeyResult(ctx context.Context, id string) error {
	return queryDeleteKeyResult(ctx, s.db, id)
}

func (s *PostgresStore) AddCheckIn(ctx context.Context, checkIn *model.CheckIn) error {
	return queryAddCheckIn(ctx, s.db, checkIn)
}

func (s *PostgresStore) GetCheckIns(ctx context.Context, krID string) ([]*model.CheckIn, error) {
	return queryGetCheckIns(ctx, s.db, krID)
}

func (s *PostgresStore) SetQuarterTarget(ctx context.Context, qt *model.QuarterTarget) error {
	return querySetQuarterTarget(ctx, s.db, qt)
}

func (s *PostgresStore) GetQuarterTargets(ctx context.Context, krID string) ([]*model.QuarterTarget, error) {
	return queryGetQuarterTargets(ctx, s.db, krID)
}

func (s *PostgresStore) DeleteQuarterTarget(ctx context.Context, krID string, quarter int) error {
	return queryDeleteQuarterTarget(ctx, s.db, krID, quarter)
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *model.Task) error {
	return queryCreateTask(ctx, s.db, task)
}

func (s *PostgresStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return queryGetTask(ctx, s.db, id)
}

func (s *PostgresStore) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, int, error) {
	return queryListTasks(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateTask(ctx context.Context, task *model.Task) error {
	return queryUpdateTask(ctx, s.db, task)
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id string) error {
	return queryDeleteTask(ctx, s.db, id)
}

func (s *PostgresStore) SaveLayout(ctx context.Context, layout *model.Layout) error {
	return querySaveLayout(ctx, s.db, layout)
}

func (s *PostgresStore) GetLayout(ctx context.Context, planID, view string) (*model.Layout, error) {
	return queryGetLayout(ctx, s.db, planID, view)
}

func (s *PostgresStore) DeleteLayout(ctx context.Context, planID, view string) error {
	return queryDeleteLayout(ctx, s.db, planID, view)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.db, entityID)
}

func (s *PostgresStore) SetConfig(ctx context.Context, config *model.Config) error {
	return querySetConfig(ctx, s.db, config)
}

func (s *PostgresStore) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	return queryGetConfig(ctx, s.db, key)
}

func (s *PostgresStore) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	return queryListConfigs(ctx, s.db, namespace)
}

func (s *PostgresStore) ListAllConfigs(ctx context.Context) ([]*model.Config, error) {
	return queryListAllConfigs(ctx, s.db)
}

func (s *PostgresStore) DeleteConfig(ctx context.Context, key string) error {
	return queryDeleteConfig(ctx, s.db, key)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*model.Stats, error) {
	return queryGetStats(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreatePlan(ctx context.Context, plan *model.Plan) error {
	return queryCreatePlan(ctx, s.tx, plan)
}

func (s *txStore) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	return queryGetPlan(ctx, s.tx, id)
}

func (s *txStore) ListPlans(ctx context.Context, year int) ([]*model.Plan, error) {
	return queryListPlans(ctx, s.tx, year)
}

func (s *txStore) UpdatePlan(ctx context.Context, plan *model.Plan) error {
	return queryUpdatePlan(ctx, s.tx, plan)
}

func (s *txStore) DeletePlan(ctx context.Context, id string) error {
	return queryDeletePlan(ctx, s.tx, id)
}

func (s *txStore) CreateObjective(ctx context.Context, obj *model.Objective) error {
	return queryCreateObjective(ctx, s.tx, obj)
}

func (s *txStore) GetObjective(ctx context.Context, id string) (*model.Objective, error) {
	return queryGetObjective(ctx, s.tx, id)
}

func (s *txStore) ListObjectives(ctx context.Context, planID string) ([]*model.Objective, error) {
	return queryListObjectives(ctx, s.tx, planID)
}

func (s *txStore) UpdateObjective(ctx context.Context, obj *model.Objective) error {
	return queryUpdateObjective(ctx, s.tx, obj)
}

func (s *txStore) DeleteObjective(ctx context.Context, id string) error {
	return queryDeleteObjective(ctx, s.tx, id)
}

func (s *txStore) CreateKeyResult(ctx context.Context, kr *model.KeyResult) error {
	return queryCreateKeyResult(ctx, s.tx, kr)
}

func (s *txStore) GetKeyResult(ctx context.Context, id string) (*model.KeyResult, error) {
	return queryGetKeyResult(ctx, s.tx, id)
}

func (s *txStore) ListKeyResults(ctx context.Context, filter model.KeyResultFilter) ([]*model.KeyResult, int, error) {
	return queryListKeyResults(ctx, s.tx, filter)
}

func (s *txStore) UpdateKeyResult(ctx context.Context, kr *model.KeyResult) error {
	return queryUpdateKeyResult(ctx, s.tx, kr)
}

func (s *txStore) DeleteKeyResult(ctx context.Context, id string) error {
	return queryDeleteKeyResult(ctx, s.tx, id)
}

func (s *txStore) AddCheckIn(ctx context.Context, checkIn *model.CheckIn) error {
	return queryAddCheckIn(ctx, s.tx, checkIn)
}

func (s *txStore) GetCheckIns(ctx context.Context, krID string) ([]*model.CheckIn, error) {
	return queryGetCheckIns(ctx, s.tx, krID)
}

func (s *txStore) SetQuarterTarget(ctx context.Context, qt *model.QuarterTarget) error {
	return querySetQuarterTarget(ctx, s.tx, qt)
}

func (s *txStore) GetQuarterTargets(ctx context.Context, krID string) ([]*model.QuarterTarget, error) {
	return queryGetQuarterTargets(ctx, s.tx, krID)
}

func (s *txStore) DeleteQuarterTarget(ctx context.Context, krID string, quarter int) error {
	return queryDeleteQuarterTarget(ctx, s.tx, krID, quarter)
}

func (s *txStore) CreateTask(ctx context.Context, task *model.Task) error {
	return queryCreateTask(ctx, s.tx, task)
}

func (s *txStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return queryGetTask(ctx, s.tx, id)
}

func (s *txStore) ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.Task, int, error) {
	return queryListTasks(ctx, s.tx, filter)
}

func (s *txStore) UpdateTask(ctx context.Context, task *model.Task) error {
	return queryUpdateTask(ctx, s.tx, task)
}

func (s *txStore) DeleteTask(ctx context.Context, id string) error {
	return queryDeleteTask(ctx, s.tx, id)
}

func (s *txStore) SaveLayout(ctx context.Context, layout *model.Layout) error {
	return querySaveLayout(ctx, s.tx, layout)
}

func (s *txStore) GetLayout(ctx context.Context, planID, view string) (*model.Layout, error) {
	return queryGetLayout(ctx, s.tx, planID, view)
}

func (s *txStore) DeleteLayout(ctx context.Context, planID, view string) error {
	return queryDeleteLayout(ctx, s.tx, planID, view)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.tx, entityID)
}

func (s *txStore) SetConfig(ctx context.Context, config *model.Config) error {
	return querySetConfig(ctx, s.tx, config)
}

func (s *txStore) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	return queryGetConfig(ctx, s.tx, key)
}

func (s *txStore) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	return queryListConfigs(ctx, s.tx, namespace)
}

func (s *txStore) ListAllConfigs(ctx context.Context) ([]*model.Config, error) {
	return queryListAllConfigs(ctx, s.tx)
}

func (s *txStore) DeleteConfig(ctx context.Context, key string) error {
	return queryDeleteConfig(ctx, s.tx, key)
}

func (s *txStore) GetStats(ctx context.Context) (*model.Stats, error) {
	return queryGetStats(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}

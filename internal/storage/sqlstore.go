package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/mattes/migrate"
	_ "github.com/mattes/migrate/database/mysql"
	_ "github.com/mattes/migrate/source/file"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/DRNaser/shift-optimizer-sub005/internal/model"
	"github.com/DRNaser/shift-optimizer-sub005/internal/version"
)

// SQLStore is the production substrate: MySQL via database/sql, with
// schema migrations applied through mattes/migrate before the store is
// handed to callers.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore connects to dsn and, if migrationsPath is non-empty, runs
// any pending migrations from that directory before returning. Passing
// an empty migrationsPath is for environments where migrations are
// applied out-of-band (e.g. by a separate deploy step).
func OpenSQLStore(ctx context.Context, dsn, migrationsPath string) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Annotate(err, "open mysql connection").Err()
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Annotate(err, "ping mysql").Err()
	}

	if migrationsPath != "" {
		m, err := migrate.New("file://"+migrationsPath, dsn)
		if err != nil {
			return nil, errors.Annotate(err, "initialize migrate").Err()
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			return nil, errors.Annotate(err, "apply migrations").Err()
		}
	}

	logging.Infof(ctx, "storage: sql store ready")
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) CreateForecastVersion(ctx context.Context, fv model.ForecastVersion) (string, error) {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM forecast_versions WHERE input_hash = ?`, fv.InputHash).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return "", errors.Annotate(err, "check forecast idempotency").Err()
	}

	if fv.ID == "" {
		fv.ID = uuid.NewString()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO forecast_versions (id, week_anchor_date, source, input_hash, parser_config_hash, created_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fv.ID, fv.WeekAnchorDate, fv.Source, fv.InputHash, fv.ParserConfigHash, fv.CreatedAt, fv.Status)
	if err != nil {
		return "", errors.Annotate(err, "insert forecast_version").Err()
	}
	return fv.ID, nil
}

func (s *SQLStore) CreateTourInstances(ctx context.Context, forecastID string, instances []model.TourInstance) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Annotate(err, "begin tour_instances tx").Err()
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tour_instances
		 (id, forecast_version_id, template_id, instance_no, day, start_datetime, end_datetime,
		  crosses_midnight, depot, skill, fingerprint, split_segment, split_group_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Annotate(err, "prepare tour_instances insert").Err()
	}
	defer stmt.Close()

	for _, inst := range instances {
		if _, err := stmt.ExecContext(ctx, inst.ID, forecastID, inst.TemplateID, inst.InstanceNo, int(inst.Day),
			inst.StartDatetime, inst.EndDatetime, inst.CrossesMidnight, inst.Depot, inst.Skill, inst.Fingerprint,
			inst.SplitSegment, inst.SplitGroupKey); err != nil {
			return errors.Annotate(err, "insert tour_instance %s", inst.ID).Err()
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Annotate(err, "commit tour_instances tx").Err()
	}
	return nil
}

func (s *SQLStore) CreatePlanVersion(ctx context.Context, pv model.PlanVersion) (string, error) {
	if pv.ID == "" {
		pv.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_versions (id, forecast_version_id, seed, solver_config_hash, status, output_hash, created_at, locked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pv.ID, pv.ForecastVersionID, pv.Seed, pv.SolverConfigHash, pv.Status, pv.OutputHash, pv.CreatedAt, pv.LockedAt)
	if err != nil {
		return "", errors.Annotate(err, "insert plan_version").Err()
	}
	return pv.ID, nil
}

func (s *SQLStore) AssignmentsBatchInsert(ctx context.Context, planID string, rows []model.Assignment) error {
	plan, err := s.PlanByID(ctx, planID)
	if err != nil {
		return err
	}
	if err := version.CheckMutationAllowed(plan.Status); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Annotate(err, "begin assignments tx").Err()
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (plan_version_id, tour_instance_id, driver_label, block_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Annotate(err, "prepare assignments insert").Err()
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, planID, row.TourInstanceID, row.DriverLabel, row.BlockID); err != nil {
			return errors.Annotate(err, "insert assignment for instance %s", row.TourInstanceID).Err()
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Annotate(err, "commit assignments tx").Err()
	}
	return nil
}

func (s *SQLStore) UpdatePlanStatus(ctx context.Context, planID string, newStatus model.PlanStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Annotate(err, "begin plan status tx").Err()
	}
	defer tx.Rollback()

	var current model.PlanStatus
	if err := tx.QueryRowContext(ctx, `SELECT status FROM plan_versions WHERE id = ? FOR UPDATE`, planID).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return errNotFound("plan", planID)
		}
		return errors.Annotate(err, "load plan status").Err()
	}
	if err := version.TransitionPlan(current, newStatus); err != nil {
		return err
	}

	var lockedAt interface{}
	if newStatus == model.PlanLockedSt {
		lockedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE plan_versions SET status = ?, locked_at = COALESCE(?, locked_at) WHERE id = ?`,
		newStatus, lockedAt, planID); err != nil {
		return errors.Annotate(err, "update plan status").Err()
	}
	if err := tx.Commit(); err != nil {
		return errors.Annotate(err, "commit plan status tx").Err()
	}
	return nil
}

func (s *SQLStore) UpdatePlanOutputHash(ctx context.Context, planID string, outputHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plan_versions SET output_hash = ? WHERE id = ?`, outputHash, planID)
	if err != nil {
		return errors.Annotate(err, "update plan output hash").Err()
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Annotate(err, "read output hash update row count").Err()
	}
	if n == 0 {
		return errNotFound("plan", planID)
	}
	return nil
}

func (s *SQLStore) AppendAudit(ctx context.Context, records []model.AuditRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Annotate(err, "begin audit tx").Err()
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO audit_records (plan_version_id, check_name, status, counters, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Annotate(err, "prepare audit insert").Err()
	}
	defer stmt.Close()

	for _, r := range records {
		counters, err := json.Marshal(r.Counters)
		if err != nil {
			return errors.Annotate(err, "marshal audit counters").Err()
		}
		if _, err := stmt.ExecContext(ctx, r.PlanVersionID, r.CheckName, r.Status, counters, r.Details, r.CreatedAt); err != nil {
			return errors.Annotate(err, "insert audit record %s", r.CheckName).Err()
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Annotate(err, "commit audit tx").Err()
	}
	return nil
}

func (s *SQLStore) StalePlanSweep(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plan_versions SET status = ? WHERE status = ? AND created_at < ?`,
		model.PlanFailed, model.PlanSolving, olderThan)
	if err != nil {
		return 0, errors.Annotate(err, "sweep stale plans").Err()
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Annotate(err, "read sweep row count").Err()
	}
	return int(n), nil
}

func (s *SQLStore) PlanByID(ctx context.Context, planID string) (model.PlanVersion, error) {
	var pv model.PlanVersion
	var lockedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, forecast_version_id, seed, solver_config_hash, status, output_hash, created_at, locked_at
		 FROM plan_versions WHERE id = ?`, planID).
		Scan(&pv.ID, &pv.ForecastVersionID, &pv.Seed, &pv.SolverConfigHash, &pv.Status, &pv.OutputHash, &pv.CreatedAt, &lockedAt)
	if err == sql.ErrNoRows {
		return model.PlanVersion{}, errNotFound("plan", planID)
	}
	if err != nil {
		return model.PlanVersion{}, errors.Annotate(err, "load plan_version").Err()
	}
	if lockedAt.Valid {
		pv.LockedAt = &lockedAt.Time
	}
	return pv, nil
}

func (s *SQLStore) InstancesByForecast(ctx context.Context, forecastID string) ([]model.TourInstance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template_id, instance_no, day, start_datetime, end_datetime, crosses_midnight,
		        depot, skill, fingerprint, split_segment, split_group_key
		 FROM tour_instances WHERE forecast_version_id = ? ORDER BY id`, forecastID)
	if err != nil {
		return nil, errors.Annotate(err, "query tour_instances").Err()
	}
	defer rows.Close()

	var out []model.TourInstance
	for rows.Next() {
		var inst model.TourInstance
		var day int
		if err := rows.Scan(&inst.ID, &inst.TemplateID, &inst.InstanceNo, &day, &inst.StartDatetime, &inst.EndDatetime,
			&inst.CrossesMidnight, &inst.Depot, &inst.Skill, &inst.Fingerprint, &inst.SplitSegment, &inst.SplitGroupKey); err != nil {
			return nil, errors.Annotate(err, "scan tour_instance").Err()
		}
		inst.Day = model.Day(day)
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Annotate(err, "iterate tour_instances").Err()
	}
	return out, nil
}

func (s *SQLStore) AssignmentsByPlan(ctx context.Context, planID string) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plan_version_id, tour_instance_id, driver_label, block_id
		 FROM assignments WHERE plan_version_id = ? ORDER BY tour_instance_id`, planID)
	if err != nil {
		return nil, errors.Annotate(err, "query assignments").Err()
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.PlanVersionID, &a.TourInstanceID, &a.DriverLabel, &a.BlockID); err != nil {
			return nil, errors.Annotate(err, "scan assignment").Err()
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Annotate(err, "iterate assignments").Err()
	}
	return out, nil
}

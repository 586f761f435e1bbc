package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
)

// SQL-backed implementation of the ItineraryRepository port (SQLite or Postgres).
type SQLItineraryRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLItineraryRepository(db *sql.DB, dialect Dialect) *SQLItineraryRepository {
	return &SQLItineraryRepository{DB: db, Dialect: dialect}
}

// Return all days ordered by day number, with their stops.
func (s *SQLItineraryRepository) ListDays(ctx context.Context) (_ []*domain.Day, err error) {
	defer obs.Time(ctx, "itinerary.repo.ListDays")(&err)

	if s.DB == nil {
		return nil, errors.New("itinerary repository: DB is nil")
	}

	query := `
	SELECT
		day_id,
		day_number,
		start_time
	FROM days
	ORDER BY day_number, day_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list days: query days table: %w", err)
	}
	defer rows.Close()

	days := make([]*domain.Day, 0, 8)
	byID := make(map[string]*domain.Day)
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("list days: %w", err)
		}
		days = append(days, day)
		byID[day.ID] = day
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list days: row iteration: %w", err)
	}

	if len(days) == 0 {
		return days, nil
	}

	stopRows, err := s.DB.QueryContext(ctx, `
	SELECT
		day_id,
		stop_id,
		name,
		note,
		x,
		y,
		duration_minutes
	FROM stops
	ORDER BY day_id, position;
	`)
	if err != nil {
		return nil, fmt.Errorf("list days: query stops table: %w", err)
	}
	defer stopRows.Close()

	for stopRows.Next() {
		var dayID string
		stop, err := scanStop(stopRows, &dayID)
		if err != nil {
			return nil, fmt.Errorf("list days: %w", err)
		}
		if day, ok := byID[dayID]; ok {
			day.Stops = append(day.Stops, stop)
		}
	}
	if err := stopRows.Err(); err != nil {
		return nil, fmt.Errorf("list days: stop row iteration: %w", err)
	}

	return days, nil
}

// Return one day with its stops in order.
func (s *SQLItineraryRepository) GetDay(ctx context.Context, dayID string) (_ *domain.Day, err error) {
	defer obs.Time(ctx, "itinerary.repo.GetDay")(&err)

	if s.DB == nil {
		return nil, errors.New("itinerary repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
	SELECT
		day_id,
		day_number,
		start_time
	FROM days
	WHERE day_id = ?;
	`), dayID)

	day, err := scanDay(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get day %q: %w", dayID, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("get day %q: %w", dayID, err)
	}

	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(`
	SELECT
		day_id,
		stop_id,
		name,
		note,
		x,
		y,
		duration_minutes
	FROM stops
	WHERE day_id = ?
	ORDER BY position;
	`), dayID)
	if err != nil {
		return nil, fmt.Errorf("get day %q: query stops table: %w", dayID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner string
		stop, err := scanStop(rows, &owner)
		if err != nil {
			return nil, fmt.Errorf("get day %q: %w", dayID, err)
		}
		day.Stops = append(day.Stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get day %q: row iteration: %w", dayID, err)
	}

	return day, nil
}

// Insert or replace a day; its stop rows are rewritten in the day's order.
func (s *SQLItineraryRepository) SaveDay(ctx context.Context, day *domain.Day) (err error) {
	defer obs.Time(ctx, "itinerary.repo.SaveDay")(&err)

	if s.DB == nil {
		return errors.New("itinerary repository: DB is nil")
	}

	if day == nil || day.ID == "" {
		return errors.New("save day: day id must not be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save day: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsertDay := s.Dialect.rebind(`
	INSERT INTO days (day_id, day_number, start_time)
	VALUES (?, ?, ?)
	ON CONFLICT (day_id) DO UPDATE
	SET day_number = EXCLUDED.day_number,
		start_time = EXCLUDED.start_time;
	`)
	if _, err := tx.ExecContext(ctx, upsertDay, day.ID, day.Number, day.StartTime.String()); err != nil {
		return fmt.Errorf("save day %q: upsert day: %w", day.ID, err)
	}

	if _, err := tx.ExecContext(ctx, s.Dialect.rebind(`DELETE FROM stops WHERE day_id = ?;`), day.ID); err != nil {
		return fmt.Errorf("save day %q: clear stops: %w", day.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.Dialect.rebind(`
	INSERT INTO stops (
		stop_id,
		day_id,
		position,
		name,
		note,
		x,
		y,
		duration_minutes
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save day %q: db prepare: %w", day.ID, err)
	}
	defer stmt.Close()

	for i, stop := range day.Stops {
		var x, y sql.NullFloat64
		if stop.Coords != nil {
			x = sql.NullFloat64{Float64: stop.Coords.X, Valid: true}
			y = sql.NullFloat64{Float64: stop.Coords.Y, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, stop.ID, day.ID, i, stop.Name, stop.Note, x, y, stop.DurationMinutes); err != nil {
			return fmt.Errorf("save day %q: insert stop %q: %w", day.ID, stop.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save day %q: commit: %w", day.ID, err)
	}

	return nil
}

func (s *SQLItineraryRepository) DeleteDay(ctx context.Context, dayID string) (err error) {
	defer obs.Time(ctx, "itinerary.repo.DeleteDay")(&err)

	if s.DB == nil {
		return errors.New("itinerary repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete day %q: db begin: %w", dayID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.Dialect.rebind(`DELETE FROM stops WHERE day_id = ?;`), dayID); err != nil {
		return fmt.Errorf("delete day %q: delete stops: %w", dayID, err)
	}

	res, err := tx.ExecContext(ctx, s.Dialect.rebind(`DELETE FROM days WHERE day_id = ?;`), dayID)
	if err != nil {
		return fmt.Errorf("delete day %q: %w", dayID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete day %q: rows affected: %w", dayID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete day %q: %w", dayID, ports.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete day %q: commit: %w", dayID, err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDay(row scanner) (*domain.Day, error) {
	var id, start string
	var number int
	if err := row.Scan(&id, &number, &start); err != nil {
		return nil, err
	}

	startTime, err := domain.ParseClockTime(start)
	if err != nil {
		return nil, fmt.Errorf("scan day %q: %w", id, err)
	}

	return domain.NewDay(id, number, startTime), nil
}

func scanStop(row scanner, dayID *string) (domain.Stop, error) {
	var stop domain.Stop
	var x, y sql.NullFloat64
	if err := row.Scan(dayID, &stop.ID, &stop.Name, &stop.Note, &x, &y, &stop.DurationMinutes); err != nil {
		return domain.Stop{}, fmt.Errorf("scan stop row: %w", err)
	}

	if x.Valid && y.Valid {
		stop.Coords = &domain.Coordinates{X: x.Float64, Y: y.Float64}
	}

	return stop, nil
}

var _ ports.ItineraryRepository = (*SQLItineraryRepository)(nil)

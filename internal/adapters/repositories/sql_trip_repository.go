package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/platform/db"
	"hos-trip-service/internal/platform/obs"
	"hos-trip-service/internal/ports"
	"time"

	"github.com/google/uuid"
)

// Timestamps are stored as fixed-width RFC 3339 text in both dialects so the
// offset survives a round trip and UTC values sort as text.
const (
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
	dateLayout = "2006-01-02"
)

type scanner interface {
	Scan(dest ...any) error
}

// SQL-backed implementation of the TripRepository port.
type SQLTripRepository struct{ DB *db.DB }

func NewSQLTripRepository(conn *db.DB) *SQLTripRepository {
	return &SQLTripRepository{DB: conn}
}

// Save the trip, its route points and its log sheets in one transaction.
func (s *SQLTripRepository) SaveTrip(ctx context.Context, trip *domain.TripRecord) (err error) {
	defer obs.Time(ctx, "trips.SaveTrip")(&err)

	if s.DB == nil {
		return errors.New("sql trip repository: DB is nil")
	}
	if trip == nil {
		return errors.New("save trip: trip is nil")
	}

	// Identifiers are applied to trip only once the transaction commits.
	tripID := trip.ID
	if tripID == uuid.Nil {
		tripID = uuid.New()
	}
	createdAt := trip.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	sheetIDs := make([]uuid.UUID, len(trip.LogSheets))
	for i, ls := range trip.LogSheets {
		sheetIDs[i] = ls.ID
		if sheetIDs[i] == uuid.Nil {
			sheetIDs[i] = uuid.New()
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save trip: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	in := trip.Input
	_, err = tx.ExecContext(ctx, s.DB.Rebind(`
	INSERT INTO trips (
		id, current_location, pickup_location, dropoff_location, current_cycle_hours,
		driver_name, vehicle_id, total_miles, estimated_driving_hours,
		start_at, end_at, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`),
		tripID.String(), in.CurrentLocation, in.PickupLocation, in.DropoffLocation, in.CurrentCycleHours,
		in.DriverName, in.VehicleID, trip.TotalMiles, trip.EstimatedDrivingHours,
		trip.StartAt.Format(timeLayout), trip.EndAt.Format(timeLayout), createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save trip %s: insert trip: %w", tripID, err)
	}

	for _, p := range trip.Route {
		_, err := tx.ExecContext(ctx, s.DB.Rebind(`
		INSERT INTO route_points (
			trip_id, seq, location, location_type, duration_hours, distance_from_previous, arrive_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?);
		`),
			tripID.String(), p.Sequence, p.Location, string(p.Type), p.DurationHours,
			p.DistanceFromPrevious, p.ArriveAt.Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("save trip %s: insert route point %d: %w", tripID, p.Sequence, err)
		}
	}

	for si, ls := range trip.LogSheets {
		sheetID := sheetIDs[si]
		_, err := tx.ExecContext(ctx, s.DB.Rebind(`
		INSERT INTO log_sheets (
			id, trip_id, sheet_date, driver_name, vehicle_id,
			driving_hours, on_duty_hours, off_duty_hours, sleeper_hours,
			cycle_hours_used, cycle_hours_remaining, total_miles, fuel_stops, rest_stops
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`),
			sheetID.String(), tripID.String(), ls.Date.Format(dateLayout), ls.DriverName, ls.VehicleID,
			ls.DrivingHours, ls.OnDutyHours, ls.OffDutyHours, ls.SleeperHours,
			ls.CycleHoursUsed, ls.CycleHoursRemaining, ls.TotalMiles, ls.FuelStops, ls.RestStops,
		)
		if err != nil {
			return fmt.Errorf("save trip %s: insert log sheet %s: %w", tripID, ls.Date.Format(dateLayout), err)
		}

		for i, e := range ls.Entries {
			_, err := tx.ExecContext(ctx, s.DB.Rebind(`
			INSERT INTO log_entries (log_sheet_id, seq, entry_time, status, location, remarks)
			VALUES (?, ?, ?, ?, ?, ?);
			`),
				sheetID.String(), i+1, e.Time.Format(timeLayout), string(e.Status), e.Location, e.Remarks,
			)
			if err != nil {
				return fmt.Errorf("save trip %s: insert log entry %d: %w", tripID, i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save trip %s: commit tx: %w", tripID, err)
	}

	trip.ID = tripID
	trip.CreatedAt = createdAt
	for i := range trip.LogSheets {
		trip.LogSheets[i].ID = sheetIDs[i]
		trip.LogSheets[i].TripID = tripID
	}

	return nil
}

const tripColumns = `
	id, current_location, pickup_location, dropoff_location, current_cycle_hours,
	driver_name, vehicle_id, total_miles, estimated_driving_hours,
	start_at, end_at, created_at
`

// Retrieve a trip with its route points and log sheets.
func (s *SQLTripRepository) GetTrip(ctx context.Context, id uuid.UUID) (_ *domain.TripRecord, err error) {
	defer obs.Time(ctx, "trips.GetTrip")(&err)

	if s.DB == nil {
		return nil, errors.New("sql trip repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, s.DB.Rebind(`SELECT `+tripColumns+` FROM trips WHERE id = ?;`), id.String())
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get trip %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trip %s: %w", id, err)
	}

	if trip.Route, err = s.loadRoute(ctx, id); err != nil {
		return nil, fmt.Errorf("get trip %s: %w", id, err)
	}
	if trip.LogSheets, err = s.loadSheets(ctx, id); err != nil {
		return nil, fmt.Errorf("get trip %s: %w", id, err)
	}

	return trip, nil
}

// List trips, newest first. Route points and log sheets are not loaded.
func (s *SQLTripRepository) ListTrips(ctx context.Context) (_ []*domain.TripRecord, err error) {
	defer obs.Time(ctx, "trips.ListTrips")(&err)

	if s.DB == nil {
		return nil, errors.New("sql trip repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY created_at DESC, id;`)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trips table: %w", err)
	}
	defer rows.Close()

	trips := make([]*domain.TripRecord, 0, 16)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("list trips: scan row: %w", err)
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}

	return trips, nil
}

const sheetColumns = `
	id, trip_id, sheet_date, driver_name, vehicle_id,
	driving_hours, on_duty_hours, off_duty_hours, sleeper_hours,
	cycle_hours_used, cycle_hours_remaining, total_miles, fuel_stops, rest_stops
`

// Retrieve one log sheet with its entries.
func (s *SQLTripRepository) GetLogSheet(ctx context.Context, id uuid.UUID) (_ *domain.LogSheetRecord, err error) {
	defer obs.Time(ctx, "trips.GetLogSheet")(&err)

	if s.DB == nil {
		return nil, errors.New("sql trip repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, s.DB.Rebind(`SELECT `+sheetColumns+` FROM log_sheets WHERE id = ?;`), id.String())
	sheet, err := scanSheet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get log sheet %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get log sheet %s: %w", id, err)
	}

	if sheet.Entries, err = s.loadEntries(ctx, id); err != nil {
		return nil, fmt.Errorf("get log sheet %s: %w", id, err)
	}

	return &sheet, nil
}

func (s *SQLTripRepository) loadRoute(ctx context.Context, tripID uuid.UUID) ([]domain.Waypoint, error) {
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind(`
	SELECT seq, location, location_type, duration_hours, distance_from_previous, arrive_at
	FROM route_points
	WHERE trip_id = ?
	ORDER BY seq;
	`), tripID.String())
	if err != nil {
		return nil, fmt.Errorf("load route: query route_points table: %w", err)
	}
	defer rows.Close()

	var points []domain.Waypoint
	for rows.Next() {
		var (
			p        domain.Waypoint
			typ      string
			arriveAt string
		)
		if err := rows.Scan(&p.Sequence, &p.Location, &typ, &p.DurationHours, &p.DistanceFromPrevious, &arriveAt); err != nil {
			return nil, fmt.Errorf("load route: scan row: %w", err)
		}
		p.Type = domain.LocationType(typ)
		if p.ArriveAt, err = time.Parse(timeLayout, arriveAt); err != nil {
			return nil, fmt.Errorf("load route: parse arrive_at: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load route: row iteration: %w", err)
	}

	return points, nil
}

// loadSheets reads the sheet rows first and their entries afterwards; a
// single-connection SQLite pool cannot serve nested queries.
func (s *SQLTripRepository) loadSheets(ctx context.Context, tripID uuid.UUID) ([]domain.LogSheetRecord, error) {
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind(`
	SELECT `+sheetColumns+`
	FROM log_sheets
	WHERE trip_id = ?
	ORDER BY sheet_date;
	`), tripID.String())
	if err != nil {
		return nil, fmt.Errorf("load log sheets: query log_sheets table: %w", err)
	}

	var sheets []domain.LogSheetRecord
	for rows.Next() {
		sheet, err := scanSheet(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("load log sheets: scan row: %w", err)
		}
		sheets = append(sheets, sheet)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("load log sheets: row iteration: %w", err)
	}
	rows.Close()

	for i := range sheets {
		if sheets[i].Entries, err = s.loadEntries(ctx, sheets[i].ID); err != nil {
			return nil, err
		}
	}

	return sheets, nil
}

func (s *SQLTripRepository) loadEntries(ctx context.Context, sheetID uuid.UUID) ([]domain.LogEntry, error) {
	rows, err := s.DB.QueryContext(ctx, s.DB.Rebind(`
	SELECT entry_time, status, location, remarks
	FROM log_entries
	WHERE log_sheet_id = ?
	ORDER BY seq;
	`), sheetID.String())
	if err != nil {
		return nil, fmt.Errorf("load log entries: query log_entries table: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var (
			e      domain.LogEntry
			at     string
			status string
		)
		if err := rows.Scan(&at, &status, &e.Location, &e.Remarks); err != nil {
			return nil, fmt.Errorf("load log entries: scan row: %w", err)
		}
		e.Status = domain.DutyStatus(status)
		if e.Time, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("load log entries: parse entry_time: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load log entries: row iteration: %w", err)
	}

	return entries, nil
}

func scanTrip(row scanner) (*domain.TripRecord, error) {
	var (
		trip                      domain.TripRecord
		id                        string
		startAt, endAt, createdAt string
	)

	err := row.Scan(
		&id, &trip.Input.CurrentLocation, &trip.Input.PickupLocation, &trip.Input.DropoffLocation,
		&trip.Input.CurrentCycleHours, &trip.Input.DriverName, &trip.Input.VehicleID,
		&trip.TotalMiles, &trip.EstimatedDrivingHours, &startAt, &endAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if trip.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse trip id %q: %w", id, err)
	}
	if trip.StartAt, err = time.Parse(timeLayout, startAt); err != nil {
		return nil, fmt.Errorf("parse start_at: %w", err)
	}
	if trip.EndAt, err = time.Parse(timeLayout, endAt); err != nil {
		return nil, fmt.Errorf("parse end_at: %w", err)
	}
	if trip.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	trip.Input.StartAt = trip.StartAt

	return &trip, nil
}

func scanSheet(row scanner) (domain.LogSheetRecord, error) {
	var (
		sheet      domain.LogSheetRecord
		id, tripID string
		date       string
	)

	err := row.Scan(
		&id, &tripID, &date, &sheet.DriverName, &sheet.VehicleID,
		&sheet.DrivingHours, &sheet.OnDutyHours, &sheet.OffDutyHours, &sheet.SleeperHours,
		&sheet.CycleHoursUsed, &sheet.CycleHoursRemaining, &sheet.TotalMiles, &sheet.FuelStops, &sheet.RestStops,
	)
	if err != nil {
		return sheet, err
	}

	if sheet.ID, err = uuid.Parse(id); err != nil {
		return sheet, fmt.Errorf("parse log sheet id %q: %w", id, err)
	}
	if sheet.TripID, err = uuid.Parse(tripID); err != nil {
		return sheet, fmt.Errorf("parse trip id %q: %w", tripID, err)
	}
	if sheet.Date, err = time.Parse(dateLayout, date); err != nil {
		return sheet, fmt.Errorf("parse sheet_date: %w", err)
	}

	return sheet, nil
}

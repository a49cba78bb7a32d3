package repository

import (
	"database/sql"

	"meetpoint/cmd/internal/domain/entity"
	"meetpoint/cmd/internal/utils"
)

const columns = `appointment_id, host_id, title, description, start_time, end_time,
	location_id, appointment_status, feedback_pending, created_at, updated_at`

const upsert = `
	INSERT INTO appointment (` + columns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (appointment_id) DO UPDATE SET
		host_id = excluded.host_id,
		title = excluded.title,
		description = excluded.description,
		start_time = excluded.start_time,
		end_time = excluded.end_time,
		location_id = excluded.location_id,
		appointment_status = excluded.appointment_status,
		feedback_pending = excluded.feedback_pending,
		updated_at = excluded.updated_at`

type DefaultAppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

// Get returns nil without error when the id is unknown, so callers
// can tell "no data" from "failure".
func (r *DefaultAppointmentRepository) Get(id string) (*entity.Appointment, error) {
	row := r.db.QueryRow(`SELECT `+columns+` FROM appointment WHERE appointment_id = ?`, id)
	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Save inserts or updates a single appointment. The store owns
// created_at and updated_at: created_at is stamped on first insert,
// updated_at on every write.
func (r *DefaultAppointmentRepository) Save(appt *entity.Appointment) error {
	stamp(appt)
	_, err := r.db.Exec(upsert, args(appt)...)
	return err
}

// SaveAll writes the batch inside one transaction. Rows are
// independent; a constraint failure on one rolls the batch back
// without corrupting unrelated rows.
func (r *DefaultAppointmentRepository) SaveAll(appts []*entity.Appointment) error {
	if len(appts) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	statement, err := tx.Prepare(upsert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer statement.Close()

	for _, appt := range appts {
		stamp(appt)
		if _, err := statement.Exec(args(appt)...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// DeleteByID removes the row if present. Deleting an unknown id is
// not an error.
func (r *DefaultAppointmentRepository) DeleteByID(id string) error {
	_, err := r.db.Exec(`DELETE FROM appointment WHERE appointment_id = ?`, id)
	return err
}

func (r *DefaultAppointmentRepository) FindAll() ([]*entity.Appointment, error) {
	return r.query(`SELECT ` + columns + ` FROM appointment ORDER BY appointment_id`)
}

func (r *DefaultAppointmentRepository) FindByHost(hostID string) ([]*entity.Appointment, error) {
	return r.query(`SELECT `+columns+` FROM appointment WHERE host_id = ? ORDER BY appointment_id`, hostID)
}

func (r *DefaultAppointmentRepository) FindByLocation(locationID string) ([]*entity.Appointment, error) {
	return r.query(`SELECT `+columns+` FROM appointment WHERE location_id = ? ORDER BY appointment_id`, locationID)
}

func (r *DefaultAppointmentRepository) FindByStartTime(startTime int64) ([]*entity.Appointment, error) {
	return r.query(`SELECT `+columns+` FROM appointment WHERE start_time = ? ORDER BY appointment_id`, startTime)
}

func (r *DefaultAppointmentRepository) FindByEndTime(endTime int64) ([]*entity.Appointment, error) {
	return r.query(`SELECT `+columns+` FROM appointment WHERE end_time = ? ORDER BY appointment_id`, endTime)
}

// FindWithFilters applies only the filter fields that are set: empty
// strings and nil bounds mean "no constraint".
func (r *DefaultAppointmentRepository) FindWithFilters(filter entity.ListFilter) ([]*entity.Appointment, error) {
	query := `SELECT ` + columns + ` FROM appointment WHERE 1 = 1`
	var params []any

	if filter.LocationID != "" {
		query += ` AND location_id = ?`
		params = append(params, filter.LocationID)
	}
	if filter.Status != "" {
		query += ` AND appointment_status = ?`
		params = append(params, string(filter.Status))
	}
	if filter.StartAtOrAfter != nil {
		query += ` AND start_time >= ?`
		params = append(params, *filter.StartAtOrAfter)
	}
	if filter.EndAtOrBefore != nil {
		query += ` AND end_time <= ?`
		params = append(params, *filter.EndAtOrBefore)
	}

	query += ` ORDER BY appointment_id`
	return r.query(query, params...)
}

// FindOverlapping returns every non-cancelled appointment of the host
// whose half-open window intersects [start, end), ordered by
// appointment id so the first reported conflict is stable.
func (r *DefaultAppointmentRepository) FindOverlapping(hostID string, start, end int64) ([]*entity.Appointment, error) {
	return r.query(`SELECT `+columns+` FROM appointment
		WHERE host_id = ?
		  AND appointment_status != ?
		  AND start_time < ?
		  AND end_time > ?
		ORDER BY appointment_id`,
		hostID, string(entity.StatusCancelled), end, start)
}

// FindEligibleForStart selects PLANNED appointments whose window
// contains now (start <= now < end).
func (r *DefaultAppointmentRepository) FindEligibleForStart(now int64) ([]*entity.Appointment, error) {
	return r.query(`SELECT `+columns+` FROM appointment
		WHERE appointment_status = ?
		  AND start_time <= ?
		  AND end_time > ?
		ORDER BY appointment_id`,
		string(entity.StatusPlanned), now, now)
}

// FindEligibleForEnd selects ONGOING appointments whose end has
// passed (end <= now).
func (r *DefaultAppointmentRepository) FindEligibleForEnd(now int64) ([]*entity.Appointment, error) {
	return r.query(`SELECT `+columns+` FROM appointment
		WHERE appointment_status = ?
		  AND end_time <= ?
		ORDER BY appointment_id`,
		string(entity.StatusOngoing), now)
}

// FindEligibleForCatchUp selects PLANNED appointments that are already
// past their end time: rows the scheduler never saw during their
// ONGOING window.
func (r *DefaultAppointmentRepository) FindEligibleForCatchUp(now int64) ([]*entity.Appointment, error) {
	return r.query(`SELECT `+columns+` FROM appointment
		WHERE appointment_status = ?
		  AND end_time <= ?
		ORDER BY appointment_id`,
		string(entity.StatusPlanned), now)
}

func (r *DefaultAppointmentRepository) query(query string, params ...any) ([]*entity.Appointment, error) {
	rows, err := r.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []*entity.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row scanner) (*entity.Appointment, error) {
	var appt entity.Appointment
	var status string
	err := row.Scan(
		&appt.ID, &appt.HostID, &appt.Title, &appt.Description,
		&appt.StartTime, &appt.EndTime, &appt.LocationID, &status,
		&appt.FeedbackPending, &appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	appt.Status = entity.Status(status)
	return &appt, nil
}

func stamp(appt *entity.Appointment) {
	now := utils.NowUTC()
	if appt.CreatedAt == 0 {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
}

func args(appt *entity.Appointment) []any {
	return []any{
		appt.ID, appt.HostID, appt.Title, appt.Description,
		appt.StartTime, appt.EndTime, appt.LocationID, string(appt.Status),
		appt.FeedbackPending, appt.CreatedAt, appt.UpdatedAt,
	}
}

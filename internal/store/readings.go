package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/spokeworks/wheelsmith/internal/models"
)

func (s *Store) CreateSession(sess models.TensionSession) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO tension_sessions (id, wheel_build_id, name, session_date, notes)
		VALUES (?, ?, ?, ?, ?)
	`, sess.ID, sess.WheelBuildID, sess.Name, sess.Date, sess.Notes)
	return sess.ID, err
}

func (s *Store) GetSession(id string) (*models.TensionSession, error) {
	row := s.db.QueryRow(`SELECT id, wheel_build_id, name, session_date, notes, created_at FROM tension_sessions WHERE id = ?`, id)
	var sess models.TensionSession
	err := row.Scan(&sess.ID, &sess.WheelBuildID, &sess.Name, &sess.Date, &sess.Notes, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) GetBuildSessions(buildID string) ([]models.TensionSession, error) {
	rows, err := s.db.Query(`SELECT id, wheel_build_id, name, session_date, notes, created_at FROM tension_sessions WHERE wheel_build_id = ? ORDER BY session_date DESC`, buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.TensionSession
	for rows.Next() {
		var sess models.TensionSession
		if err := rows.Scan(&sess.ID, &sess.WheelBuildID, &sess.Name, &sess.Date, &sess.Notes, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and all of its readings.
func (s *Store) DeleteSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tension_readings WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete session readings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tension_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

const readingColumns = `id, session_id, spoke_number, side, reading, tension, range_status, deviation_status`

// UpsertReading writes one measurement cell. A session holds at most one
// reading per (spoke_number, side); resubmitting overwrites in place.
func (s *Store) UpsertReading(r models.TensionReading) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO tension_readings (id, session_id, spoke_number, side, reading, tension, range_status, deviation_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, spoke_number, side) DO UPDATE SET
			reading = excluded.reading,
			tension = excluded.tension,
			range_status = excluded.range_status,
			deviation_status = excluded.deviation_status
	`, r.ID, r.SessionID, r.SpokeNumber, r.Side, r.Reading, r.Tension, r.RangeStatus, r.DeviationStatus)
	return err
}

// DeleteReading removes a single measurement cell (a blank submission).
func (s *Store) DeleteReading(sessionID string, spokeNumber int, side models.Side) error {
	_, err := s.db.Exec(`DELETE FROM tension_readings WHERE session_id = ? AND spoke_number = ? AND side = ?`, sessionID, spokeNumber, side)
	return err
}

func (s *Store) GetSessionReadings(sessionID string) ([]models.TensionReading, error) {
	rows, err := s.db.Query(`SELECT `+readingColumns+` FROM tension_readings WHERE session_id = ? ORDER BY side, spoke_number`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []models.TensionReading
	for rows.Next() {
		var r models.TensionReading
		if err := rows.Scan(&r.ID, &r.SessionID, &r.SpokeNumber, &r.Side, &r.Reading, &r.Tension, &r.RangeStatus, &r.DeviationStatus); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// ReplaceSessionReadings discards a session's entire reading set and writes
// the given one in a single transaction (bulk session rewrite).
func (s *Store) ReplaceSessionReadings(sessionID string, readings []models.TensionReading) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace readings: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tension_readings WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session readings: %w", err)
	}

	for _, r := range readings {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := tx.Exec(`
			INSERT INTO tension_readings (id, session_id, spoke_number, side, reading, tension, range_status, deviation_status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, sessionID, r.SpokeNumber, r.Side, r.Reading, r.Tension, r.RangeStatus, r.DeviationStatus); err != nil {
			return fmt.Errorf("insert reading %d/%s: %w", r.SpokeNumber, r.Side, err)
		}
	}
	return tx.Commit()
}

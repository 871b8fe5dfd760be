package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spokeworks/wheelsmith/internal/models"
)

const buildColumns = `id, name, status, hub_id, rim_id, spoke_left_id, spoke_right_id, nipple_id, lacing_pattern, spoke_count, actual_spoke_length_left, actual_spoke_length_right, comments, created_at, updated_at`

func scanBuild(row interface{ Scan(...any) error }) (models.WheelBuild, error) {
	var b models.WheelBuild
	err := row.Scan(&b.ID, &b.Name, &b.Status, &b.HubID, &b.RimID, &b.SpokeLeftID, &b.SpokeRightID, &b.NippleID, &b.LacingPattern, &b.SpokeCount, &b.ActualSpokeLengthLeft, &b.ActualSpokeLengthRight, &b.Comments, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (s *Store) CreateBuild(b models.WheelBuild) (string, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = models.BuildDraft
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO wheel_builds (id, name, status, hub_id, rim_id, spoke_left_id, spoke_right_id, nipple_id, lacing_pattern, spoke_count, actual_spoke_length_left, actual_spoke_length_right, comments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.Status, b.HubID, b.RimID, b.SpokeLeftID, b.SpokeRightID, b.NippleID, b.LacingPattern, b.SpokeCount, b.ActualSpokeLengthLeft, b.ActualSpokeLengthRight, b.Comments, now, now)
	return b.ID, err
}

func (s *Store) GetBuild(id string) (*models.WheelBuild, error) {
	b, err := scanBuild(s.db.QueryRow(`SELECT `+buildColumns+` FROM wheel_builds WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetAllBuilds() ([]models.WheelBuild, error) {
	rows, err := s.db.Query(`SELECT ` + buildColumns + ` FROM wheel_builds ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []models.WheelBuild
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

func (s *Store) UpdateBuild(b models.WheelBuild) error {
	_, err := s.db.Exec(`
		UPDATE wheel_builds SET
			name = ?, status = ?, hub_id = ?, rim_id = ?, spoke_left_id = ?, spoke_right_id = ?,
			nipple_id = ?, lacing_pattern = ?, spoke_count = ?, actual_spoke_length_left = ?,
			actual_spoke_length_right = ?, comments = ?, updated_at = ?
		WHERE id = ?
	`, b.Name, b.Status, b.HubID, b.RimID, b.SpokeLeftID, b.SpokeRightID, b.NippleID, b.LacingPattern, b.SpokeCount, b.ActualSpokeLengthLeft, b.ActualSpokeLengthRight, b.Comments, time.Now().UTC(), b.ID)
	return err
}

// DeleteBuild removes a build and everything hanging off it: readings of
// its sessions first, then the sessions, then the build itself.
func (s *Store) DeleteBuild(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete build: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tension_readings WHERE session_id IN (SELECT id FROM tension_sessions WHERE wheel_build_id = ?)`, id); err != nil {
		return fmt.Errorf("delete build readings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tension_sessions WHERE wheel_build_id = ?`, id); err != nil {
		return fmt.Errorf("delete build sessions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM wheel_builds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete build: %w", err)
	}
	return tx.Commit()
}

// Builds-using-component queries back the delete lock check.

func (s *Store) BuildsUsingHub(hubID string) ([]models.WheelBuild, error) {
	return s.buildsWhere(`hub_id = ?`, hubID)
}

func (s *Store) BuildsUsingRim(rimID string) ([]models.WheelBuild, error) {
	return s.buildsWhere(`rim_id = ?`, rimID)
}

func (s *Store) BuildsUsingSpoke(spokeID string) ([]models.WheelBuild, error) {
	return s.buildsWhere(`spoke_left_id = ? OR spoke_right_id = ?`, spokeID, spokeID)
}

func (s *Store) BuildsUsingNipple(nippleID string) ([]models.WheelBuild, error) {
	return s.buildsWhere(`nipple_id = ?`, nippleID)
}

func (s *Store) buildsWhere(cond string, args ...any) ([]models.WheelBuild, error) {
	rows, err := s.db.Query(`SELECT `+buildColumns+` FROM wheel_builds WHERE `+cond+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []models.WheelBuild
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

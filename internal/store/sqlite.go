// Package store is the SQLite repository for all persisted entities. Other
// packages never touch the database directly; everything goes through here.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/spokeworks/wheelsmith/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Hub operations

func (s *Store) CreateHub(h models.Hub) (string, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO hubs (id, make, model, type, old, left_flange_diameter, right_flange_diameter, left_flange_offset, right_flange_offset, spoke_hole_diameter, spoke_holes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.Make, h.Model, h.Type, h.OLD, h.LeftFlangeDiameter, h.RightFlangeDiameter, h.LeftFlangeOffset, h.RightFlangeOffset, h.SpokeHoleDiameter, h.SpokeHoles)
	return h.ID, err
}

func (s *Store) GetHub(id string) (*models.Hub, error) {
	row := s.db.QueryRow(`SELECT id, make, model, type, old, left_flange_diameter, right_flange_diameter, left_flange_offset, right_flange_offset, spoke_hole_diameter, spoke_holes FROM hubs WHERE id = ?`, id)
	var h models.Hub
	err := row.Scan(&h.ID, &h.Make, &h.Model, &h.Type, &h.OLD, &h.LeftFlangeDiameter, &h.RightFlangeDiameter, &h.LeftFlangeOffset, &h.RightFlangeOffset, &h.SpokeHoleDiameter, &h.SpokeHoles)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) GetAllHubs() ([]models.Hub, error) {
	rows, err := s.db.Query(`SELECT id, make, model, type, old, left_flange_diameter, right_flange_diameter, left_flange_offset, right_flange_offset, spoke_hole_diameter, spoke_holes FROM hubs ORDER BY make, model`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hubs []models.Hub
	for rows.Next() {
		var h models.Hub
		if err := rows.Scan(&h.ID, &h.Make, &h.Model, &h.Type, &h.OLD, &h.LeftFlangeDiameter, &h.RightFlangeDiameter, &h.LeftFlangeOffset, &h.RightFlangeOffset, &h.SpokeHoleDiameter, &h.SpokeHoles); err != nil {
			return nil, err
		}
		hubs = append(hubs, h)
	}
	return hubs, rows.Err()
}

func (s *Store) DeleteHub(id string) error {
	_, err := s.db.Exec(`DELETE FROM hubs WHERE id = ?`, id)
	return err
}

// Rim operations

func (s *Store) CreateRim(r models.Rim) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO rims (id, make, model, type, erd, osb, inner_width, outer_width, holes, material)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Make, r.Model, r.Type, r.ERD, r.OSB, r.InnerWidth, r.OuterWidth, r.Holes, r.Material)
	return r.ID, err
}

func (s *Store) GetRim(id string) (*models.Rim, error) {
	row := s.db.QueryRow(`SELECT id, make, model, type, erd, osb, inner_width, outer_width, holes, material FROM rims WHERE id = ?`, id)
	var r models.Rim
	err := row.Scan(&r.ID, &r.Make, &r.Model, &r.Type, &r.ERD, &r.OSB, &r.InnerWidth, &r.OuterWidth, &r.Holes, &r.Material)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) GetAllRims() ([]models.Rim, error) {
	rows, err := s.db.Query(`SELECT id, make, model, type, erd, osb, inner_width, outer_width, holes, material FROM rims ORDER BY make, model`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rims []models.Rim
	for rows.Next() {
		var r models.Rim
		if err := rows.Scan(&r.ID, &r.Make, &r.Model, &r.Type, &r.ERD, &r.OSB, &r.InnerWidth, &r.OuterWidth, &r.Holes, &r.Material); err != nil {
			return nil, err
		}
		rims = append(rims, r)
	}
	return rims, rows.Err()
}

func (s *Store) DeleteRim(id string) error {
	_, err := s.db.Exec(`DELETE FROM rims WHERE id = ?`, id)
	return err
}

// SpokeType and calibration table operations. Spoke types and their points
// are created once at seed time and read-only afterwards.

func (s *Store) CreateSpokeType(st models.SpokeType) (string, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO spoke_types (id, name, material, shape, dimensions, min_reading, max_reading, min_tension, max_tension)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, st.ID, st.Name, st.Material, st.Shape, st.Dimensions, st.MinReading, st.MaxReading, st.MinTension, st.MaxTension)
	return st.ID, err
}

func (s *Store) GetSpokeType(id string) (*models.SpokeType, error) {
	row := s.db.QueryRow(`SELECT id, name, material, shape, dimensions, min_reading, max_reading, min_tension, max_tension FROM spoke_types WHERE id = ?`, id)
	var st models.SpokeType
	err := row.Scan(&st.ID, &st.Name, &st.Material, &st.Shape, &st.Dimensions, &st.MinReading, &st.MaxReading, &st.MinTension, &st.MaxTension)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) GetAllSpokeTypes() ([]models.SpokeType, error) {
	rows, err := s.db.Query(`SELECT id, name, material, shape, dimensions, min_reading, max_reading, min_tension, max_tension FROM spoke_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.SpokeType
	for rows.Next() {
		var st models.SpokeType
		if err := rows.Scan(&st.ID, &st.Name, &st.Material, &st.Shape, &st.Dimensions, &st.MinReading, &st.MaxReading, &st.MinTension, &st.MaxTension); err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

func (s *Store) CountSpokeTypes() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM spoke_types`).Scan(&n)
	return n, err
}

func (s *Store) InsertCalibrationPoint(p models.CalibrationPoint) error {
	_, err := s.db.Exec(`
		INSERT INTO calibration_points (spoke_type_id, reading, tension)
		VALUES (?, ?, ?)
	`, p.SpokeTypeID, p.Reading, p.Tension)
	return err
}

func (s *Store) GetCalibrationPoints(spokeTypeID string) ([]models.CalibrationPoint, error) {
	rows, err := s.db.Query(`SELECT id, spoke_type_id, reading, tension FROM calibration_points WHERE spoke_type_id = ? ORDER BY reading ASC`, spokeTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.CalibrationPoint
	for rows.Next() {
		var p models.CalibrationPoint
		if err := rows.Scan(&p.ID, &p.SpokeTypeID, &p.Reading, &p.Tension); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Spoke operations

func (s *Store) CreateSpoke(sp models.Spoke) (string, error) {
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`INSERT INTO spokes (id, spoke_type_id, length) VALUES (?, ?, ?)`, sp.ID, sp.SpokeTypeID, sp.Length)
	return sp.ID, err
}

func (s *Store) GetSpoke(id string) (*models.Spoke, error) {
	row := s.db.QueryRow(`SELECT id, spoke_type_id, length FROM spokes WHERE id = ?`, id)
	var sp models.Spoke
	err := row.Scan(&sp.ID, &sp.SpokeTypeID, &sp.Length)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *Store) GetAllSpokes() ([]models.Spoke, error) {
	rows, err := s.db.Query(`SELECT id, spoke_type_id, length FROM spokes ORDER BY length`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spokes []models.Spoke
	for rows.Next() {
		var sp models.Spoke
		if err := rows.Scan(&sp.ID, &sp.SpokeTypeID, &sp.Length); err != nil {
			return nil, err
		}
		spokes = append(spokes, sp)
	}
	return spokes, rows.Err()
}

func (s *Store) DeleteSpoke(id string) error {
	_, err := s.db.Exec(`DELETE FROM spokes WHERE id = ?`, id)
	return err
}

// SpokeTypeForSpoke resolves a spoke's type in one query; returns nil when
// either the spoke or its type is missing.
func (s *Store) SpokeTypeForSpoke(spokeID string) (*models.SpokeType, error) {
	row := s.db.QueryRow(`
		SELECT st.id, st.name, st.material, st.shape, st.dimensions, st.min_reading, st.max_reading, st.min_tension, st.max_tension
		FROM spokes sp
		JOIN spoke_types st ON st.id = sp.spoke_type_id
		WHERE sp.id = ?
	`, spokeID)
	var st models.SpokeType
	err := row.Scan(&st.ID, &st.Name, &st.Material, &st.Shape, &st.Dimensions, &st.MinReading, &st.MaxReading, &st.MinTension, &st.MaxTension)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Nipple operations

func (s *Store) CreateNipple(n models.Nipple) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`INSERT INTO nipples (id, material, diameter, length, color) VALUES (?, ?, ?, ?, ?)`, n.ID, n.Material, n.Diameter, n.Length, n.Color)
	return n.ID, err
}

func (s *Store) GetNipple(id string) (*models.Nipple, error) {
	row := s.db.QueryRow(`SELECT id, material, diameter, length, color FROM nipples WHERE id = ?`, id)
	var n models.Nipple
	err := row.Scan(&n.ID, &n.Material, &n.Diameter, &n.Length, &n.Color)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) GetAllNipples() ([]models.Nipple, error) {
	rows, err := s.db.Query(`SELECT id, material, diameter, length, color FROM nipples ORDER BY material, diameter`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nipples []models.Nipple
	for rows.Next() {
		var n models.Nipple
		if err := rows.Scan(&n.ID, &n.Material, &n.Diameter, &n.Length, &n.Color); err != nil {
			return nil, err
		}
		nipples = append(nipples, n)
	}
	return nipples, rows.Err()
}

func (s *Store) DeleteNipple(id string) error {
	_, err := s.db.Exec(`DELETE FROM nipples WHERE id = ?`, id)
	return err
}

func (s *Store) CountHubs() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM hubs`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count hubs: %w", err)
	}
	return n, nil
}

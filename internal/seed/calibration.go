// Package seed loads the calibration reference data and sample component
// fixtures into an empty database at startup.
package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/store"
)

// CalibrationData maps a spoke type name to its reading→tension table.
// This is the on-disk format of the calibration source file.
type CalibrationData map[string]map[string]float64

// LoadCalibration reads the calibration source from a local path or an
// http(s) URL. Remote fetches are retried with exponential backoff since
// the file may live on a flaky home NAS.
func LoadCalibration(source string) (CalibrationData, error) {
	var raw []byte
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		raw, err = fetchCalibration(source)
	} else {
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("load calibration source %s: %w", source, err)
	}

	var data CalibrationData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse calibration source %s: %w", source, err)
	}
	return data, nil
}

func fetchCalibration(url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	var body []byte
	operation := func() error {
		resp, err := client.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch calibration: status %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return body, nil
}

var dimensionsRe = regexp.MustCompile(`\d+\.?\d*\s*x?\s*\d*\.?\d*mm`)

// ParseSpokeTypeName extracts material, shape and dimensions from a spoke
// type name like "Steel Round 2.0mm" or "Aluminum Blade 1.4 x 2.6mm".
// Names that fit no known family degrade to "Unknown" rather than failing.
func ParseSpokeTypeName(name string) (material, shape, dimensions string) {
	switch {
	case strings.HasPrefix(name, "Steel"):
		material = "Steel"
	case strings.HasPrefix(name, "Aluminum"):
		material = "Aluminum"
	case strings.HasPrefix(name, "Titanium"):
		material = "Titanium"
	case strings.Contains(strings.ToLower(name), "carbon"):
		material = "Carbon"
	default:
		material = "Unknown"
	}

	switch {
	case strings.Contains(name, "Round"):
		shape = "Round"
	case strings.Contains(strings.ToLower(name), "blade"):
		shape = "Blade"
	default:
		shape = "Unknown"
	}

	if m := dimensionsRe.FindString(name); m != "" {
		dimensions = m
	} else {
		parts := strings.Fields(name)
		dimensions = parts[len(parts)-1]
	}
	return material, shape, dimensions
}

// SpokeTypes seeds the spoke_types and calibration_points tables from the
// calibration data. Idempotent: a populated table is left untouched.
// Returns the number of spoke types created.
func SpokeTypes(st *store.Store, data CalibrationData) (int, error) {
	count, err := st.CountSpokeTypes()
	if err != nil {
		return 0, fmt.Errorf("count spoke types: %w", err)
	}
	if count > 0 {
		log.Printf("seed: spoke types already populated, skipping")
		return 0, nil
	}

	created := 0
	for name, table := range data {
		points, err := parseTable(table)
		if err != nil {
			return created, fmt.Errorf("spoke type %q: %w", name, err)
		}
		if len(points) == 0 {
			log.Printf("seed: spoke type %q has no calibration points, skipping", name)
			continue
		}

		// Monotonicity is assumed by the converter, not enforced; a table
		// that dips is worth knowing about but not worth refusing.
		for i := 1; i < len(points); i++ {
			if points[i].Tension < points[i-1].Tension {
				log.Printf("seed: spoke type %q table is not monotonic at reading %v", name, points[i].Reading)
				break
			}
		}

		material, shape, dimensions := ParseSpokeTypeName(name)
		typeID, err := st.CreateSpokeType(models.SpokeType{
			Name:       name,
			Material:   material,
			Shape:      shape,
			Dimensions: dimensions,
			MinReading: points[0].Reading,
			MaxReading: points[len(points)-1].Reading,
			MinTension: points[0].Tension,
			MaxTension: points[len(points)-1].Tension,
		})
		if err != nil {
			return created, fmt.Errorf("create spoke type %q: %w", name, err)
		}

		for _, p := range points {
			p.SpokeTypeID = typeID
			if err := st.InsertCalibrationPoint(p); err != nil {
				return created, fmt.Errorf("insert calibration point %q/%v: %w", name, p.Reading, err)
			}
		}
		created++
		log.Printf("seed: spoke type %q (%d calibration points)", name, len(points))
	}
	return created, nil
}

func parseTable(table map[string]float64) ([]models.CalibrationPoint, error) {
	points := make([]models.CalibrationPoint, 0, len(table))
	for readingStr, tension := range table {
		reading, err := strconv.ParseFloat(readingStr, 64)
		if err != nil {
			return nil, fmt.Errorf("bad reading key %q: %w", readingStr, err)
		}
		points = append(points, models.CalibrationPoint{Reading: reading, Tension: tension})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Reading < points[j].Reading })
	return points, nil
}

package gps

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes the trajectory without a header. An upsampled trajectory
// is written as time,x,y,z rows starting at 0.0 and advancing by one sample
// period per row; a raw route is written as x,y,z rows.
func (t *Trajectory) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if t.timing != nil {
		period := 1 / t.timing.Frequency
		elapsed := 0.0
		for _, p := range t.Points {
			c := p.Cartesian()
			if err := writer.Write([]string{
				strconv.FormatFloat(elapsed, 'f', 1, 64),
				formatCoordinate(c.X),
				formatCoordinate(c.Y),
				formatCoordinate(c.Z),
			}); err != nil {
				return fmt.Errorf("failed to write motion row: %w", err)
			}
			elapsed += period
		}
	} else {
		for _, p := range t.Points {
			c := p.Cartesian()
			if err := writer.Write([]string{
				formatCoordinate(c.X),
				formatCoordinate(c.Y),
				formatCoordinate(c.Z),
			}); err != nil {
				return fmt.Errorf("failed to write route row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes the trajectory to path, creating parent directories as needed
func (t *Trajectory) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create motion file %s: %w", path, err)
	}

	if err := t.WriteCSV(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadMotionFile parses a time,x,y,z motion file
func ReadMotionFile(path string) ([]MotionSample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open motion file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var samples []MotionSample
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse motion file %s: %w", path, err)
		}
		if len(record) != 4 {
			return nil, fmt.Errorf("%s line %d: %w", path, line, ErrInvalidMotionRow)
		}

		var values [4]float64
		for i, field := range record {
			values[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, line, err)
			}
		}
		samples = append(samples, MotionSample{
			Time:           values[0],
			CartesianPoint: CartesianPoint{X: values[1], Y: values[2], Z: values[3]},
		})
	}
	return samples, nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

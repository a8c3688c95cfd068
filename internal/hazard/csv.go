package hazard

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV parses observations from a CSV stream with a header row containing
// at least lat, lon, and severity columns (any order, case-insensitive).
// Each row is validated; the first bad row aborts the read.
func ReadCSV(r io.Reader) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Wrap(ErrInvalidObservation, "csv: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	latIdx, lonIdx, sevIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "lat", "latitude":
			latIdx = i
		case "lon", "lng", "longitude":
			lonIdx = i
		case "severity":
			sevIdx = i
		}
	}
	if latIdx < 0 || lonIdx < 0 || sevIdx < 0 {
		return nil, eris.Wrap(ErrInvalidObservation, "csv: header must contain lat, lon, severity")
	}

	var out []Observation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read row %d", line+1)
		}
		line++

		max := latIdx
		if lonIdx > max {
			max = lonIdx
		}
		if sevIdx > max {
			max = sevIdx
		}
		if len(record) <= max {
			return nil, eris.Wrapf(ErrInvalidObservation, "csv: row %d has %d fields", line, len(record))
		}

		o, err := parseRow(record[latIdx], record[lonIdx], record[sevIdx], line)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func parseRow(lat, lon, sev string, line int) (Observation, error) {
	var o Observation
	var err error
	if o.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return o, eris.Wrapf(ErrInvalidObservation, "csv: row %d lat %q", line, lat)
	}
	if o.Lon, err = strconv.ParseFloat(strings.TrimSpace(lon), 64); err != nil {
		return o, eris.Wrapf(ErrInvalidObservation, "csv: row %d lon %q", line, lon)
	}
	if o.Severity, err = strconv.ParseFloat(strings.TrimSpace(sev), 64); err != nil {
		return o, eris.Wrapf(ErrInvalidObservation, "csv: row %d severity %q", line, sev)
	}
	if err := o.Validate(); err != nil {
		return o, eris.Wrapf(err, "csv: row %d", line)
	}
	return o, nil
}

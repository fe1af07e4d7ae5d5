package forcing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var header = []string{"precip", "et", "temp"}

// ReadCSV parses a series with a "precip,et" or "precip,et,temp" header, one row per
// day.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		return Series{}, fmt.Errorf("forcing: read header: %w", err)
	}
	cols := len(head)
	if cols < 2 || cols > 3 {
		return Series{}, fmt.Errorf("forcing: header %v: want precip,et[,temp]", head)
	}
	for i, name := range head {
		if !strings.EqualFold(strings.TrimSpace(name), header[i]) {
			return Series{}, fmt.Errorf("forcing: column %d is %q, want %q", i, name, header[i])
		}
	}

	var s Series
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("forcing: line %d: %w", line, err)
		}

		vals := make([]float64, cols)
		for i, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return Series{}, fmt.Errorf("forcing: line %d column %s: %w", line, header[i], err)
			}
			vals[i] = v
		}
		s.Precip = append(s.Precip, vals[0])
		s.ET = append(s.ET, vals[1])
		if cols == 3 {
			s.Temp = append(s.Temp, vals[2])
		}
	}

	if err := s.Validate(); err != nil {
		return Series{}, err
	}
	return s, nil
}

func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func WriteCSV(w io.Writer, s Series) error {
	cols := 2
	if s.HasTemp() {
		cols = 3
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header[:cols]); err != nil {
		return err
	}
	for i := range s.Precip {
		row := []string{
			strconv.FormatFloat(s.Precip[i], 'g', -1, 64),
			strconv.FormatFloat(s.ET[i], 'g', -1, 64),
		}
		if cols == 3 {
			row = append(row, strconv.FormatFloat(s.Temp[i], 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func SaveCSV(path string, s Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

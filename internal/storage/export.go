package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/soilsim/internal/sim"
)

var diagnosticsHeader = []string{"day", "newton", "bisection", "fallbacks", "saturated", "dry", "unconverged"}

type ExportData struct {
	Scheme      string             `json:"scheme"`
	Kernel      string             `json:"kernel"`
	Layout      string             `json:"layout"`
	Members     int                `json:"members"`
	Days        int                `json:"days"`
	Path        [][]float64        `json:"path"`
	Diagnostics sim.Diagnostics    `json:"diagnostics"`
	Snowpack    []float64          `json:"snowpack,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(result *sim.Result) ExportData {
	return ExportData{
		Scheme:      string(result.Scheme),
		Kernel:      result.Kernel,
		Layout:      result.Layout.String(),
		Members:     result.Members(),
		Days:        result.Days(),
		Path:        result.Path,
		Diagnostics: result.Diagnostics,
		Snowpack:    result.Snowpack,
		Metrics:     result.Metrics,
	}
}

func ExportJSON(w io.Writer, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(result))
}

// WriteMoistureCSV writes one row per day: the day index followed by the storage of
// every member.
func WriteMoistureCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"day"}
	for i := 0; i < result.Members(); i++ {
		header = append(header, fmt.Sprintf("m%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for d := 0; d < result.Days(); d++ {
		row[0] = strconv.Itoa(d)
		for i, member := range result.Path {
			row[i+1] = strconv.FormatFloat(member[d], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteDiagnosticsCSV(w io.Writer, days []sim.DayReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(diagnosticsHeader); err != nil {
		return err
	}
	for _, r := range days {
		row := []string{
			strconv.Itoa(r.Day),
			strconv.Itoa(r.Newton),
			strconv.Itoa(r.Bisection),
			strconv.Itoa(r.Fallbacks),
			strconv.Itoa(r.Saturated),
			strconv.Itoa(r.Dry),
			strconv.Itoa(r.Unconverged),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

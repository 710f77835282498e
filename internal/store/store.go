// Package store persists completed runs to disk: a metadata JSON per
// run, the recorded temperature series as CSV and one CSV per auxiliary
// series.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/config"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Timestamp   time.Time `json:"timestamp"`
	Steps       int       `json:"steps"`
	StepSize    float64   `json:"step_size"`
	RecordEvery int       `json:"record_every"`
	Resolution  float64   `json:"resolution"`
	Converged   bool      `json:"converged"`
	Samples     int       `json:"samples"`
	FinalGMT    float64   `json:"final_gmt"`
	Series      []string  `json:"series"`
}

// Save writes one run directory and returns its ID.
func (s *Store) Save(cfg *config.Config, res *ebm.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	recordEvery := cfg.Integration.RecordEvery
	if recordEvery == 0 {
		recordEvery = 1
	}
	meta := RunMetadata{
		ID:          runID,
		Name:        cfg.Name,
		Timestamp:   time.Now(),
		Steps:       res.Steps,
		StepSize:    cfg.Integration.StepSize,
		RecordEvery: recordEvery,
		Resolution:  cfg.Grid.Resolution,
		Converged:   res.Converged,
		Samples:     len(res.GlobalMean),
		Series:      make([]string, 0, len(res.Series)),
	}
	if n := len(res.GlobalMean); n > 0 {
		meta.FinalGMT = res.GlobalMean[n-1]
	}
	for name := range res.Series {
		meta.Series = append(meta.Series, name)
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeStates(filepath.Join(runDir, "states.csv"), res); err != nil {
		return "", err
	}
	for name, series := range res.Series {
		path := filepath.Join(runDir, "series_"+name+".csv")
		if err := writeSeries(path, series); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeStates(path string, res *ebm.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	bands := 0
	if len(res.Temp) > 0 {
		bands = len(res.Temp[0])
	}
	header := []string{"time", "gmt"}
	for i := 0; i < bands; i++ {
		header = append(header, fmt.Sprintf("t%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range res.Time {
		row := make([]string, 0, 2+bands)
		row = append(row,
			strconv.FormatFloat(res.Time[i], 'g', -1, 64),
			strconv.FormatFloat(res.GlobalMean[i], 'g', -1, 64))
		for _, v := range res.Temp[i] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeSeries(path string, series []ebm.Field) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for i, field := range series {
		row := make([]string, 0, 1+len(field))
		row = append(row, strconv.Itoa(i))
		for _, v := range field {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns the metadata of every stored run.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads the recorded time, global-mean and zonal temperature
// series of a run.
func (s *Store) LoadStates(runID string) (times, gmt []float64, temps [][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil, nil
	}

	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		g, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		temp := make([]float64, 0, len(record)-2)
		for _, field := range record[2:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, err
			}
			temp = append(temp, v)
		}
		times = append(times, t)
		gmt = append(gmt, g)
		temps = append(temps, temp)
	}
	return times, gmt, temps, nil
}

// LoadSeries reads one auxiliary series of a run.
func (s *Store) LoadSeries(runID, name string) ([][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "series_"+name+".csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([][]float64, 0, len(records))
	for _, record := range records {
		field := make([]float64, 0, len(record)-1)
		for _, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, err
			}
			field = append(field, v)
		}
		out = append(out, field)
	}
	return out, nil
}

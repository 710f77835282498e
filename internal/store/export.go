package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/config"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
)

type ExportData struct {
	Name        string                 `json:"name"`
	StepSize    float64                `json:"step_size"`
	RecordEvery int                    `json:"record_every"`
	Resolution  float64                `json:"resolution"`
	Steps       int                    `json:"steps"`
	Converged   bool                   `json:"converged"`
	Times       []float64              `json:"times"`
	GlobalMean  []float64              `json:"global_mean"`
	Temperature [][]float64            `json:"temperature"`
	Series      map[string][][]float64 `json:"series,omitempty"`
}

func exportData(cfg *config.Config, res *ebm.Result) ExportData {
	recordEvery := cfg.Integration.RecordEvery
	if recordEvery == 0 {
		recordEvery = 1
	}
	data := ExportData{
		Name:        cfg.Name,
		StepSize:    cfg.Integration.StepSize,
		RecordEvery: recordEvery,
		Resolution:  cfg.Grid.Resolution,
		Steps:       res.Steps,
		Converged:   res.Converged,
		Times:       res.Time,
		GlobalMean:  res.GlobalMean,
		Temperature: make([][]float64, len(res.Temp)),
	}
	for i, field := range res.Temp {
		data.Temperature[i] = field
	}
	if len(res.Series) > 0 {
		data.Series = make(map[string][][]float64, len(res.Series))
		for name, series := range res.Series {
			rows := make([][]float64, len(series))
			for i, field := range series {
				rows[i] = field
			}
			data.Series[name] = rows
		}
	}
	return data
}

// ExportJSON writes a run as a single indented JSON document.
func ExportJSON(w io.Writer, cfg *config.Config, res *ebm.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(cfg, res))
}

// ExportJSONFile is ExportJSON to a file path.
func ExportJSONFile(path string, cfg *config.Config, res *ebm.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExportJSON(f, cfg, res)
}

package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/tearsim/internal/dynamo"
)

type ExportData struct {
	Run     *RunMetadata       `json:"run"`
	Columns []string           `json:"columns"`
	Frames  [][]float64        `json:"frames"`
	Metrics map[string]float64 `json:"metrics"`
	Final   *dynamo.Snapshot   `json:"final,omitempty"`
}

func newExportData(meta *RunMetadata, frames []dynamo.Stats, final *dynamo.Snapshot) ExportData {
	data := ExportData{
		Run:     meta,
		Columns: dynamo.StatsColumns,
		Frames:  make([][]float64, len(frames)),
		Final:   final,
	}
	if meta != nil {
		data.Metrics = meta.Metrics
	}
	for i, f := range frames {
		data.Frames[i] = f.Values()
	}
	return data
}

// ExportJSON writes a run as a single JSON document to w.
func ExportJSON(w io.Writer, meta *RunMetadata, frames []dynamo.Stats, final *dynamo.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, frames, final))
}

// ExportJSONFile is ExportJSON to a file path.
func ExportJSONFile(path string, meta *RunMetadata, frames []dynamo.Stats, final *dynamo.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, frames, final)
}

// ExportCSVFile writes frames to a CSV file at path.
func ExportCSVFile(path string, frames []dynamo.Stats) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteStats(file, frames)
}

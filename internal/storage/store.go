package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	positionsFile = "positions.csv"
	sceneFile     = "scene.yaml"
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
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	FPS       float64            `json:"fps"`
	Substeps  int                `json:"substeps"`
	Frames    int                `json:"frames"`
	Cols      int                `json:"cols"`
	Rows      int                `json:"rows"`
	Params    cloth.Params       `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes one run directory: metadata, the scene that produced it, the
// metric series and the final positions.
func (s *Store) Save(scene *config.Scene, result *sim.Result) (string, error) {
	name := scene.Name
	if name == "" {
		name = "scene"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.Unix())
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, runID)); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", name, now.Unix(), i)
	}
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scene:     name,
		Timestamp: now,
		FPS:       scene.Sim.FPS,
		Substeps:  scene.Sim.Substeps,
		Frames:    result.Frames,
		Cols:      scene.Cloth.NumWidthPoints,
		Rows:      scene.Cloth.NumHeightPoints,
		Params:    scene.Params,
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, sceneFile), scene); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := writePositions(filepath.Join(runDir, positionsFile), result.Final); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SeriesNames returns the metric names of a result in column order.
func SeriesNames(result *sim.Result) []string {
	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := SeriesNames(result)
	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}
	for i, t := range result.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, name := range names {
			val := 0.0
			if i < len(result.Series[name]) {
				val = result.Series[name][i]
			}
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writePositions(path string, positions []mgl64.Vec3) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"index", "x", "y", "z"}); err != nil {
		return err
	}
	for i, p := range positions {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.X(), 'g', -1, 64),
			strconv.FormatFloat(p.Y(), 'g', -1, 64),
			strconv.FormatFloat(p.Z(), 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadScene(runID string) (*config.Scene, error) {
	return config.Load(filepath.Join(s.baseDir, runID, sceneFile))
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadSeries reads back the per-frame times and metric series of a run.
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return []float64{}, map[string][]float64{}, nil
	}

	header := records[0]
	times := make([]float64, 0, len(records)-1)
	series := make(map[string][]float64, len(header)-1)
	for _, name := range header[1:] {
		series[name] = make([]float64, 0, len(records)-1)
	}

	for _, record := range records[1:] {
		if len(record) != len(header) {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for j, name := range header[1:] {
			val, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				val = 0
			}
			series[name] = append(series[name], val)
		}
	}
	return times, series, nil
}

func (s *Store) LoadPositions(runID string) ([]mgl64.Vec3, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}

	out := make([]mgl64.Vec3, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) != 4 {
			continue
		}
		var p mgl64.Vec3
		for k := 0; k < 3; k++ {
			if p[k], err = strconv.ParseFloat(record[k+1], 64); err != nil {
				return nil, fmt.Errorf("positions row %d: %w", i, err)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

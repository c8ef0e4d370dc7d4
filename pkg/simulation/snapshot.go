package simulation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SnapshotSink receives sampled frames from a Driver run.
type SnapshotSink interface {
	OnStart(info RunInfo) error
	OnSnapshot(frame Frame) error
	OnEnd(final Frame) error
	Close() error
}

// RunInfo describes a run before the first frame.
type RunInfo struct {
	RunID         string   `json:"run_id"`
	Bodies        []string `json:"bodies"`
	Speed         float64  `json:"speed"`
	FrameInterval float64  `json:"frame_interval_s"`
	SnapshotEvery int      `json:"snapshot_every"`
}

type jsonlSnapshot struct {
	RunID       string       `json:"run_id"`
	Frame       int          `json:"frame"`
	ElapsedDays float64      `json:"elapsed_days"`
	JulianDate  float64      `json:"julian_date"`
	Date        string       `json:"date"`
	Bodies      []BodySample `json:"bodies"`
}

// JSONLSnapshotWriter writes one JSON object per sampled frame.
type JSONLSnapshotWriter struct {
	closer io.Closer
	bw     *bufio.Writer
	runID  string
	yUp    bool
}

// NewJSONLSnapshotWriter creates the file at path.
func NewJSONLSnapshotWriter(path string, yUp bool) (*JSONLSnapshotWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	w := NewJSONLSnapshotStream(f, yUp)
	w.closer = f
	return w, nil
}

// NewJSONLSnapshotStream writes snapshots to an arbitrary writer. Close does not close w.
func NewJSONLSnapshotStream(w io.Writer, yUp bool) *JSONLSnapshotWriter {
	return &JSONLSnapshotWriter{bw: bufio.NewWriter(w), yUp: yUp}
}

func (w *JSONLSnapshotWriter) OnStart(info RunInfo) error {
	w.runID = info.RunID
	return nil
}

func (w *JSONLSnapshotWriter) OnSnapshot(frame Frame) error {
	bodies := frame.Bodies
	if w.yUp {
		bodies = make([]BodySample, len(frame.Bodies))
		for i, b := range frame.Bodies {
			bodies[i] = BodySample{Name: b.Name, Position: b.Position.SceneYUp()}
		}
	}
	rec := jsonlSnapshot{
		RunID:       w.runID,
		Frame:       frame.Index,
		ElapsedDays: frame.ElapsedDays,
		JulianDate:  frame.JulianDate,
		Date:        frame.Date.String(),
		Bodies:      bodies,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.bw.Write(b); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

func (w *JSONLSnapshotWriter) OnEnd(final Frame) error { return w.bw.Flush() }

// Close flushes buffered records and closes the file it created. Calling Close again is a no-op.
func (w *JSONLSnapshotWriter) Close() error {
	err := w.bw.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}

// Package jobstore is the file-backed persistence layer for pipeline
// jobs: one JSON record per job id, a dead-letter subtree for
// permanently failed jobs, and a shared metrics counter file.
package jobstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ulbdigitize/afs-digitizer/constants"
	"github.com/ulbdigitize/afs-digitizer/internal/common"
)

// JobRecord is the persisted state of one job. Attempts only ever
// grows; records are mutated in place via idempotent Upsert.
type JobRecord struct {
	JobID    string              `json:"job_id"`
	Status   constants.JobStatus `json:"status"`
	Attempts int                 `json:"attempts"`
	Payload  map[string]any      `json:"payload"`
	Error    string              `json:"error,omitempty"`
}

// Store is keyed by job id, so concurrent jobs with distinct ids never
// contend for the same record. The metrics counters are the one shared
// read-modify-write resource and are serialized behind the mutex.
type Store struct {
	jobsDir     string
	dlqDir      string
	metricsFile string

	mu sync.Mutex // guards the metrics file
}

// NewStore creates the store layout under root.
func NewStore(root string) (*Store, error) {
	s := &Store{
		jobsDir:     filepath.Join(root, "jobs"),
		dlqDir:      filepath.Join(root, "dlq"),
		metricsFile: filepath.Join(root, "metrics.json"),
	}
	for _, dir := range []string{s.jobsDir, s.dlqDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, common.WrapError(err, "create job store layout")
		}
	}
	return s, nil
}

// Upsert idempotently overwrites the record keyed by its job id.
func (s *Store) Upsert(record JobRecord) error {
	return writeJSON(filepath.Join(s.jobsDir, record.JobID+".json"), record)
}

// Get returns the current record, or common.ErrNotFound.
func (s *Store) Get(jobID string) (*JobRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.jobsDir, jobID+".json"))
	if os.IsNotExist(err) {
		return nil, common.NewAppError(common.CodeStoreError, fmt.Sprintf("job %s", jobID), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "read job record")
	}
	var record JobRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, common.WrapError(err, "decode job record")
	}
	return &record, nil
}

// MoveToDLQ writes a durable, uniquely named snapshot of a failed
// record into the dead-letter subtree and bumps the dlq counter.
func (s *Store) MoveToDLQ(record JobRecord) error {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	path := filepath.Join(s.dlqDir, fmt.Sprintf("%s_%s.json", stamp, record.JobID))
	if err := writeJSON(path, record); err != nil {
		return err
	}
	return s.BumpMetric(constants.MetricDLQ, 1)
}

// BumpMetric adds amount to one shared counter. Counters are lazily
// initialized to zero on first use.
func (s *Store) BumpMetric(key string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics, err := s.readMetricsLocked()
	if err != nil {
		return err
	}
	metrics[key] += amount
	return writeJSON(s.metricsFile, metrics)
}

// ReadMetrics returns the current counter set.
func (s *Store) ReadMetrics() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readMetricsLocked()
}

func (s *Store) readMetricsLocked() (map[string]int, error) {
	metrics := map[string]int{
		constants.MetricSubmitted: 0,
		constants.MetricSucceeded: 0,
		constants.MetricFailed:    0,
		constants.MetricRetried:   0,
		constants.MetricDLQ:       0,
	}
	data, err := os.ReadFile(s.metricsFile)
	if os.IsNotExist(err) {
		return metrics, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "read metrics")
	}
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, common.WrapError(err, "decode metrics")
	}
	return metrics, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return common.WrapError(err, "encode json")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return common.WrapError(err, "write json")
	}
	return nil
}

package syncer

import (
	"sync"
	"time"

	"github.com/turbolytics/curator/internal/catalog"
)

// Counters is the live view of a run, safe to read from the status
// server while the run executes.
type Counters struct {
	SyncID             string    `json:"sync_id"`
	State              State     `json:"state"`
	StartedAt          time.Time `json:"started_at,omitempty"`
	ProjectsSeen       int       `json:"projects_seen"`
	ProjectsFailed     int       `json:"projects_failed"`
	RepositoriesSynced int       `json:"repositories_synced"`
	EntitiesPublished  int       `json:"entities_published"`
	PublishFailures    int       `json:"publish_failures"`
}

// Stats guards the counters. The run itself is single-threaded; the
// lock exists solely for the read-only status endpoint.
type Stats struct {
	mu sync.RWMutex
	c  Counters
}

func NewStats(syncID string) *Stats {
	return &Stats{
		c: Counters{SyncID: syncID, State: StateCreated},
	}
}

func (s *Stats) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.State = state
}

func (s *Stats) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.StartedAt = time.Now().UTC()
}

func (s *Stats) SetProjectsSeen(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.ProjectsSeen = n
}

func (s *Stats) IncProjectsFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.ProjectsFailed++
}

func (s *Stats) AddRepositoriesSynced(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.RepositoriesSynced += n
}

func (s *Stats) IncEntitiesPublished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.EntitiesPublished++
}

func (s *Stats) IncPublishFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.PublishFailures++
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Counters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c
}

// Report freezes the counters into the run report.
func (s *Stats) Report(source string, start, end time.Time, completed bool) *catalog.Report {
	c := s.Snapshot()
	return &catalog.Report{
		SyncID:             c.SyncID,
		StartTime:          start,
		EndTime:            end,
		Source:             source,
		ProjectsSeen:       c.ProjectsSeen,
		ProjectsFailed:     c.ProjectsFailed,
		RepositoriesSynced: c.RepositoriesSynced,
		EntitiesPublished:  c.EntitiesPublished,
		PublishFailures:    c.PublishFailures,
		Completed:          completed,
	}
}

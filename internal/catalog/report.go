package catalog

import "time"

/*
The report is a record of what a sync run processed. It is a primitive
for verifying, inventorying and auditing catalog synchronizations.
*/

// Report summarizes one completed sync run.
type Report struct {
	SyncID             string    `json:"sync_id"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	Source             string    `json:"source"`
	ProjectsSeen       int       `json:"projects_seen"`
	ProjectsFailed     int       `json:"projects_failed"`
	RepositoriesSynced int       `json:"repositories_synced"`
	EntitiesPublished  int       `json:"entities_published"`
	PublishFailures    int       `json:"publish_failures"`
	Completed          bool      `json:"completed"`
}

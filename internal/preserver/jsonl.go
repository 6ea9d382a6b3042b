package preserver

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/catalog"
)

type JSONLOption func(*JSONL)

func WithLogger(logger *zap.Logger) JSONLOption {
	return func(j *JSONL) {
		j.logger = logger
	}
}

// JSONL buffers snapshot records as one JSON line each, per blueprint,
// and flushes them through the repository when the run finalizes.
type JSONL struct {
	repository internal.Repository
	logger     *zap.Logger
	buffers    map[string]*bytes.Buffer
}

func NewJSONL(repository internal.Repository, opts ...JSONLOption) *JSONL {
	j := &JSONL{
		repository: repository,
		logger:     zap.NewNop(),
		buffers:    make(map[string]*bytes.Buffer),
	}

	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *JSONL) Preserve(ctx context.Context, record *internal.Record) error {
	buf, ok := j.buffers[record.Blueprint]
	if !ok {
		buf = &bytes.Buffer{}
		j.buffers[record.Blueprint] = buf
	}

	return json.NewEncoder(buf).Encode(record)
}

// Finalize writes the buffered blueprint files plus the run report.
func (j *JSONL) Finalize(ctx context.Context, report *catalog.Report) error {
	for blueprint, buf := range j.buffers {
		if err := j.repository.Write(ctx, blueprint+".jsonl", buf); err != nil {
			return err
		}
	}

	if report != nil {
		bs, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := j.repository.Write(ctx, "report.json", bytes.NewReader(bs)); err != nil {
			return err
		}
	}

	return j.repository.Flush()
}

package parquet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/catalog"
)

type Option func(*Preserver)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Preserver) {
		p.logger = logger
	}
}

// WithBlueprints tells the preserver which blueprint ids carry project
// and repository entities. Entities under any other blueprint are
// skipped.
func WithBlueprints(project, repository string) Option {
	return func(p *Preserver) {
		p.projectBlueprint = project
		p.repositoryBlueprint = repository
	}
}

// Preserver accumulates snapshot records as flat parquet rows and
// writes one file per blueprint when the run finalizes.
type Preserver struct {
	repository internal.Repository
	logger     *zap.Logger

	projectBlueprint    string
	repositoryBlueprint string

	projects     []*projectRow
	repositories []*repositoryRow
}

func New(repository internal.Repository, opts ...Option) *Preserver {
	p := &Preserver{
		repository:          repository,
		logger:              zap.NewNop(),
		projectBlueprint:    "project",
		repositoryBlueprint: "repository",
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Preserver) Preserve(ctx context.Context, record *internal.Record) error {
	switch record.Blueprint {
	case p.projectBlueprint:
		p.projects = append(p.projects, newProjectRow(record.Entity))
	case p.repositoryBlueprint:
		p.repositories = append(p.repositories, newRepositoryRow(record.Entity))
	default:
		p.logger.Warn("no parquet schema for blueprint, skipping record",
			zap.String("blueprint", record.Blueprint),
			zap.String("identifier", record.Entity.Identifier))
	}
	return nil
}

func (p *Preserver) Finalize(ctx context.Context, report *catalog.Report) error {
	if err := writeRows(ctx, p.repository, "projects.parquet", p.projects); err != nil {
		return fmt.Errorf("writing projects.parquet: %w", err)
	}
	if err := writeRows(ctx, p.repository, "repositories.parquet", p.repositories); err != nil {
		return fmt.Errorf("writing repositories.parquet: %w", err)
	}

	if report != nil {
		bs, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := p.repository.Write(ctx, "report.json", bytes.NewReader(bs)); err != nil {
			return err
		}
	}

	return p.repository.Flush()
}

func writeRows[T any](ctx context.Context, repository internal.Repository, name string, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}

	var buf bytes.Buffer
	fw := writerfile.NewWriterFile(&buf)

	pw, err := writer.NewParquetWriter(fw, new(T), 1)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return err
		}
	}

	if err := pw.WriteStop(); err != nil {
		return err
	}
	if err := fw.Close(); err != nil {
		return err
	}

	return repository.Write(ctx, name, &buf)
}

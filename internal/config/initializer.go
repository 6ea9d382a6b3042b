package config

import (
	"fmt"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/bitbucket"
	"github.com/turbolytics/curator/internal/catalog"
	"github.com/turbolytics/curator/internal/local"
	"github.com/turbolytics/curator/internal/parquet"
	"github.com/turbolytics/curator/internal/preserver"
	"github.com/turbolytics/curator/internal/s3"
	"github.com/turbolytics/curator/internal/syncer"
)

// InitializeSyncer wires a Syncer from config.
func InitializeSyncer(c *Curator, logger *zap.Logger) (*syncer.Syncer, error) {
	sid := uuid.Must(uuid.NewUUID())

	sourceOpts := []bitbucket.Option{
		bitbucket.WithLogger(logger.Named("bitbucket")),
		bitbucket.WithPageSize(c.Sync.Source.PageSize),
	}
	if c.Sync.Source.RequestsPerSecond > 0 {
		sourceOpts = append(sourceOpts, bitbucket.WithRequestsPerSecond(c.Sync.Source.RequestsPerSecond))
	}
	if c.Sync.Source.MaxRetries > 0 {
		sourceOpts = append(sourceOpts, bitbucket.WithMaxRetries(uint64(c.Sync.Source.MaxRetries)))
	}

	source := bitbucket.New(
		c.Sync.Source.Host,
		c.Sync.Source.Username,
		c.Sync.Source.Password,
		sourceOpts...,
	)

	publisher := catalog.NewPublisher(
		c.Sync.Catalog.URL,
		c.Sync.Catalog.ClientID,
		c.Sync.Catalog.ClientSecret,
		catalog.WithLogger(logger.Named("catalog")),
	)

	opts := []syncer.Option{
		syncer.WithID(sid),
		syncer.WithLogger(logger.Named("syncer")),
		syncer.WithSource(source),
		syncer.WithPublisher(publisher),
		syncer.WithName(c.Sync.Name),
		syncer.WithBlueprints(
			c.Sync.Catalog.ProjectBlueprint,
			c.Sync.Catalog.RepositoryBlueprint,
		),
	}

	if c.Sync.Snapshot != nil {
		p, err := initializePreserver(c, sid.String(), logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, syncer.WithPreserver(p))
	}

	return syncer.New(opts...), nil
}

func initializePreserver(c *Curator, syncID string, logger *zap.Logger) (syncer.Preserver, error) {
	if c.Sync.Snapshot.Format == "stdout" {
		return &preserver.Stdout{}, nil
	}

	var repository internal.Repository
	switch c.Sync.Snapshot.Repository.Type {
	case "local":
		repository = local.New(
			c.Sync.Snapshot.Repository.Local.Path,
			local.WithPrefix(syncID),
			local.WithLogger(logger.Named("local")),
		)
	case "s3":
		repository = s3.New(
			s3.WithLogger(logger.Named("s3")),
			s3.WithRegion(c.Sync.Snapshot.Repository.S3.Region),
			s3.WithBucket(c.Sync.Snapshot.Repository.S3.Bucket),
			s3.WithEndpoint(c.Sync.Snapshot.Repository.S3.Endpoint),
			s3.WithPrefix(
				path.Join(
					c.Sync.Snapshot.Repository.S3.Prefix,
					syncID,
				),
			),
			s3.WithForcePathStyle(c.Sync.Snapshot.Repository.S3.ForcePathStyle),
		)
	default:
		return nil, fmt.Errorf("unknown snapshot repository type: %s", c.Sync.Snapshot.Repository.Type)
	}

	switch c.Sync.Snapshot.Format {
	case "jsonl":
		return preserver.NewJSONL(
			repository,
			preserver.WithLogger(logger.Named("preserver")),
		), nil
	case "parquet":
		return parquet.New(
			repository,
			parquet.WithLogger(logger.Named("parquet")),
			parquet.WithBlueprints(
				c.Sync.Catalog.ProjectBlueprint,
				c.Sync.Catalog.RepositoryBlueprint,
			),
		), nil
	}

	return nil, fmt.Errorf("unknown snapshot format: %s", c.Sync.Snapshot.Format)
}

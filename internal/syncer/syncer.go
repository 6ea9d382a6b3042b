package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/bitbucket"
	"github.com/turbolytics/curator/internal/catalog"
)

// Source is the upstream provider of projects, repositories and README
// content.
type Source interface {
	Projects(ctx context.Context) ([]bitbucket.Project, error)
	Repositories(ctx context.Context, projectKey string) ([]bitbucket.Repository, error)
	Readme(ctx context.Context, projectKey, slug string) (string, error)
}

// Publisher delivers normalized entities to the catalog.
type Publisher interface {
	Authenticate(ctx context.Context) error
	Upsert(ctx context.Context, blueprint string, entity catalog.Entity) error
}

// Preserver records published entities for the run snapshot.
type Preserver interface {
	Preserve(ctx context.Context, record *internal.Record) error
	Finalize(ctx context.Context, report *catalog.Report) error
}

type Option func(*Syncer)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Syncer) {
		s.logger = logger
	}
}

func WithSource(source Source) Option {
	return func(s *Syncer) {
		s.source = source
	}
}

func WithPublisher(publisher Publisher) Option {
	return func(s *Syncer) {
		s.publisher = publisher
	}
}

func WithPreserver(preserver Preserver) Option {
	return func(s *Syncer) {
		s.preserver = preserver
	}
}

func WithName(name string) Option {
	return func(s *Syncer) {
		s.name = name
	}
}

// WithID pins the run id, which also names the snapshot prefix.
func WithID(id uuid.UUID) Option {
	return func(s *Syncer) {
		s.id = id
	}
}

func WithBlueprints(project, repository string) Option {
	return func(s *Syncer) {
		s.projectBlueprint = project
		s.repositoryBlueprint = repository
	}
}

// Syncer runs one full synchronization: every project, then every
// repository of every project together with its assembled README.
// Execution is strictly sequential; upsert ordering is observable
// downstream because of merge semantics, so nothing here may be
// parallelized or reordered.
type Syncer struct {
	id        uuid.UUID
	name      string
	source    Source
	publisher Publisher
	preserver Preserver
	logger    *zap.Logger

	projectBlueprint    string
	repositoryBlueprint string

	state *FSM
	stats *Stats
}

func New(opts ...Option) *Syncer {
	s := &Syncer{
		id:                  uuid.Must(uuid.NewUUID()),
		logger:              zap.NewNop(),
		projectBlueprint:    "project",
		repositoryBlueprint: "repository",
	}

	for _, opt := range opts {
		opt(s)
	}

	s.state = NewFSM(StateCreated)
	s.stats = NewStats(s.id.String())
	return s
}

// ID returns the run id.
func (s *Syncer) ID() string {
	return s.id.String()
}

// Run performs the sync. Only two failures abort the run: the catalog
// refusing to issue a token, and the top-level project list being
// unreachable. Everything narrower is logged and skipped at its own
// boundary (one project, one publish).
func (s *Syncer) Run(ctx context.Context) (*catalog.Report, error) {
	start := time.Now().UTC()
	s.stats.Start()

	if err := s.transition(StateAuthenticating); err != nil {
		return nil, err
	}

	if err := s.publisher.Authenticate(ctx); err != nil {
		s.transition(StateError)
		return nil, fmt.Errorf("authenticating against catalog: %w", err)
	}

	if err := s.transition(StateSyncing); err != nil {
		return nil, err
	}

	projects, err := s.source.Projects(ctx)
	if err != nil {
		s.transition(StateError)
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	s.logger.Info("fetched projects", zap.Int("count", len(projects)))
	s.stats.SetProjectsSeen(len(projects))

	for _, project := range projects {
		s.publish(ctx, s.projectBlueprint, catalog.MapProject(project))
	}

	for _, project := range projects {
		entities, err := s.walkProject(ctx, project)
		if err != nil {
			s.logger.Error("skipping project",
				zap.String("project", project.Key),
				zap.Error(err))
			s.stats.IncProjectsFailed()
			continue
		}

		for _, entity := range entities {
			s.publish(ctx, s.repositoryBlueprint, entity)
		}
		s.stats.AddRepositoriesSynced(len(entities))
	}

	s.transition(StateCompleted)

	report := s.stats.Report(s.name, start, time.Now().UTC(), true)

	if s.preserver != nil {
		if err := s.preserver.Finalize(ctx, report); err != nil {
			s.logger.Error("finalizing snapshot", zap.Error(err))
		}
	}

	return report, nil
}

// walkProject maps every repository of one project. Any failure inside
// discards the project's partial results; the caller decides whether
// to continue with the next project.
func (s *Syncer) walkProject(ctx context.Context, project bitbucket.Project) ([]catalog.Entity, error) {
	repos, err := s.source.Repositories(ctx, project.Key)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	entities := make([]catalog.Entity, 0, len(repos))
	for _, repo := range repos {
		readme, err := s.source.Readme(ctx, project.Key, repo.Slug)
		if err != nil {
			return nil, fmt.Errorf("reading %s README: %w", repo.Slug, err)
		}
		entities = append(entities, catalog.MapRepository(repo, readme))
	}

	return entities, nil
}

// transition advances the run state; the stats copy is what the status
// server reads.
func (s *Syncer) transition(to State) error {
	if err := s.state.Transition(to); err != nil {
		return err
	}
	s.stats.SetState(to)
	return nil
}

func (s *Syncer) publish(ctx context.Context, blueprint string, entity catalog.Entity) {
	if err := s.publisher.Upsert(ctx, blueprint, entity); err != nil {
		s.logger.Error("publish failed",
			zap.String("blueprint", blueprint),
			zap.String("identifier", entity.Identifier),
			zap.Error(err))
		s.stats.IncPublishFailures()
		return
	}

	s.stats.IncEntitiesPublished()

	if s.preserver != nil {
		record := internal.NewRecord(s.id.String(), blueprint, entity)
		if err := s.preserver.Preserve(ctx, record); err != nil {
			s.logger.Error("preserving snapshot record",
				zap.String("identifier", entity.Identifier),
				zap.Error(err))
		}
	}
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Logger struct {
	Level string `yaml:"level"`
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

type Source struct {
	Host              string  `yaml:"host"`
	Username          string  `yaml:"username"`
	Password          string  `yaml:"password"`
	PageSize          int     `yaml:"page_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	MaxRetries        int     `yaml:"max_retries"`
}

type Catalog struct {
	URL                 string `yaml:"url"`
	ClientID            string `yaml:"client_id"`
	ClientSecret        string `yaml:"client_secret"`
	ProjectBlueprint    string `yaml:"project_blueprint"`
	RepositoryBlueprint string `yaml:"repository_blueprint"`
}

type LocalConfig struct {
	Path string `yaml:"path"`
}

type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type SnapshotRepository struct {
	Type  string      `yaml:"type"`
	Local LocalConfig `yaml:"local"`
	S3    S3Config    `yaml:"s3"`
}

type Snapshot struct {
	Format     string             `yaml:"format"`
	Repository SnapshotRepository `yaml:"repository"`
}

type Sync struct {
	Name       string    `yaml:"name"`
	StatusAddr string    `yaml:"status_addr"`
	Source     Source    `yaml:"source"`
	Catalog    Catalog   `yaml:"catalog"`
	Snapshot   *Snapshot `yaml:"snapshot"`
}

type Curator struct {
	Global Global `yaml:"global"`
	Sync   Sync   `yaml:"sync"`
}

func NewCuratorFromFile(fpath string) (*Curator, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	var curator Curator
	if err := yaml.Unmarshal(bs, &curator); err != nil {
		return nil, err
	}

	applyEnv(&curator)
	applyDefaults(&curator)

	if err := curator.Validate(); err != nil {
		return nil, err
	}

	return &curator, nil
}

// applyEnv overlays credentials from the environment. Env always wins
// over the file so secrets never need to live on disk.
func applyEnv(c *Curator) {
	v := viper.New()
	v.SetEnvPrefix("CURATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("source.username"); s != "" {
		c.Sync.Source.Username = s
	}
	if s := v.GetString("source.password"); s != "" {
		c.Sync.Source.Password = s
	}
	if s := v.GetString("catalog.client.id"); s != "" {
		c.Sync.Catalog.ClientID = s
	}
	if s := v.GetString("catalog.client.secret"); s != "" {
		c.Sync.Catalog.ClientSecret = s
	}
}

func applyDefaults(c *Curator) {
	if c.Global.Logger.Level == "" {
		c.Global.Logger.Level = "info"
	}
	if c.Sync.Source.PageSize == 0 {
		c.Sync.Source.PageSize = 25
	}
	if c.Sync.Catalog.ProjectBlueprint == "" {
		c.Sync.Catalog.ProjectBlueprint = "project"
	}
	if c.Sync.Catalog.RepositoryBlueprint == "" {
		c.Sync.Catalog.RepositoryBlueprint = "repository"
	}
}

func (c *Curator) Validate() error {
	if c.Sync.Source.Host == "" {
		return fmt.Errorf("sync.source.host is required")
	}
	if c.Sync.Catalog.URL == "" {
		return fmt.Errorf("sync.catalog.url is required")
	}
	if c.Sync.Snapshot != nil {
		switch c.Sync.Snapshot.Format {
		case "jsonl", "parquet", "stdout":
		default:
			return fmt.Errorf("unknown snapshot format: %q", c.Sync.Snapshot.Format)
		}
	}
	return nil
}

// Package config reads service settings from the environment, an optional
// .env file and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreUpstream = "upstream"
	StoreMemory   = "memory"
)

// Blob drivers.
const (
	BlobLocal = "local"
	BlobS3    = "s3"
)

// Config holds every setting of the service.
type Config struct {
	Addr        string `env:"VERTEX_ADDR,default=:8080"`
	Store       string `env:"VERTEX_STORE,default=sqlite"`
	DBPath      string `env:"VERTEX_DB,default=vertex.sqlite3"`
	PostgresURL string `env:"VERTEX_POSTGRES_URL"`
	UpstreamURL string `env:"VERTEX_UPSTREAM_URL,default=http://goatedcodoer:8080/api"`

	ReadTimeout  time.Duration `env:"VERTEX_READ_TIMEOUT,default=15s"`
	WriteTimeout time.Duration `env:"VERTEX_WRITE_TIMEOUT,default=20s"`

	CORSOrigins string `env:"VERTEX_CORS_ORIGINS"`
	LogPath     string `env:"VERTEX_LOG"`
	Debug       bool   `env:"VERTEX_DEBUG"`

	CacheSize int           `env:"VERTEX_CACHE_SIZE,default=1024"`
	CacheTTL  time.Duration `env:"VERTEX_CACHE_TTL,default=5m"`

	AliasFile string `env:"VERTEX_ALIASES"`
	UsersFile string `env:"VERTEX_FALLBACK_USERS"`

	Blob      string `env:"VERTEX_BLOB,default=local"`
	UploadDir string `env:"VERTEX_UPLOAD_DIR,default=uploads"`
	PublicURL string `env:"VERTEX_PUBLIC_URL,default=/uploads"`
	MaxUpload int64  `env:"VERTEX_MAX_UPLOAD,default=20971520"`

	S3Region    string        `env:"VERTEX_S3_REGION,default=eu-central-1"`
	S3Bucket    string        `env:"VERTEX_S3_BUCKET"`
	S3Prefix    string        `env:"VERTEX_S3_PREFIX"`
	S3Endpoint  string        `env:"VERTEX_S3_ENDPOINT"`
	S3AccessID  string        `env:"VERTEX_S3_ACCESS_ID"`
	S3AccessKey string        `env:"VERTEX_S3_ACCESS_KEY"`
	S3URLExpiry time.Duration `env:"VERTEX_S3_URL_EXPIRY,default=168h"`
}

// Origins splits CORSOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// FromEnv loads the given .env files, or ./.env when none are named, and
// decodes VERTEX_* variables. Missing .env files are not an error.
func FromEnv(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	c := &Config{}
	if err := envdecode.Decode(c); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	return c, nil
}

// FlagSet returns a flag set whose flags default to c's values and write
// back into c. Every flag has a short and a long name.
func (c *Config) FlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)

	str := func(p *string, short, long string) {
		fs.StringVar(p, long, *p, "")
		if short != "" {
			fs.StringVar(p, short, *p, "")
		}
	}
	str(&c.Addr, "a", "addr")
	str(&c.Store, "s", "store")
	str(&c.DBPath, "d", "db")
	str(&c.PostgresURL, "p", "postgres")
	str(&c.UpstreamURL, "u", "upstream")
	str(&c.LogPath, "l", "log")
	str(&c.AliasFile, "", "aliases")
	str(&c.UsersFile, "", "users")
	str(&c.CORSOrigins, "", "cors")
	str(&c.Blob, "b", "blob")
	str(&c.UploadDir, "", "uploads")

	fs.BoolVar(&c.Debug, "debug", c.Debug, "")
	fs.DurationVar(&c.ReadTimeout, "read-timeout", c.ReadTimeout, "")
	fs.DurationVar(&c.WriteTimeout, "write-timeout", c.WriteTimeout, "")
	return fs
}

// Usage is the help text for the flags of FlagSet.
const Usage = `Flags:
  -a, -addr <host:port>        listen address (default: :8080)
  -s, -store <backend>         sqlite, postgres, upstream or memory (default: sqlite)
  -d, -db <path>               SQLite database path (default: vertex.sqlite3)
  -p, -postgres <url>          Postgres connection URL
  -u, -upstream <url>          asset API base URL (default: http://goatedcodoer:8080/api)
  -l, -log <path>              log file path (default: stdout/stderr only)
  -b, -blob <driver>           local or s3 (default: local)
      -uploads <dir>           upload directory for the local driver (default: uploads)
      -aliases <path>          YAML file with extra field aliases
      -users <path>            YAML file with users served when the user service is down
      -cors <origins>          comma separated allowed origins (default: any)
      -debug                   also log debug messages
      -read-timeout <dur>      store read timeout (default: 15s)
      -write-timeout <dur>     store write timeout (default: 20s)
  -h, -help                    show this help and exit

Every flag can also be set as a VERTEX_* environment variable or in .env.
`

// Validate checks that the chosen backends have what they need.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return errors.New("sqlite store needs a database path")
		}
	case StorePostgres:
		if c.PostgresURL == "" {
			return errors.New("postgres store needs VERTEX_POSTGRES_URL or -postgres")
		}
	case StoreUpstream:
		if c.UpstreamURL == "" {
			return errors.New("upstream store needs VERTEX_UPSTREAM_URL or -upstream")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	switch c.Blob {
	case BlobLocal:
		if c.UploadDir == "" {
			return errors.New("local blob store needs an upload directory")
		}
	case BlobS3:
		if c.S3Bucket == "" {
			return errors.New("s3 blob store needs VERTEX_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob)
	}

	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

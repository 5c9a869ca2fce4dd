/*
Package config loads the settings of the bigml command: a YAML file, then
BIGML_* environment variables (optionally read from a .env file) on top
of it, checked with struct validation.
*/
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendDir      = "dir"
	BackendRedis    = "redis"
	BackendBolt     = "bolt"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

/*
Config holds every setting of the command.
*/
type Config struct {
	Store Store `yaml:"store"`
	Log   Log   `yaml:"log"`
	Batch Batch `yaml:"batch"`
}

/*
Store selects and configures the document store resource ids are
resolved against.
*/
type Store struct {
	Backend string `yaml:"backend" validate:"required,oneof=memory dir redis bolt sqlite postgres mongo"`
	// Dir is the directory of the dir backend
	Dir string `yaml:"dir" validate:"required_if=Backend dir"`
	// Path is the database file of the bolt and sqlite backends
	Path string `yaml:"path" validate:"required_if=Backend bolt,required_if=Backend sqlite"`
	// URL is the connection string of the postgres and mongo backends
	URL   string `yaml:"url" validate:"required_if=Backend postgres,required_if=Backend mongo"`
	Redis Redis  `yaml:"redis"`
}

// Redis holds the settings of the redis backend
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix"`
}

// Log holds logging settings
type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Batch holds the settings of batch scoring
type Batch struct {
	Workers int `yaml:"workers" validate:"gte=1,lte=256"`
}

var validate = validator.New()

/*
Default returns the configuration used when no file or variable says
otherwise: an in-memory store, info logging and 4 batch workers.
*/
func Default() *Config {
	return &Config{
		Store: Store{
			Backend: BackendMemory,
			Redis:   Redis{Addr: "localhost:6379", Prefix: "bigml"},
		},
		Log:   Log{Level: "info"},
		Batch: Batch{Workers: 4},
	}
}

/*
Load takes the path to a YAML configuration file, which may be empty to
skip it, and returns the resulting configuration. Variables in a .env
file of the working directory are loaded into the environment first
when the file exists; environment variables override file settings.
*/
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env file: %v", err)
	}
	cfg := Default()
	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %v", path, err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %v", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"BIGML_STORE_BACKEND":  &c.Store.Backend,
		"BIGML_STORE_DIR":      &c.Store.Dir,
		"BIGML_STORE_PATH":     &c.Store.Path,
		"BIGML_STORE_URL":      &c.Store.URL,
		"BIGML_REDIS_ADDR":     &c.Store.Redis.Addr,
		"BIGML_REDIS_PASSWORD": &c.Store.Redis.Password,
		"BIGML_REDIS_PREFIX":   &c.Store.Redis.Prefix,
		"BIGML_LOG_LEVEL":      &c.Log.Level,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	ints := map[string]*int{
		"BIGML_REDIS_DB":      &c.Store.Redis.DB,
		"BIGML_BATCH_WORKERS": &c.Batch.Workers,
	}
	for name, dst := range ints {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %v", name, err)
		}
		*dst = n
	}
	return nil
}

package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type Config struct {
	Env            string            `yaml:"env" env:"ENV" env-default:"local"`
	Jaeger         JaegerConfig      `yaml:"jaeger"`
	ResultCacheTTL time.Duration     `yaml:"result_cache_ttl" env:"RESULT_CACHE_TTL" env-default:"15m"`
	Log            LogConfig         `yaml:"log"`
	HTTP           HTTPConfig        `yaml:"http"`
	GRPC           GRPCConfig        `yaml:"grpc"`
	DB             DBConfig          `yaml:"db"`
	Redis          RedisConfig       `yaml:"redis"`
	Schedules      SchedulesConfig   `yaml:"schedules"`
	Planner        PlannerConfig     `yaml:"planner"`
	Cities         map[string]string `yaml:"cities"`
}

type JaegerConfig struct {
	Enabled     bool    `yaml:"enabled" env:"JAEGER_ENABLED" env-default:"true"`
	Collector   string  `yaml:"collector" env:"JAEGER" env-default:"jaeger"`
	SampleRatio float64 `yaml:"sample_ratio" env:"JAEGER_SAMPLE_RATIO" env-default:"1"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"5001"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"2m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

func (c HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type GRPCConfig struct {
	Host    string        `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port    int           `yaml:"port" env:"GRPC_PORT" env-default:"44044"`
	Timeout time.Duration `yaml:"timeout" env:"GRPC_TIMEOUT" env-default:"2m"`
}

type DBConfig struct {
	DSN      string `yaml:"dsn" env:"DB_DSN"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"require"`
	Migrate  bool   `yaml:"migrate" env:"DB_MIGRATE"`
}

func (c DBConfig) DatabaseURL() string {
	if c.DSN != "" {
		return c.DSN
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	q := u.Query()
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()

	return u.String()
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"true"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type SchedulesConfig struct {
	Source        string `yaml:"source" env:"SCHEDULES_SOURCE" env-default:"csv"`
	BaseDir       string `yaml:"base_dir" env:"SCHEDULES_BASE_DIR" env-default:"challenge_data/schedules"`
	EmissionsFile string `yaml:"emissions_file" env:"EMISSIONS_FILE" env-default:"challenge_data/emissions.csv"`
}

type PlannerConfig struct {
	TopK                  int           `yaml:"top_k" env:"PLANNER_TOP_K" env-default:"5"`
	MaxCombinations       int           `yaml:"max_combinations" env:"PLANNER_MAX_COMBINATIONS" env-default:"390625"`
	Workers               int           `yaml:"workers" env:"PLANNER_WORKERS" env-default:"8"`
	ResultCount           int           `yaml:"result_count" env:"PLANNER_RESULT_COUNT" env-default:"3"`
	MinLayover            time.Duration `yaml:"min_layover" env:"PLANNER_MIN_LAYOVER" env-default:"90m"`
	MaxLayover            time.Duration `yaml:"max_layover" env:"PLANNER_MAX_LAYOVER" env-default:"8h"`
	DefaultWeightCO2      float64       `yaml:"default_weight_co2" env:"PLANNER_DEFAULT_WEIGHT_CO2" env-default:"0.5"`
	DefaultWeightAvgVsStd float64       `yaml:"default_weight_avg_vs_std" env:"PLANNER_DEFAULT_WEIGHT_AVG_VS_STD" env-default:"1.0"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exists: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read the config: " + err.Error())
	}

	if cfg.Schedules.Source != SourceCSV && cfg.Schedules.Source != SourcePostgres {
		panic("unknown schedules source: " + cfg.Schedules.Source)
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

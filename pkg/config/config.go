package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        int    `yaml:"port"`
	LogLevel    string `yaml:"logLevel"`
	LogFormat   string `yaml:"logFormat"`
	Env         string `yaml:"env"`
	StaticDir   string `yaml:"staticDir"`
	CORSOrigins string `yaml:"corsOrigins"`

	// Workers bootstraps the registry at startup. Accepts a JSON array of
	// {"label":...,"url":...} objects or a comma-separated list of URLs.
	Workers string `yaml:"workers"`

	WorkerTimeoutSeconds int `yaml:"workerTimeoutSeconds"`

	HealthCheckEnabled          bool `yaml:"healthCheckEnabled"`
	HealthCheckIntervalSeconds  int  `yaml:"healthCheckIntervalSeconds"`
	HealthCheckFailureThreshold int  `yaml:"healthCheckFailureThreshold"`

	TracingEnabled      bool    `yaml:"tracingEnabled"`
	TracingOTLPEndpoint string  `yaml:"tracingOtlpEndpoint"`
	TracingOTLPInsecure bool    `yaml:"tracingOtlpInsecure"`
	TracingSampleRatio  float64 `yaml:"tracingSampleRatio"`

	// Worker-process settings (cmd/worker); ignored by the control plane.
	WorkerPort      int    `yaml:"workerPort"`
	WorkerLabel     string `yaml:"workerLabel"`
	WorkerOutputDir string `yaml:"workerOutputDir"`
	PublicURL       string `yaml:"publicUrl"`
	RegisterURL     string `yaml:"registerUrl"`
}

func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	applyEnv(&c)
	applyDefaults(&c)
	log.Printf("Config: {Port:%d Env:%s WorkerTimeout:%ds HealthCheck:%v}\n",
		c.Port, c.Env, c.WorkerTimeoutSeconds, c.HealthCheckEnabled)
	return &c, nil
}

// LoadConfigOptional behaves like LoadConfig but tolerates an empty or missing
// path, falling back to environment variables and defaults.
func LoadConfigOptional(filePath string) (*Config, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		c := &Config{}
		applyEnv(c)
		applyDefaults(c)
		return c, nil
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c := &Config{}
		applyEnv(c)
		applyDefaults(c)
		return c, nil
	}
	return LoadConfig(filePath)
}

func applyEnv(c *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		c.Workers = v
	}
	if v := os.Getenv("WORKER_TIMEOUT_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WorkerTimeoutSeconds = n
		}
	}
	if v := os.Getenv("HEALTH_CHECK_ENABLED"); v != "" {
		c.HealthCheckEnabled = parseBool(v)
	}
	if v := os.Getenv("HEALTH_CHECK_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HealthCheckIntervalSeconds = n
		}
	}
	if v := os.Getenv("HEALTH_CHECK_FAILURE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HealthCheckFailureThreshold = n
		}
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		c.TracingEnabled = parseBool(v)
	}
	if v := os.Getenv("TRACING_OTLP_ENDPOINT"); v != "" {
		c.TracingOTLPEndpoint = v
	}
	if v := os.Getenv("TRACING_OTLP_INSECURE"); v != "" {
		c.TracingOTLPInsecure = parseBool(v)
	}
	if v := os.Getenv("TRACING_SAMPLE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.TracingSampleRatio = f
		}
	}
	if v := os.Getenv("WORKER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.WorkerPort = p
		}
	}
	if v := os.Getenv("WORKER_LABEL"); v != "" {
		c.WorkerLabel = v
	}
	if v := os.Getenv("WORKER_OUTPUT_DIR"); v != "" {
		c.WorkerOutputDir = v
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		c.PublicURL = v
	}
	if v := os.Getenv("API_REGISTER_URL"); v != "" {
		c.RegisterURL = v
	}
}

func applyDefaults(c *Config) {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.StaticDir == "" {
		c.StaticDir = "web"
	}
	if c.CORSOrigins == "" {
		c.CORSOrigins = "*"
	}
	if c.WorkerTimeoutSeconds <= 0 {
		c.WorkerTimeoutSeconds = 60
	}
	if c.HealthCheckIntervalSeconds <= 0 {
		c.HealthCheckIntervalSeconds = 30
	}
	if c.HealthCheckFailureThreshold <= 0 {
		c.HealthCheckFailureThreshold = 3
	}
	if c.TracingSampleRatio <= 0 || c.TracingSampleRatio > 1 {
		c.TracingSampleRatio = 1
	}
	if c.WorkerPort == 0 {
		c.WorkerPort = 28080
	}
	if c.WorkerLabel == "" {
		c.WorkerLabel = "worker"
	}
	if c.WorkerOutputDir == "" {
		c.WorkerOutputDir = "/tmp/taskfan-output"
	}
}

func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port %d out of range", c.Port))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logLevel %q not one of debug|info|warn|error", c.LogLevel))
	}
	if c.WorkerTimeoutSeconds <= 0 {
		errs = append(errs, "workerTimeoutSeconds must be > 0")
	}
	for name, raw := range map[string]string{"publicUrl": c.PublicURL, "registerUrl": c.RegisterURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, name+" must be a valid http(s) URL")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func parseBool(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "true" || v == "1" || v == "yes" || v == "y" || v == "on"
}

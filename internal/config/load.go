package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. NOTES_SERVER_PORT for server.port.
const EnvPrefix = "NOTES"

// Loader reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a Loader. If configFile is empty, a file named
// config.yaml is looked up in the working directory and /etc/notes;
// a missing file is not an error in that case.
func NewLoader(configFile string) *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names kept from earlier deployments of the service.
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DB_PATH")
	_ = v.BindEnv("llm.gemini_api_key", EnvPrefix+"_LLM_GEMINI_API_KEY", "GEMINI_API_KEY")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/notes")
	}

	return &Loader{v: v, configFile: configFile}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.url", "notes.db")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("enrichment.provider", "auto")
	v.SetDefault("enrichment.timeout", 30*time.Second)
	v.SetDefault("enrichment.summary_max_chars", 300)
	v.SetDefault("enrichment.cache_size", 1024)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("task.worker_count", 4)
	v.SetDefault("task.queue_size", 1000)
	v.SetDefault("task.stuck_task_age_minutes", 30)
}

// Load reads, unmarshals and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// WatchLogLevel calls onChange with the new server.log_level every time the
// config file is written. It returns false when no config file is in use.
func (l *Loader) WatchLogLevel(onChange func(level string)) bool {
	if l.v.ConfigFileUsed() == "" {
		return false
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.v.GetString("server.log_level"))
	})
	l.v.WatchConfig()
	return true
}

// Load reads the configuration using the default file search paths.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

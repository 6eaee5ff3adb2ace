package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/hourgate/internal/env"
	"github.com/loykin/hourgate/internal/logger"
	"github.com/loykin/hourgate/internal/process"
	"github.com/loykin/hourgate/internal/scheduler"
	"github.com/loykin/hourgate/internal/window"
)

// EnvPrefix is the prefix of environment overrides, e.g. HOURGATE_SCHEDULE_CLOSE.
const EnvPrefix = "HOURGATE"

// FileConfig represents the top-level TOML structure.
type FileConfig struct {
	Schedule  ScheduleConfig `toml:"schedule" mapstructure:"schedule"`
	Processes []ProcConfig   `toml:"processes" mapstructure:"processes"`
	Log       LogConfig      `toml:"log" mapstructure:"log"`
	Server    ServerConfig   `toml:"server" mapstructure:"server"`
	History   HistoryConfig  `toml:"history" mapstructure:"history"`
	// Env defines variables usable as ${NAME} or %NAME% in paths, detect
	// commands, the log file and the history DSN. OS variables are also visible.
	Env map[string]string `toml:"env" mapstructure:"env"`
}

type ScheduleConfig struct {
	Close          string        `toml:"close" mapstructure:"close"`
	Open           string        `toml:"open" mapstructure:"open"`
	Tick           time.Duration `toml:"tick" mapstructure:"tick"`
	BaseDir        string        `toml:"base_dir" mapstructure:"base_dir"`
	CommandTimeout time.Duration `toml:"command_timeout" mapstructure:"command_timeout"`
}

type ProcConfig struct {
	Name       string `toml:"name" mapstructure:"name"`
	Executable string `toml:"executable" mapstructure:"executable"`
	Path       string `toml:"path" mapstructure:"path"`
	Detect     string `toml:"detect" mapstructure:"detect"`
}

type LogConfig struct {
	File        string `toml:"file" mapstructure:"file"`
	Level       string `toml:"level" mapstructure:"level"`
	Console     bool   `toml:"console" mapstructure:"console"`
	MaxSizeMB   int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups  int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays  int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress    bool   `toml:"compress" mapstructure:"compress"`
	EventSource string `toml:"event_source" mapstructure:"event_source"`
}

type ServerConfig struct {
	Listen string `toml:"listen" mapstructure:"listen"`
}

type HistoryConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// Config is the validated runtime configuration.
type Config struct {
	Scheduler    scheduler.Config
	Window       window.Window
	Log          logger.Config
	BaseDir      string
	ServerListen string
	HistoryDSN   string
}

// DefaultProcesses is the process list used when the configuration names none:
// four ClickOnce synchronizers installed under the user's Start Menu.
func DefaultProcesses() []ProcConfig {
	names := []string{
		"BaselinekrSync",
		"BaselinekrSync2",
		"Synchronizator Optima-WMS PRODUKCJA",
		"Synchronizator Optima-WMS IG PRODUKCJA",
	}
	out := make([]ProcConfig, 0, len(names))
	for _, n := range names {
		out = append(out, ProcConfig{Name: n, Path: filepath.Join(n, n+".appref-ms")})
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schedule.close", "19:05")
	v.SetDefault("schedule.open", "19:10")
	v.SetDefault("schedule.tick", scheduler.DefaultPeriod)
	v.SetDefault("schedule.base_dir", "")
	v.SetDefault("schedule.command_timeout", time.Duration(0))
	v.SetDefault("log.file", "hourgate.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
	v.SetDefault("log.max_size_mb", logger.DefaultMaxSizeMB)
	v.SetDefault("log.max_backups", logger.DefaultMaxBackups)
	v.SetDefault("log.max_age_days", logger.DefaultMaxAgeDays)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.event_source", logger.DefaultEventSource)
	v.SetDefault("server.listen", "")
	v.SetDefault("history.dsn", "")
}

// Load reads the TOML file at path (optional), applies defaults and
// HOURGATE_* environment overrides, then validates the result. Time-of-day
// errors surface here, before any scheduler is built, alongside the
// otherwise valid Config (see Build).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(filepath.Clean(path))
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fc.Build()
}

// Build validates fc and resolves process paths against the base directory.
// A malformed close or open time is reported after everything else is
// built: the returned Config is usable and the error wraps
// window.ErrInvalidTimeOfDay, so a service host can start with its
// scheduler unarmed. Any other error returns a nil Config.
func (fc FileConfig) Build() (*Config, error) {
	var err error
	win, winErr := window.Parse(fc.Schedule.Close, fc.Schedule.Open)
	if winErr != nil {
		winErr = fmt.Errorf("schedule: %w", winErr)
	}
	if fc.Schedule.Tick <= 0 {
		return nil, errors.New("schedule: tick must be > 0")
	}
	if fc.Schedule.CommandTimeout < 0 {
		return nil, errors.New("schedule: command_timeout must be >= 0")
	}

	// [env] values may reference OS variables but not each other
	osVars, vars := env.New(), env.New()
	for k, v := range fc.Env {
		vars.Set(k, osVars.Expand(v))
	}

	baseDir := vars.Expand(fc.Schedule.BaseDir)
	if baseDir == "" {
		baseDir, err = DefaultBaseDir()
		if err != nil {
			return nil, fmt.Errorf("resolve base dir: %w", err)
		}
	}

	procs := fc.Processes
	if len(procs) == 0 {
		procs = DefaultProcesses()
	}
	seen := make(map[string]struct{}, len(procs))
	specs := make([]process.Spec, 0, len(procs))
	for _, pc := range procs {
		s := process.Spec{
			Name:       strings.TrimSpace(pc.Name),
			Executable: strings.TrimSpace(pc.Executable),
			LaunchPath: vars.Expand(pc.Path),
			Detect:     vars.Expand(pc.Detect),
		}.Resolve(baseDir)
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate process name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
		specs = append(specs, s)
	}

	return &Config{
		Scheduler: scheduler.Config{
			Close:          fc.Schedule.Close,
			Open:           fc.Schedule.Open,
			Period:         fc.Schedule.Tick,
			CommandTimeout: fc.Schedule.CommandTimeout,
			Processes:      specs,
		},
		Window: win,
		Log: logger.Config{
			File:        vars.Expand(fc.Log.File),
			Level:       fc.Log.Level,
			Console:     fc.Log.Console,
			MaxSizeMB:   fc.Log.MaxSizeMB,
			MaxBackups:  fc.Log.MaxBackups,
			MaxAgeDays:  fc.Log.MaxAgeDays,
			Compress:    fc.Log.Compress,
			EventSource: fc.Log.EventSource,
		},
		BaseDir:      baseDir,
		ServerListen: fc.Server.Listen,
		HistoryDSN:   vars.Expand(fc.History.DSN),
	}, winErr
}

// DefaultBaseDir is the per-user directory relative launch paths resolve
// against: the Start Menu on Windows, the home directory elsewhere.
func DefaultBaseDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(appData, "Microsoft", "Windows", "Start Menu"), nil
	}
	return os.UserHomeDir()
}

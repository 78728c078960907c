package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Config holds the settings of the alarm daemon and its clients.
type Config struct {
	// ListenAddress is the gRPC control address of alarmd; clients dial it.
	ListenAddress string `yaml:"listen_addr"`
	// SoundDirectory is scanned once at startup for tones.
	SoundDirectory string `yaml:"sound_dir"`
	// Timeout bounds every client RPC.
	Timeout time.Duration `yaml:"timeout"`
	// PollInterval is the scheduler cadence; it may not exceed one second.
	PollInterval time.Duration `yaml:"poll_interval"`
	// MaxRingDuration stops a tone nobody silenced.
	MaxRingDuration time.Duration `yaml:"max_ring"`
	// SnoozeDuration is how far ahead a snoozed alarm is rescheduled.
	SnoozeDuration time.Duration `yaml:"snooze"`
	// Location is the IANA zone alarm times are read in; empty means local.
	Location string `yaml:"location,omitempty"`
	// MetricsAddress enables the Prometheus endpoint when set.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// NATS configures the optional event relay.
	NATS NATS `yaml:"nats,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// NATS holds the event relay settings.
type NATS struct {
	// URL of the NATS server; empty disables the relay.
	URL string `yaml:"url,omitempty"`
	// Subject prefix events are published under.
	Subject string `yaml:"subject,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultListenAddress is where alarmd listens unless configured otherwise.
	DefaultListenAddress = "127.0.0.1:50061"

	// DefaultSoundDirectory is the tone directory relative to the working directory.
	DefaultSoundDirectory = "sounds"

	// DefaultTimeout is the default duration for client RPCs.
	DefaultTimeout = 5 * time.Second

	// DefaultPollInterval is the scheduler cadence.
	DefaultPollInterval = time.Second

	// DefaultMaxRingDuration is the safety bound on a ringing tone.
	DefaultMaxRingDuration = 300 * time.Second

	// DefaultSnoozeDuration is the snooze offset.
	DefaultSnoozeDuration = 5 * time.Minute

	// DefaultNATSSubject prefixes relayed events.
	DefaultNATSSubject = "alarmclock.events"

	// DefaultFilePermissions is the permission of saved settings.
	DefaultFilePermissions = 0o600

	// maxPollInterval keeps second-resolution alarms from being skipped.
	maxPollInterval = time.Second

	// maxSnoozeDuration keeps snoozed alarms within the same day cycle.
	maxSnoozeDuration = 24 * time.Hour
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPollIntervalTooLong is returned when alarms could be skipped.
	errPollIntervalTooLong = errors.New("poll interval must not exceed 1s")
	// errSnoozeOutOfRange is returned for snooze offsets of a day or more.
	errSnoozeOutOfRange = errors.New("snooze must be shorter than 24h")
	// errUnknownLogLevel is returned for unparsable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns validated settings with every default applied.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from path and validates it. A missing file at the
// default path yields Default, so alarmd runs without any setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultConfigFilename {
			logger.Logger().Debugw("Settings file not found, using defaults", "path", path)

			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path after validating it.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the formatting of every field.
//
//nolint:cyclop // A flat list of field checks reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.SoundDirectory == "" {
		cfg.SoundDirectory = DefaultSoundDirectory
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.PollInterval > maxPollInterval {
		return fmt.Errorf("%w: got %s", errPollIntervalTooLong, cfg.PollInterval)
	}

	if cfg.MaxRingDuration <= 0 {
		cfg.MaxRingDuration = DefaultMaxRingDuration
	}

	if cfg.SnoozeDuration <= 0 {
		cfg.SnoozeDuration = DefaultSnoozeDuration
	}

	if cfg.SnoozeDuration >= maxSnoozeDuration {
		return fmt.Errorf("%w: got %s", errSnoozeOutOfRange, cfg.SnoozeDuration)
	}

	if _, err := cfg.TimeLocation(); err != nil {
		return err
	}

	if cfg.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
	}

	if cfg.NATS.URL != "" && cfg.NATS.Subject == "" {
		cfg.NATS.Subject = DefaultNATSSubject
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	return nil
}

// TimeLocation resolves Location, defaulting to the local zone.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location: %w", err)
	}

	return loc, nil
}

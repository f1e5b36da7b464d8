package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"portalctl/internal/unify"
)

// Env overrides applied after the file is read.
const (
	EnvAPIBaseURL = "PORTAL_API_BASE_URL"
	EnvOutDir     = "PORTALCTL_OUT_DIR"
)

// Config is the portalctl.yaml shape.
type Config struct {
	OutDir        string   `yaml:"out_dir"`
	Base          string   `yaml:"base"`
	PayloadID     string   `yaml:"payload_id"`
	PayloadType   string   `yaml:"payload_type"`
	MountID       string   `yaml:"mount_id"`
	Exclude       []string `yaml:"exclude"`
	WatchDebounce string   `yaml:"watch_debounce"`
	ServeAddr     string   `yaml:"serve_addr"`
	APIBaseURL    string   `yaml:"api_base_url"`
	LoginPath     string   `yaml:"login_path"`
}

// Default returns the built-in configuration used when no file exists.
func Default() Config {
	return Config{
		OutDir:        "out",
		Base:          unify.DefaultBase,
		PayloadID:     unify.DefaultPayloadID,
		PayloadType:   unify.DefaultPayloadType,
		MountID:       unify.DefaultMountID,
		Exclude:       []string{},
		WatchDebounce: "500ms",
		ServeAddr:     "127.0.0.1:8788",
		APIBaseURL:    "http://localhost:3500",
		LoginPath:     "/v1/login/patient",
	}
}

// Load reads the config at path. A missing file yields Default() and no
// error; empty fields in the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		var fromFile Config
		if err := yaml.Unmarshal(b, &fromFile); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg = merge(cfg, fromFile)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutDir)); v != "" {
		cfg.OutDir = v
	}
	if _, err := time.ParseDuration(cfg.WatchDebounce); err != nil {
		return cfg, fmt.Errorf("watch_debounce %q: %w", cfg.WatchDebounce, err)
	}
	return cfg, nil
}

func merge(dst, src Config) Config {
	set := func(d *string, s string) {
		if strings.TrimSpace(s) != "" {
			*d = strings.TrimSpace(s)
		}
	}
	set(&dst.OutDir, src.OutDir)
	set(&dst.Base, src.Base)
	set(&dst.PayloadID, src.PayloadID)
	set(&dst.PayloadType, src.PayloadType)
	set(&dst.MountID, src.MountID)
	set(&dst.WatchDebounce, src.WatchDebounce)
	set(&dst.ServeAddr, src.ServeAddr)
	set(&dst.APIBaseURL, src.APIBaseURL)
	set(&dst.LoginPath, src.LoginPath)
	if len(src.Exclude) > 0 {
		dst.Exclude = append([]string(nil), src.Exclude...)
	}
	return dst
}

// Debounce returns WatchDebounce as a duration, 500ms when unparsable.
func (c Config) Debounce() time.Duration {
	d, err := time.ParseDuration(c.WatchDebounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// UnifyOptions maps the config onto the unifier's options.
func (c Config) UnifyOptions() unify.Options {
	return unify.Options{
		Base:        c.Base,
		PayloadID:   c.PayloadID,
		PayloadType: c.PayloadType,
		MountID:     c.MountID,
		Exclude:     c.Exclude,
	}
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

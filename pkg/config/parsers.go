package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Set    map[string]bool
}

// ParseConfigFlags parses command-line flags and returns them as a Flags struct.
func ParseConfigFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, Set: setFlags}
}

// ParseConfigFile resolves the config path and loads the YAML file. A
// missing file is not fatal; env and flags can carry a full config.
func ParseConfigFile(flags Flags) (*Config, bool, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// ApplyEnvOverrides layers BURROW_* environment variables onto cfg.
// Env always wins over the file; flags win over env.
func ApplyEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("BURROW_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("BURROW_DB_PATH"); v != "" {
		envUsed = true
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("BURROW_JWT_SECRET"); v != "" {
		envUsed = true
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("BURROW_REDIS_URL"); v != "" {
		envUsed = true
		cfg.Auth.RedisURL = v
	}
	if v := os.Getenv("BURROW_ACCESS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			envUsed = true
			cfg.Auth.AccessTTL = Duration(d)
		}
	}
	if v := os.Getenv("BURROW_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BURROW_LOG_FORMAT"); v != "" {
		envUsed = true
		cfg.Logging.Format = v
	}
	if v := os.Getenv("BURROW_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("BURROW_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("BURROW_FANOUT_QUEUE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Fanout.QueueCapacity = n
		}
	}
	if v := os.Getenv("BURROW_JANITOR_ENABLED"); v != "" {
		envUsed = true
		cfg.Janitor.Enabled = parseBool(v)
	}
	if v := os.Getenv("BURROW_JANITOR_CRON"); v != "" {
		envUsed = true
		cfg.Janitor.Cron = v
	}
	if v := os.Getenv("BURROW_BLOB_ENABLED"); v != "" {
		envUsed = true
		cfg.Blob.Enabled = parseBool(v)
	}
	if v := os.Getenv("BURROW_BLOB_ENDPOINT"); v != "" {
		envUsed = true
		cfg.Blob.Endpoint = v
	}
	if v := os.Getenv("BURROW_BLOB_ACCESS_KEY"); v != "" {
		envUsed = true
		cfg.Blob.AccessKey = v
	}
	if v := os.Getenv("BURROW_BLOB_SECRET_KEY"); v != "" {
		envUsed = true
		cfg.Blob.SecretKey = v
	}
	if v := os.Getenv("BURROW_BLOB_BUCKET"); v != "" {
		envUsed = true
		cfg.Blob.Bucket = v
	}
	if v := os.Getenv("BURROW_BLOB_USE_SSL"); v != "" {
		envUsed = true
		cfg.Blob.UseSSL = parseBool(v)
	}
	if v := os.Getenv("BURROW_BLOB_MAX_UPLOAD"); v != "" {
		if b, err := humanize.ParseBytes(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Blob.MaxUpload = SizeBytes(b)
		}
	}
	if c := os.Getenv("BURROW_TLS_CERT"); c != "" {
		envUsed = true
		cfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("BURROW_TLS_KEY"); k != "" {
		envUsed = true
		cfg.Server.TLS.KeyFile = k
	}
	return envUsed
}

// LoadEffective merges file, env and flags into the effective config.
// Precedence: flags over env over file.
func LoadEffective(flags Flags) (*Config, error) {
	cfg, fileExists, err := ParseConfigFile(flags)
	if err != nil {
		return nil, err
	}
	if flags.Set["config"] && !fileExists {
		return nil, fmt.Errorf("config file %s not found", flags.Config)
	}
	ApplyEnvOverrides(cfg)
	if flags.Set["addr"] {
		if h, p, err := net.SplitHostPort(flags.Addr); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = flags.Addr
		}
	}
	if flags.Set["db"] {
		cfg.Server.DBPath = flags.DB
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

package config

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalid is wrapped by every validation error returned from Load.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// Server
	Port        string
	Host        string
	CORSOrigins []string

	// External IP lookup
	LookupURL   string
	IPInfoToken string
	MMDBPath    string

	// Upper bound for each outbound call made while serving a request.
	ProbeTimeout time.Duration

	Cache CacheConfig
	DB    DBConfig
}

// CacheConfig describes the optional Redis probe target.
type CacheConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a cache host was configured.
func (c CacheConfig) Enabled() bool { return c.Host != "" }

// Addr returns host:port.
func (c CacheConfig) Addr() string { return c.Host + ":" + c.Port }

// DBConfig describes the optional MySQL probe target.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string

	// TLS is nil for plaintext connections. It is assembled once from the
	// base64 DB_SSL_* variables.
	TLS *tls.Config
}

// Enabled reports whether a database host was configured.
func (c DBConfig) Enabled() bool { return c.Host != "" }

// Addr returns host:port.
func (c DBConfig) Addr() string { return c.Host + ":" + c.Port }

// Load reads the process environment, seeded from .env when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:        envOrDefault("PORT", "80"),
		Host:        os.Getenv("HOST"),
		CORSOrigins: envListOrDefault("CORS_ORIGINS", []string{"http://localhost:3000", "*"}),

		LookupURL:   envOrDefault("IP_LOOKUP_URL", "https://ipinfo.io"),
		IPInfoToken: os.Getenv("IPINFO_TOKEN"),
		MMDBPath:    os.Getenv("MMDB_PATH"),

		Cache: CacheConfig{
			Host:     os.Getenv("CACHE_HOST"),
			Port:     envOrDefault("CACHE_PORT", "6379"),
			Password: os.Getenv("CACHE_PASSWORD"),
		},
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     envOrDefault("DB_PORT", "3306"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}

	timeout, err := envDurationOrDefault("PROBE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.ProbeTimeout = timeout

	for name, port := range map[string]string{
		"PORT":       cfg.Port,
		"CACHE_PORT": cfg.Cache.Port,
		"DB_PORT":    cfg.DB.Port,
	} {
		if err := validatePort(name, port); err != nil {
			return nil, err
		}
	}

	tlsCfg, err := loadDBTLS(cfg.DB.Host)
	if err != nil {
		return nil, err
	}
	cfg.DB.TLS = tlsCfg

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envListOrDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envDurationOrDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s=%q is not a positive duration", ErrInvalid, key, v)
	}
	return d, nil
}

func validatePort(key, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: %s=%q is not a valid port", ErrInvalid, key, v)
	}
	return nil
}

// loadDBTLS decodes DB_SSL_CA, DB_SSL_CERT and DB_SSL_KEY. It returns nil
// when none of them is set.
func loadDBTLS(serverName string) (*tls.Config, error) {
	ca, err := decodeEnv("DB_SSL_CA")
	if err != nil {
		return nil, err
	}
	cert, err := decodeEnv("DB_SSL_CERT")
	if err != nil {
		return nil, err
	}
	key, err := decodeEnv("DB_SSL_KEY")
	if err != nil {
		return nil, err
	}
	if ca == nil && cert == nil && key == nil {
		return nil, nil
	}

	tlsCfg := &tls.Config{
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
	}

	if ca != nil {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("%w: DB_SSL_CA contains no PEM certificate", ErrInvalid)
		}
		tlsCfg.RootCAs = pool
	}

	switch {
	case cert != nil && key != nil:
		pair, err := tls.X509KeyPair(cert, key)
		if err != nil {
			return nil, fmt.Errorf("%w: DB_SSL_CERT/DB_SSL_KEY: %v", ErrInvalid, err)
		}
		tlsCfg.Certificates = []tls.Certificate{pair}
	case cert != nil || key != nil:
		return nil, fmt.Errorf("%w: DB_SSL_CERT and DB_SSL_KEY must be set together", ErrInvalid)
	}

	log.Printf("[config] Database TLS enabled (ca=%v, client cert=%v)", ca != nil, cert != nil)
	return tlsCfg, nil
}

func decodeEnv(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64: %v", ErrInvalid, key, err)
	}
	return b, nil
}

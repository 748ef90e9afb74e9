package probe

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/akl7777777/whoami-probe/internal/config"
	"github.com/akl7777777/whoami-probe/internal/model"
	"github.com/go-sql-driver/mysql"
)

// ProbeQuery is the constant statement run against the database.
const ProbeQuery = "SELECT 1 + 1"

// tlsConfigName is the key the decoded TLS material is registered under.
const tlsConfigName = "whoami-probe"

// Opener returns a fresh handle. The probe closes it after every call.
type Opener func(ctx context.Context) (*sql.DB, error)

// DatabaseProbe checks that the database accepts connections and
// evaluates a trivial query.
type DatabaseProbe struct {
	host    string
	port    string
	open    Opener
	timeout time.Duration
}

// NewDatabaseProbe builds a MySQL probe. It returns nil, nil when no
// database host is configured.
func NewDatabaseProbe(cfg config.DBConfig, timeout time.Duration) (*DatabaseProbe, error) {
	if !cfg.Enabled() {
		log.Printf("[database] DB_HOST not set, database probe disabled")
		return nil, nil
	}

	if cfg.TLS != nil {
		if err := mysql.RegisterTLSConfig(tlsConfigName, cfg.TLS); err != nil {
			return nil, fmt.Errorf("register tls config: %w", err)
		}
	}

	connector, err := mysql.NewConnector(mysqlConfig(cfg, timeout))
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	log.Printf("[database] Probing %s (tls=%v)", cfg.Addr(), cfg.TLS != nil)
	open := func(context.Context) (*sql.DB, error) {
		db := sql.OpenDB(connector)
		db.SetMaxOpenConns(1)
		return db, nil
	}
	return NewDatabaseProbeWithOpener(cfg.Host, cfg.Port, open, timeout), nil
}

// NewDatabaseProbeWithOpener builds a probe around an arbitrary driver.
func NewDatabaseProbeWithOpener(host, port string, open Opener, timeout time.Duration) *DatabaseProbe {
	return &DatabaseProbe{
		host:    host,
		port:    port,
		open:    open,
		timeout: timeout,
	}
}

func mysqlConfig(cfg config.DBConfig, timeout time.Duration) *mysql.Config {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Addr()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Name
	mc.Timeout = timeout
	mc.ReadTimeout = timeout
	mc.WriteTimeout = timeout
	if cfg.TLS != nil {
		mc.TLSConfig = tlsConfigName
	}
	return mc
}

// Probe never returns an error; failures are reported in the result.
func (p *DatabaseProbe) Probe(ctx context.Context) *model.ProbeResult {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	v, err := p.query(ctx)
	if err != nil {
		log.Printf("[database] %s:%s: %v", p.host, p.port, err)
		return model.ProbeFailure(p.host, p.port, err)
	}
	return model.ProbeSuccess(p.host, p.port, v)
}

func (p *DatabaseProbe) query(ctx context.Context) (int64, error) {
	db, err := p.open(ctx)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Printf("[database] close %s:%s: %v", p.host, p.port, cerr)
		}
	}()

	var v int64
	if err := db.QueryRowContext(ctx, ProbeQuery).Scan(&v); err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	return v, nil
}

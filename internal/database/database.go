// FilePath: internal/database/database.go
package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/config"
	apierrors "github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/tunnel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	nuts "github.com/vaudience/go-nuts"
)

// Tunnel is an open port forward to the database host
type Tunnel interface {
	LocalPort() int
	Close() error
}

// TunnelOpener opens a tunnel to remoteAddr through the SSH server in cfg
type TunnelOpener func(ctx context.Context, cfg config.SSHConfig, remoteAddr string) (Tunnel, error)

// Connector opens and pings a database
type Connector func(ctx context.Context, driverName, dsn string) (*sqlx.DB, error)

// ConnectionProvider hands out request-scoped database handles
type ConnectionProvider interface {
	Acquire(ctx context.Context) (*Handle, error)
	Release(h *Handle) error
}

// Handle pairs a database connection with the tunnel it is routed through, if any.
// A handle lives for exactly one operation.
type Handle struct {
	db       *sqlx.DB
	tunnel   Tunnel
	released bool
}

// GetDB returns the handle's database connection
func (h *Handle) GetDB() *sqlx.DB {
	return h.db
}

// Tunneled reports whether the connection goes through an SSH tunnel
func (h *Handle) Tunneled() bool {
	return h.tunnel != nil
}

// Provisioner opens a fresh connection, and tunnel when enabled, for every Acquire.
// Nothing is pooled between calls.
type Provisioner struct {
	db         config.DatabaseConfig
	ssh        config.SSHConfig
	openTunnel TunnelOpener
	connect    Connector
}

// Option configures a Provisioner
type Option func(*Provisioner)

// WithTunnelOpener replaces the SSH tunnel implementation
func WithTunnelOpener(open TunnelOpener) Option {
	return func(p *Provisioner) {
		p.openTunnel = open
	}
}

// WithConnector replaces the function used to open the database
func WithConnector(connect Connector) Option {
	return func(p *Provisioner) {
		p.connect = connect
	}
}

// NewProvisioner creates a provisioner for the given database and SSH settings
func NewProvisioner(db config.DatabaseConfig, ssh config.SSHConfig, opts ...Option) *Provisioner {
	p := &Provisioner{
		db:         db,
		ssh:        ssh,
		openTunnel: openSSHTunnel,
		connect:    sqlx.ConnectContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func openSSHTunnel(ctx context.Context, cfg config.SSHConfig, remoteAddr string) (Tunnel, error) {
	t, err := tunnel.Open(ctx, cfg, remoteAddr)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// useTunnel is false for file-backed drivers, which have no remote host to reach.
func (p *Provisioner) useTunnel() bool {
	return p.ssh.Enabled && p.db.Driver != config.DriverSQLite
}

// Acquire opens a database connection, routed through an SSH tunnel when enabled.
// On failure everything opened so far is closed again and no handle is returned.
func (p *Provisioner) Acquire(ctx context.Context) (*Handle, error) {
	host, port := p.db.Host, p.db.Port

	var tun Tunnel
	if p.useTunnel() {
		var err error
		tun, err = p.openTunnel(ctx, p.ssh, p.db.Addr())
		if err != nil {
			return nil, apierrors.NewConnectionError("failed to open ssh tunnel", err)
		}
		host, port = "localhost", tun.LocalPort()
	}

	dsn := BuildDSN(p.db, host, port)
	db, err := p.connect(ctx, p.db.Driver, dsn)
	if err != nil {
		if tun != nil {
			if closeErr := tun.Close(); closeErr != nil {
				nuts.L.Warnf("[Provisioner] Failed to close tunnel after connect error: %v", closeErr)
			}
		}
		return nil, apierrors.NewConnectionError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(1)

	if tun != nil {
		nuts.L.Debugf("[Provisioner] Connected to %s through ssh tunnel on port %d", RedactDSN(dsn), port)
	} else {
		nuts.L.Debugf("[Provisioner] Connected directly to %s", RedactDSN(dsn))
	}
	return &Handle{db: db, tunnel: tun}, nil
}

// Release closes the handle's database connection and stops its tunnel.
// It is safe to call more than once and with a nil handle.
func (p *Provisioner) Release(h *Handle) error {
	if h == nil || h.released {
		return nil
	}
	h.released = true

	var errs []error
	if h.db != nil {
		if err := h.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if h.tunnel != nil {
		if err := h.tunnel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tunnel: %w", err))
		}
	}
	if len(errs) > 0 {
		return apierrors.NewConnectionError("failed to release connection", errors.Join(errs...))
	}
	return nil
}

// BuildDSN builds the connection string for the configured driver, pointing at host:port.
func BuildDSN(cfg config.DatabaseConfig, host string, port int) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.DBName
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + cfg.DBName,
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u.String()
}

// RedactDSN hides the password of a URL-style DSN for logging.
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}

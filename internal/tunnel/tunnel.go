// Package tunnel forwards a local TCP port to a remote address through an SSH server.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/config"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultDialTimeout = 10 * time.Second

// Tunnel is an open SSH local port forward.
type Tunnel struct {
	client     *ssh.Client
	listener   net.Listener
	remoteAddr string

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// Open dials the SSH server described by cfg and starts forwarding connections
// accepted on 127.0.0.1:<ephemeral> to remoteAddr, as resolved by the SSH server.
func Open(ctx context.Context, cfg config.SSHConfig, remoteAddr string) (*Tunnel, error) {
	hostKeyCallback, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	client, err := dial(ctx, cfg.Addr(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", cfg.Addr(), err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("listen for tunnel: %w", err)
	}

	t := &Tunnel{
		client:     client,
		listener:   listener,
		remoteAddr: remoteAddr,
		conns:      map[net.Conn]struct{}{},
	}
	t.wg.Add(1)
	go t.acceptLoop()

	nuts.L.Debugf("[Tunnel] Forwarding 127.0.0.1:%d to %s via %s", t.LocalPort(), remoteAddr, cfg.Addr())
	return t, nil
}

// dial is ssh.Dial honoring ctx while the TCP connection and handshake are in flight.
func dial(ctx context.Context, addr string, clientConfig *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := net.Dialer{Timeout: clientConfig.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(clientConfig.Timeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func hostKeyCallback(cfg config.SSHConfig) (ssh.HostKeyCallback, error) {
	if cfg.KnownHosts == "" {
		nuts.L.Warnf("[Tunnel] No known_hosts file configured, host key of %s is not verified", cfg.Host)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	callback, err := knownhosts.New(cfg.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %s: %w", cfg.KnownHosts, err)
	}
	return callback, nil
}

// LocalPort is the port the tunnel listens on at 127.0.0.1.
func (t *Tunnel) LocalPort() int {
	return t.listener.Addr().(*net.TCPAddr).Port
}

// Close stops forwarding, drops open connections and disconnects from the SSH server.
// It blocks until every forwarding goroutine has returned.
func (t *Tunnel) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	for conn := range t.conns {
		_ = conn.Close()
	}
	t.mu.Unlock()

	errListener := t.listener.Close()
	errClient := t.client.Close()
	t.wg.Wait()

	if errClient != nil && errors.Is(errClient, net.ErrClosed) {
		errClient = nil
	}
	return errors.Join(errListener, errClient)
}

func (t *Tunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				nuts.L.Errorf("[Tunnel] Accept failed: %v", err)
			}
			return
		}
		if !t.track(local) {
			_ = local.Close()
			return
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *Tunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer t.untrack(local)

	remote, err := t.client.Dial("tcp", t.remoteAddr)
	if err != nil {
		nuts.L.Errorf("[Tunnel] Failed to reach %s through ssh: %v", t.remoteAddr, err)
		_ = local.Close()
		return
	}
	if !t.track(remote) {
		_ = remote.Close()
		_ = local.Close()
		return
	}
	defer t.untrack(remote)

	done := make(chan struct{}, 2)
	pipe := func(dst, src net.Conn) {
		_, _ = io.Copy(dst, src)
		done <- struct{}{}
	}
	go pipe(remote, local)
	go pipe(local, remote)

	// Either side finishing ends the forward; closing both unblocks the other copy.
	<-done
	_ = local.Close()
	_ = remote.Close()
	<-done
}

func (t *Tunnel) track(conn net.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.conns[conn] = struct{}{}
	return true
}

func (t *Tunnel) untrack(conn net.Conn) {
	t.mu.Lock()
	delete(t.conns, conn)
	t.mu.Unlock()
	_ = conn.Close()
}

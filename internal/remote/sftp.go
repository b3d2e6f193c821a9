// Package remote scans a directory tree on another host over the SFTP
// subsystem, producing the same result shape as a local scan.
package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	pathpkg "path"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/sadopc/duscan/internal/scan"
)

const defaultRemotePath = "."

// Config configures a remote SFTP scan.
type Config struct {
	Target      string
	Port        int
	BatchMode   bool
	Timeout     time.Duration
	ScanTimeout time.Duration
}

// SFTPScanner scans a remote filesystem over the SFTP subsystem.
type SFTPScanner struct {
	cfg  Config
	dial func(context.Context, Config) (sftpClient, io.Closer, error)
}

type sftpClient interface {
	ReadDir(string) ([]os.FileInfo, error)
	Stat(string) (os.FileInfo, error)
	RealPath(string) (string, error)
}

var dialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

var sshNewClientConn = func(conn net.Conn, addr string, config *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
	return ssh.NewClientConn(conn, addr, config)
}

// NewSFTPScanner creates a new remote scanner.
func NewSFTPScanner(cfg Config) *SFTPScanner {
	return &SFTPScanner{cfg: cfg, dial: dialSFTP}
}

// Scan walks a remote path over SFTP and returns the aggregated result.
func (s *SFTPScanner) Scan(ctx context.Context, remotePath string, opts scan.Options, progress chan<- scan.Progress) (*scan.Result, error) {
	if s == nil {
		return nil, fmt.Errorf("remote scanner is nil")
	}
	if s.dial == nil {
		s.dial = dialSFTP
	}

	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}

	client, closer, err := s.dial(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return s.scanWithClient(ctx, client, remotePath, opts, progress)
}

func (s *SFTPScanner) scanWithClient(ctx context.Context, client sftpClient, remotePath string, opts scan.Options, progress chan<- scan.Progress) (*scan.Result, error) {
	if strings.TrimSpace(remotePath) == "" {
		remotePath = defaultRemotePath
	}

	rootPath := cleanRemotePath(remotePath)
	if resolved, err := client.RealPath(rootPath); err == nil {
		rootPath = cleanRemotePath(resolved)
	}

	info, err := client.Stat(rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", rootPath, scan.ErrNotFound)
		}
		return nil, fmt.Errorf("cannot stat remote path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", rootPath, scan.ErrNotDirectory)
	}

	excludeSet := make(map[string]struct{}, len(opts.ExcludePatterns))
	for _, p := range opts.ExcludePatterns {
		excludeSet[p] = struct{}{}
	}

	acc := scan.NewAccumulator(rootPath)

	var filesScanned, dirsScanned, bytesFound, errCount atomic.Int64
	startTime := time.Now()
	snapshot := func(done bool) scan.Progress {
		return scan.Progress{
			FilesScanned: filesScanned.Load(),
			DirsScanned:  dirsScanned.Load(),
			BytesFound:   bytesFound.Load(),
			Errors:       errCount.Load(),
			Done:         done,
			StartTime:    startTime,
			Duration:     time.Since(startTime),
		}
	}

	var progressWg sync.WaitGroup
	progressDone := make(chan struct{})
	if progress != nil {
		progressWg.Add(1)
		go func() {
			defer progressWg.Done()
			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					select {
					case progress <- snapshot(false):
					default:
					}
				case <-progressDone:
					return
				}
			}
		}()
		// Always stop the progress goroutine before returning, including cancel/error paths.
		defer func() {
			close(progressDone)
			progressWg.Wait()
		}()
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0) * 3
	}
	sem := make(chan struct{}, concurrency)

	var visitedDirs sync.Map
	visitedDirs.Store(rootPath, true)

	var wg sync.WaitGroup
	s.scanDir(ctx, client, rootPath, acc, opts, sem, &wg, &filesScanned, &dirsScanned, &bytesFound, &errCount, excludeSet, &visitedDirs)
	wg.Wait()

	if progress != nil {
		select {
		case progress <- snapshot(true):
		default:
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return acc.Result(), nil
}

func (s *SFTPScanner) scanDir(
	ctx context.Context,
	client sftpClient,
	dirPath string,
	acc *scan.Accumulator,
	opts scan.Options,
	sem chan struct{},
	wg *sync.WaitGroup,
	filesScanned, dirsScanned, bytesFound, errCount *atomic.Int64,
	excludeSet map[string]struct{},
	visitedDirs *sync.Map,
) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	entries, err := readRemoteDir(ctx, client, dirPath)
	if err != nil {
		acc.Skip(dirPath)
		errCount.Add(1)
		return
	}

	dirsScanned.Add(1)

	spawnScan := func(path string) {
		select {
		case sem <- struct{}{}:
			wg.Add(1)
			go func(p string) {
				defer wg.Done()
				defer func() { <-sem }()
				s.scanDir(ctx, client, p, acc, opts, sem, wg, filesScanned, dirsScanned, bytesFound, errCount, excludeSet, visitedDirs)
			}(path)
		default:
			s.scanDir(ctx, client, path, acc, opts, sem, wg, filesScanned, dirsScanned, bytesFound, errCount, excludeSet, visitedDirs)
		}
	}

	var direct uint64
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		name := entry.Name()
		if _, excluded := excludeSet[name]; excluded {
			continue
		}
		if !opts.ShowHidden && isHidden(name) {
			continue
		}

		fullPath := cleanRemotePath(pathpkg.Join(dirPath, name))

		if entry.IsDir() {
			scanPath := fullPath
			if resolvedPath, err := client.RealPath(fullPath); err == nil {
				scanPath = cleanRemotePath(resolvedPath)
			}
			if _, loaded := visitedDirs.LoadOrStore(scanPath, true); loaded {
				continue
			}
			spawnScan(fullPath)
			continue
		}

		if !entry.Mode().IsRegular() {
			continue
		}

		size := entry.Size()
		if size < 0 {
			size = 0
		}
		direct += uint64(size)
		acc.AddFile(fullPath, uint64(size))
		filesScanned.Add(1)
		bytesFound.Add(size)
	}

	acc.AddDir(dirPath, direct)
}

func cleanRemotePath(p string) string {
	if p == "" {
		return defaultRemotePath
	}
	clean := pathpkg.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == "" {
		return defaultRemotePath
	}
	return clean
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

func readRemoteDir(ctx context.Context, client sftpClient, dirPath string) ([]os.FileInfo, error) {
	if rc, ok := client.(interface {
		ReadDirContext(context.Context, string) ([]os.FileInfo, error)
	}); ok {
		return rc.ReadDirContext(ctx, dirPath)
	}
	return client.ReadDir(dirPath)
}

func dialSFTP(ctx context.Context, cfg Config) (sftpClient, io.Closer, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, nil, fmt.Errorf("ssh port must be between 1 and 65535")
	}

	user, host, err := parseSSHTarget(cfg.Target)
	if err != nil {
		return nil, nil, err
	}

	hostCB, err := hostKeyCallback(host, cfg.Port, cfg.BatchMode)
	if err != nil {
		return nil, nil, err
	}

	auth, err := buildAuthMethods(user, host, cfg.BatchMode)
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sshConfig := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostCB,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Port))
	sshClient, err := connectSSH(dialCtx, addr, sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("cannot start SFTP subsystem: %w", err)
	}

	closer := &remoteCloser{ssh: sshClient, sftp: sftpClient}
	return sftpClient, closer, nil
}

func connectSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// Ensure cancellation interrupts handshake/authentication.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	c, chans, reqs, err := sshNewClientConn(conn, addr, config)
	close(done)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

type remoteCloser struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (c *remoteCloser) Close() error {
	var retErr error
	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			retErr = err
		}
	}
	if c.ssh != nil {
		if err := c.ssh.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}
	return retErr
}

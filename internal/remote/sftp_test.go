package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	pathpkg "path"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/sadopc/duscan/internal/scan"
)

func TestScanWithClient_Aggregates(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/root":                 {mode: os.ModeDir, children: []string{"docs", "file.txt", "file.log"}},
		"/root/docs":            {mode: os.ModeDir, children: []string{"inside.txt"}},
		"/root/docs/inside.txt": {mode: 0, size: 5},
		"/root/file.txt":        {mode: 0, size: 7},
		"/root/file.log":        {mode: 0, size: 9},
	})

	s := &SFTPScanner{cfg: Config{Target: "user@host", Port: 22}, dial: fakeDial(client)}
	res, err := s.Scan(context.Background(), "/root", scan.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if res.Root != "/root" {
		t.Fatalf("unexpected root: %s", res.Root)
	}
	if res.TotalSize != 21 {
		t.Fatalf("expected total 21, got %d", res.TotalSize)
	}
	if res.FileCount() != 3 {
		t.Fatalf("expected 3 files, got %d", res.FileCount())
	}
	if got := res.DirSizes["/root/docs"]; got != 5 {
		t.Fatalf("expected docs direct size 5, got %d", got)
	}
	if _, ok := res.DirSizes["/root"]; ok {
		t.Fatal("scan root must not appear in DirSizes")
	}
	if st := res.Extensions[".txt"]; st.Size != 12 || st.Count != 2 {
		t.Fatalf("unexpected .txt bucket: %+v", st)
	}
}

func TestScanWithClient_FiltersHiddenAndExcluded(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/root":                  {mode: os.ModeDir, children: []string{"keep", "skip", ".hidden", "file.txt", "link"}},
		"/root/keep":             {mode: os.ModeDir, children: []string{"inside.txt"}},
		"/root/keep/inside.txt":  {mode: 0, size: 5},
		"/root/skip":             {mode: os.ModeDir, children: []string{"ignored.txt"}},
		"/root/skip/ignored.txt": {mode: 0, size: 9},
		"/root/.hidden":          {mode: 0, size: 11},
		"/root/file.txt":         {mode: 0, size: 7},
		"/root/link":             {mode: os.ModeSymlink, size: 3, target: "/root/file.txt"},
	})

	opts := scan.DefaultOptions()
	opts.ShowHidden = false
	opts.ExcludePatterns = []string{"skip"}

	s := &SFTPScanner{cfg: Config{Target: "user@host", Port: 22}, dial: fakeDial(client)}
	res, err := s.Scan(context.Background(), "/root", opts, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	// Hidden, excluded, and symlink entries all contribute nothing.
	if res.TotalSize != 12 {
		t.Fatalf("expected total 12, got %d", res.TotalSize)
	}
	for _, f := range res.Files {
		if f.Path == "/root/.hidden" || f.Path == "/root/skip/ignored.txt" || f.Path == "/root/link" {
			t.Fatalf("unexpected file in result: %s", f.Path)
		}
	}
	if _, ok := res.DirSizes["/root/skip"]; ok {
		t.Fatal("excluded directory must not appear in DirSizes")
	}
}

func TestScanWithClient_UnreadableDirSkipped(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/root":             {mode: os.ModeDir, children: []string{"denied", "regular.txt"}},
		"/root/denied":      {mode: os.ModeDir, errOnRead: true},
		"/root/regular.txt": {mode: 0, size: 4},
	})

	s := &SFTPScanner{cfg: Config{Target: "user@host", Port: 22}, dial: fakeDial(client)}
	res, err := s.Scan(context.Background(), "/root", scan.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if res.TotalSize != 4 {
		t.Fatalf("expected total 4, got %d", res.TotalSize)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "/root/denied" {
		t.Fatalf("expected denied dir in skipped list, got %v", res.Skipped)
	}
	if res.ErrorCount == 0 {
		t.Fatal("expected non-zero error count")
	}
}

func TestScanWithClient_SkipsSpecialFiles(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/root":             {mode: os.ModeDir, children: []string{"regular.txt", "pipe"}},
		"/root/regular.txt": {mode: 0, size: 4},
		"/root/pipe":        {mode: os.ModeNamedPipe},
	})

	s := &SFTPScanner{cfg: Config{Target: "user@host", Port: 22}, dial: fakeDial(client)}
	res, err := s.Scan(context.Background(), "/root", scan.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if res.FileCount() != 1 {
		t.Fatalf("expected only the regular file, got %+v", res.Files)
	}
	if res.Files[0].Path != "/root/regular.txt" {
		t.Fatalf("unexpected file: %s", res.Files[0].Path)
	}
}

func TestScanWithClient_SymlinkedDirNotDoubleScanned(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/root":              {mode: os.ModeDir, children: []string{"dir", "dir2"}},
		"/root/dir":          {mode: os.ModeDir, children: []string{"item.txt"}},
		"/root/dir/item.txt": {mode: 0, size: 10},
		// dir2 resolves to the same real directory as dir.
		"/root/dir2": {mode: os.ModeSymlink | os.ModeDir, target: "/root/dir"},
	})

	s := &SFTPScanner{cfg: Config{Target: "user@host", Port: 22}, dial: fakeDial(client)}
	res, err := s.Scan(context.Background(), "/root", scan.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if res.TotalSize != 10 {
		t.Fatalf("expected total 10 (no double-count), got %d", res.TotalSize)
	}
	if res.FileCount() != 1 {
		t.Fatalf("expected single file, got %+v", res.Files)
	}
}

func TestScanWithClient_BadRoots(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/root":          {mode: os.ModeDir, children: []string{"file.txt"}},
		"/root/file.txt": {mode: 0, size: 7},
	})
	s := &SFTPScanner{cfg: Config{Target: "user@host", Port: 22}, dial: fakeDial(client)}

	if _, err := s.Scan(context.Background(), "/missing", scan.DefaultOptions(), nil); !errors.Is(err, scan.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Scan(context.Background(), "/root/file.txt", scan.DefaultOptions(), nil); !errors.Is(err, scan.ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func TestScanWithClient_CanceledContext(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/root":          {mode: os.ModeDir, children: []string{"file.txt"}},
		"/root/file.txt": {mode: 0, size: 7},
	})
	s := &SFTPScanner{cfg: Config{Target: "user@host", Port: 22}, dial: fakeDial(client)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Scan(ctx, "/root", scan.DefaultOptions(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result on cancellation")
	}
}

func TestCleanRemotePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "."},
		{"/root/", "/root"},
		{"/root//sub", "/root/sub"},
		{"root\\sub", "root/sub"},
		{"/root/./sub/..", "/root"},
	}
	for _, tt := range tests {
		if got := cleanRemotePath(tt.in); got != tt.want {
			t.Errorf("cleanRemotePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConnectSSH_RespectsContextCancellation(t *testing.T) {
	origDial := dialContext
	origNewClientConn := sshNewClientConn
	t.Cleanup(func() {
		dialContext = origDial
		sshNewClientConn = origNewClientConn
	})

	dialCalled := false
	handshakeCalled := false

	dialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		dialCalled = true
		<-ctx.Done()
		return nil, ctx.Err()
	}
	sshNewClientConn = func(net.Conn, string, *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
		handshakeCalled = true
		return nil, nil, nil, errors.New("unexpected handshake call")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connectSSH(ctx, "example.com:22", &ssh.ClientConfig{
		User:            "user",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !dialCalled {
		t.Fatal("expected dial to be called")
	}
	if handshakeCalled {
		t.Fatal("did not expect SSH handshake to start after canceled dial")
	}
}

func fakeDial(client sftpClient) func(context.Context, Config) (sftpClient, io.Closer, error) {
	return func(context.Context, Config) (sftpClient, io.Closer, error) {
		return client, noopCloser{}, nil
	}
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

type fakeNode struct {
	mode      os.FileMode
	size      int64
	mtime     time.Time
	target    string
	children  []string
	errOnRead bool // if true, ReadDir returns an error
}

type fakeSFTP struct {
	nodes map[string]fakeNode
}

func newFakeSFTP(nodes map[string]fakeNode) *fakeSFTP {
	cp := make(map[string]fakeNode, len(nodes))
	for k, v := range nodes {
		if v.mtime.IsZero() {
			v.mtime = time.Unix(1700000000, 0)
		}
		cp[cleanRemotePath(k)] = v
	}
	return &fakeSFTP{nodes: cp}
}

func (f *fakeSFTP) ReadDir(path string) ([]os.FileInfo, error) {
	node, err := f.get(path)
	if err != nil {
		return nil, err
	}
	if !node.mode.IsDir() {
		return nil, fmt.Errorf("not a directory")
	}
	if node.errOnRead {
		return nil, fmt.Errorf("permission denied")
	}

	out := make([]os.FileInfo, 0, len(node.children))
	for _, child := range node.children {
		childPath := cleanRemotePath(pathpkg.Join(cleanRemotePath(path), child))
		childNode, ok := f.nodes[childPath]
		if !ok {
			return nil, fmt.Errorf("missing child %s", childPath)
		}
		out = append(out, fakeInfo{name: child, size: childNode.size, mode: childNode.mode, mtime: childNode.mtime})
	}
	return out, nil
}

func (f *fakeSFTP) Stat(path string) (os.FileInfo, error) {
	resolved, err := f.RealPath(path)
	if err != nil {
		return nil, err
	}
	node, ok := f.nodes[resolved]
	if !ok {
		return nil, os.ErrNotExist
	}
	return fakeInfo{name: pathpkg.Base(resolved), size: node.size, mode: node.mode, mtime: node.mtime}, nil
}

func (f *fakeSFTP) RealPath(path string) (string, error) {
	clean := cleanRemotePath(path)
	return f.resolve(clean, map[string]bool{})
}

func (f *fakeSFTP) get(path string) (fakeNode, error) {
	node, ok := f.nodes[cleanRemotePath(path)]
	if !ok {
		return fakeNode{}, os.ErrNotExist
	}
	return node, nil
}

func (f *fakeSFTP) resolve(path string, seen map[string]bool) (string, error) {
	node, ok := f.nodes[path]
	if !ok {
		return "", os.ErrNotExist
	}
	if node.mode&os.ModeSymlink == 0 {
		return path, nil
	}
	if seen[path] {
		return "", fmt.Errorf("symlink cycle")
	}
	seen[path] = true

	target := node.target
	if !pathpkg.IsAbs(target) {
		target = pathpkg.Join(pathpkg.Dir(path), target)
	}
	return f.resolve(cleanRemotePath(target), seen)
}

type fakeInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	mtime time.Time
}

func (fi fakeInfo) Name() string       { return fi.name }
func (fi fakeInfo) Size() int64        { return fi.size }
func (fi fakeInfo) Mode() os.FileMode  { return fi.mode }
func (fi fakeInfo) ModTime() time.Time { return fi.mtime }
func (fi fakeInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fakeInfo) Sys() any           { return nil }

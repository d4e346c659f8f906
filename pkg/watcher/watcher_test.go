package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genealogie.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitChanged(t *testing.T, w *Watcher, timeout time.Duration) {
	t.Helper()
	select {
	case <-w.Changed():
	case <-time.After(timeout):
		t.Fatal("timeout waiting for change notification")
	}
}

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounceDuration {
		t.Errorf("Duration() = %v, want %v", d.Duration(), DefaultDebounceDuration)
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	path := writeDataset(t, `{"entities":[],"relations":[]}`)
	w, err := NewWatcher(path, WithDebounceDuration(30*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"entities":[{"id":"grecque-zeus"}],"relations":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitChanged(t, w, time.Second)
}

func TestWatcher_PollingMode(t *testing.T) {
	path := writeDataset(t, "initial")
	w, err := NewWatcher(path,
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(40*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling mode")
	}
	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(path, []byte("modified via polling"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitChanged(t, w, time.Second)
}

func TestWatcher_EnvForcesPolling(t *testing.T) {
	t.Setenv(ForcePollEnvVar, "yes")
	w, err := NewWatcher(writeDataset(t, "x"), WithPollInterval(25*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if !w.IsPolling() {
		t.Fatalf("expected polling when %s is set", ForcePollEnvVar)
	}
}

func TestWatcher_RemoteFilesystemPolls(t *testing.T) {
	orig := detectFilesystemTypeFunc
	detectFilesystemTypeFunc = func(string) FilesystemType { return FSTypeNFS }
	t.Cleanup(func() { detectFilesystemTypeFunc = orig })

	w, err := NewWatcher(writeDataset(t, "x"), WithPollInterval(25*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected polling on a remote filesystem")
	}
	if got := w.FilesystemType(); got != FSTypeNFS {
		t.Errorf("FilesystemType() = %v, want nfs", got)
	}
}

func TestWatcher_FileRemoved(t *testing.T) {
	path := writeDataset(t, "x")
	var (
		mu  sync.Mutex
		got error
	)
	w, err := NewWatcher(path,
		WithPollInterval(30*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(err error) {
			mu.Lock()
			got = err
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !errors.Is(got, ErrFileRemoved) {
		t.Errorf("expected ErrFileRemoved, got %v", got)
	}
}

func TestWatcher_StartStop(t *testing.T) {
	path := writeDataset(t, "x")
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("not started yet")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start: got %v", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Error("should be stopped")
	}
	w.Stop()

	abs, _ := filepath.Abs(path)
	if w.Path() != abs {
		t.Errorf("Path() = %s, want %s", w.Path(), abs)
	}
	if w.PollInterval() != DefaultPollInterval {
		t.Errorf("PollInterval() = %v", w.PollInterval())
	}
}

func TestFilesystemType_String(t *testing.T) {
	tests := []struct {
		fs   FilesystemType
		want string
	}{
		{FSTypeUnknown, "unknown"},
		{FSTypeLocal, "local"},
		{FSTypeNFS, "nfs"},
		{FSTypeSMB, "smb"},
		{FSTypeSSHFS, "sshfs"},
		{FSTypeFUSE, "fuse"},
		{FilesystemType(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.fs.String(); got != tt.want {
			t.Errorf("FilesystemType(%d) = %q, want %q", tt.fs, got, tt.want)
		}
	}
}

func TestDetectFilesystemType(t *testing.T) {
	if got := DetectFilesystemType(""); got != FSTypeUnknown {
		t.Errorf("empty path: got %v", got)
	}
	missing := filepath.Join(t.TempDir(), "missing.json")
	if got := DetectFilesystemType(missing); got == FSTypeUnknown {
		t.Errorf("missing file should resolve through its directory, got %v", got)
	}
}

func TestEnvBool(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "TRUE": true, "yes": true, "Y": true, "on": true,
		"0": false, "false": false, "": false, "maybe": false,
	} {
		t.Setenv("PANTHEON_TEST_BOOL", value)
		if got := envBool("PANTHEON_TEST_BOOL"); got != want {
			t.Errorf("envBool(%q) = %v, want %v", value, got, want)
		}
	}
}

package provision

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zorro/takopi-docker/pkg/manifest"
	"github.com/zorro/takopi-docker/pkg/marker"
)

// fakeRunner records commands instead of executing them.
type fakeRunner struct {
	mu     sync.Mutex
	cmds   []Command
	failOn func(Command) error
}

func (r *fakeRunner) Run(_ context.Context, cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	if r.failOn != nil {
		return r.failOn(cmd)
	}
	return nil
}

func (r *fakeRunner) lines() []string {
	out := make([]string, 0, len(r.cmds))
	for _, c := range r.cmds {
		out = append(out, c.String())
	}
	return out
}

func (r *fakeRunner) find(substr string) *Command {
	for i := range r.cmds {
		if strings.Contains(r.cmds[i].String(), substr) {
			return &r.cmds[i]
		}
	}
	return nil
}

// fakeFetcher serves bodies from memory.
type fakeFetcher struct {
	bodies map[string][]byte
	fail   map[string]error
	urls   []string
}

func (f *fakeFetcher) Download(_ context.Context, opts DownloadOptions) error {
	f.urls = append(f.urls, opts.URL)
	if err := f.fail[opts.URL]; err != nil {
		return err
	}
	body, ok := f.bodies[opts.URL]
	if !ok {
		body = []byte("#!/bin/sh\nexit 0\n")
	}
	if err := os.MkdirAll(filepath.Dir(opts.DestPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(opts.DestPath, body, 0644)
}

// fakeRecorder collects metric observations.
type fakeRecorder struct {
	statuses map[string]string
	finished bool
}

func (r *fakeRecorder) ObserveStep(step, _, status string, _ time.Duration) {
	if r.statuses == nil {
		r.statuses = map[string]string{}
	}
	r.statuses[step] = status
}

func (r *fakeRecorder) RunFinished(time.Time) { r.finished = true }

func tarGz(t *testing.T, top string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: top + "/", Typeflag: tar.TypeDir, Mode: 0755}))
	body := []byte("#!/bin/sh\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: top + "/bin/tool", Typeflag: tar.TypeReg, Mode: 0755, Size: int64(len(body))}))
	_, err := tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func zipArchive(t *testing.T, top string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(top + "/bin/tool")
	require.NoError(t, err)
	_, err = w.Write([]byte("#!/bin/sh\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

var defaultArgs = map[string]string{
	"AGENT":          "all",
	"NODE_MAJOR":     "22",
	"JAVA_VERSION":   "21",
	"MAVEN_VERSION":  "3.9.9",
	"GRADLE_VERSION": "8.12",
}

// fixture is the default manifest relocated under a temp root, with an
// executor wired to fakes.
type fixture struct {
	root     string
	manifest *manifest.Manifest
	runner   *fakeRunner
	fetcher  *fakeFetcher
	metrics  *fakeRecorder
	exec     *Executor
	// owners records every user passed to the executor's owner lookup.
	owners []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	m, err := manifest.Default()
	require.NoError(t, err)
	m, err = m.Expand(m.TemplateVars(defaultArgs))
	require.NoError(t, err)

	fetcher := &fakeFetcher{bodies: map[string][]byte{}, fail: map[string]error{}}
	for i := range m.Steps {
		s := &m.Steps[i]
		if s.Dest != "" {
			s.Dest = filepath.Join(root, s.Dest)
		}
		if s.Keyring != "" {
			s.Keyring = filepath.Join(root, s.Keyring)
		}
		switch s.Method {
		case manifest.MethodTarball:
			fetcher.bodies[s.URL] = tarGz(t, s.Strip)
		case manifest.MethodZip:
			fetcher.bodies[s.URL] = zipArchive(t, s.Strip)
		}
	}
	m.Image.MarkerDir = filepath.Join(root, "markers")

	tmp := filepath.Join(root, "tmp")
	require.NoError(t, os.MkdirAll(tmp, 0755))

	runner := &fakeRunner{}
	rec := &fakeRecorder{}
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	f := &fixture{
		root:     root,
		manifest: m,
		runner:   runner,
		fetcher:  fetcher,
		metrics:  rec,
		exec: &Executor{
			Runner:     runner,
			Fetcher:    fetcher,
			Markers:    marker.NewStore(m.Image.MarkerDir),
			Logger:     zerolog.Nop(),
			Metrics:    rec,
			Now:        func() time.Time { return clock },
			Seeds:      m.TemplateVars(defaultArgs),
			BaseEnv:    []string{"PATH=/usr/bin", "LANG=C.UTF-8"},
			BasePath:   "/usr/bin:/bin",
			SourcesDir: filepath.Join(root, "sources.list.d"),
			TempDir:    tmp,
		},
	}
	f.exec.LookupOwner = func(name string) (int, int, error) {
		f.owners = append(f.owners, name)
		return os.Getuid(), os.Getgid(), nil
	}
	return f
}

func markerFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func envValue(env []string, key string) string {
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return fmt.Sprintf("<unset %s>", key)
}

package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pages, err := w.Watch(ctx)
	require.NoError(t, err)
	defer w.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644)
		_ = os.WriteFile(filepath.Join(dir, "page.html"),
			[]byte("<!-- saved from url=(0021)https://example.com/w --><p>watched</p>"), 0644)
	}()

	select {
	case page := <-pages:
		assert.Equal(t, "https://example.com/w", page.URL)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for page")
	}
}

func TestWatcher_ClosesChannelOnCancel(t *testing.T) {
	w := NewWatcher(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())

	pages, err := w.Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-pages:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatcher_MissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"))

	_, err := w.Watch(context.Background())

	assert.Error(t, err)
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		dir     bool
		op      fsnotify.Op
		want    bool
	}{
		{name: "create html", file: "a.html", content: "<p>a</p>", op: fsnotify.Create, want: true},
		{name: "write html", file: "a.html", content: "<p>a</p>", op: fsnotify.Write, want: true},
		{name: "empty file", file: "a.html", content: "", op: fsnotify.Create},
		{name: "remove", file: "gone.html", op: fsnotify.Remove},
		{name: "rename", file: "gone.html", op: fsnotify.Rename},
		{name: "chmod", file: "a.html", content: "<p>a</p>", op: fsnotify.Chmod},
		{name: "not html", file: "a.txt", content: "text", op: fsnotify.Create},
		{name: "hidden", file: ".a.html", content: "<p>a</p>", op: fsnotify.Create},
		{name: "directory", file: "d.html", dir: true, op: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			switch {
			case tt.dir:
				require.NoError(t, os.Mkdir(path, 0755))
			case tt.op != fsnotify.Remove && tt.op != fsnotify.Rename:
				writeFile(t, path, tt.content)
			}

			page, ok := NewWatcher(dir).handleFsEvent(fsnotify.Event{Name: path, Op: tt.op})

			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.content, page.Text())
			}
		})
	}
}

package assets

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/lumen/engine/core"
)

// DefaultQuietPeriod is how long the watched binaries must go without events
// before a change is reported.
const DefaultQuietPeriod = 200 * time.Millisecond

type WatcherOption func(*ShaderWatcher)

// WithQuietPeriod sets how long events are coalesced before a change is
// reported.
func WithQuietPeriod(d time.Duration) WatcherOption {
	return func(sw *ShaderWatcher) {
		sw.quiet = d
	}
}

// ShaderWatcher reports when a set of shader binaries was rewritten.
// Directories are watched rather than files so that editors and compilers
// replacing a file atomically are noticed too. Bursts of events are coalesced
// and a change is only reported once every watched file exists and is not
// empty, so a compiler truncating its output never triggers a reload.
type ShaderWatcher struct {
	files map[string]struct{}
	quiet time.Duration

	mutex    sync.Mutex
	isClosed bool
	fsnotify *fsnotify.Watcher
	changed  chan string
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewShaderWatcher(paths []string, options ...WatcherOption) (*ShaderWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	sw := &ShaderWatcher{
		files:    make(map[string]struct{}, len(paths)),
		quiet:    DefaultQuietPeriod,
		fsnotify: fsWatch,
		changed:  make(chan string, 1),
		done:     make(chan struct{}),
	}
	for _, o := range options {
		o(sw)
	}

	dirs := map[string]struct{}{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsWatch.Close()
			return nil, errors.Wrapf(err, "failed to resolve %q", p)
		}
		sw.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := fsWatch.Add(d); err != nil {
			fsWatch.Close()
			return nil, errors.Wrapf(err, "failed to watch %q", d)
		}
		core.LogDebug("watching %s for shader changes", d)
	}

	sw.wg.Add(1)
	go sw.start()
	return sw, nil
}

func (sw *ShaderWatcher) start() {
	defer sw.wg.Done()

	settle := time.NewTimer(sw.quiet)
	settle.Stop()
	defer settle.Stop()
	last := ""

	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, err := filepath.Abs(e.Name)
			if err != nil {
				continue
			}
			if _, ok := sw.files[name]; !ok {
				continue
			}
			core.LogDebug("shader %s: %s", name, e.Op)
			last = name
			settle.Reset(sw.quiet)

		case <-settle.C:
			if missing := sw.incomplete(); missing != "" {
				core.LogDebug("shader %s is missing or empty, waiting for it to be written", missing)
				continue
			}
			core.LogInfo("shader %s changed", last)
			// One pending notification is enough.
			select {
			case sw.changed <- last:
			default:
			}

		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-sw.done:
			return
		}
	}
}

// incomplete returns the first watched file that is missing or empty.
func (sw *ShaderWatcher) incomplete() string {
	for name := range sw.files {
		info, err := os.Stat(name)
		if err != nil || info.Size() == 0 {
			return name
		}
	}
	return ""
}

// Changed returns the channel a path is sent on after one of the watched
// binaries changed.
func (sw *ShaderWatcher) Changed() <-chan string {
	return sw.changed
}

// Pending reports whether a change arrived since the last call, without
// blocking. It is meant to be polled from the frame loop.
func (sw *ShaderWatcher) Pending() bool {
	select {
	case <-sw.changed:
		return true
	default:
		return false
	}
}

func (sw *ShaderWatcher) Close() error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	if sw.isClosed {
		return nil
	}
	sw.isClosed = true
	close(sw.done)
	err := sw.fsnotify.Close()
	sw.wg.Wait()
	return err
}

package core

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher re-reads a TOML configuration file whenever it is written or recreated
// and delivers the decoded result on Updates. Decoding failures go to Errors and the
// previous configuration stays in effect.
type ConfigWatcher struct {
	path     string
	fsnotify *fsnotify.Watcher

	updates chan *Config
	errors  chan error
	done    chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors usually replace the file, so the directory is watched instead of the inode
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		path:     abs,
		fsnotify: fsWatch,
		updates:  make(chan *Config, 1),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.start()
	return cw, nil
}

func (cw *ConfigWatcher) Updates() <-chan *Config {
	return cw.updates
}

func (cw *ConfigWatcher) Errors() <-chan error {
	return cw.errors
}

func (cw *ConfigWatcher) Close() error {
	var err error
	cw.closeOnce.Do(func() {
		close(cw.done)
		cw.wg.Wait()
		err = cw.fsnotify.Close()
	})
	return err
}

func (cw *ConfigWatcher) start() {
	defer cw.wg.Done()
	defer close(cw.updates)
	defer close(cw.errors)

	for {
		select {
		case e, ok := <-cw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != cw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := LoadConfig(cw.path)
			if err != nil {
				LogWarn("config reload of %s rejected: %s", cw.path, err)
				cw.publishError(err)
				continue
			}
			LogInfo("config %s reloaded", cw.path)
			cw.publish(cfg)

		case err, ok := <-cw.fsnotify.Errors:
			if !ok {
				return
			}
			LogError(err.Error())
			cw.publishError(err)

		case <-cw.done:
			return
		}
	}
}

// publish keeps only the newest configuration if the consumer has not caught up.
func (cw *ConfigWatcher) publish(cfg *Config) {
	for {
		select {
		case cw.updates <- cfg:
			return
		case <-cw.done:
			return
		default:
			select {
			case <-cw.updates:
			default:
			}
		}
	}
}

func (cw *ConfigWatcher) publishError(err error) {
	select {
	case cw.errors <- err:
	default:
	}
}

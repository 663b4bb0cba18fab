package config

import (
	"fmt"
	"reflect"

	"github.com/fsnotify/fsnotify"
)

type watcher struct {
	id uint64
	fn func(*Config)
}

// Watch reloads the config file whenever it changes on disk. Subscribers
// registered with OnConfigChange see every reload that produced a different,
// valid configuration. Watching twice is a no-op; watching without a loaded
// file is an error.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}
	file := m.viper.ConfigFileUsed()
	if file == "" {
		return fmt.Errorf("no config file to watch in %s", m.dir)
	}

	m.viper.OnConfigChange(m.handleEvent)
	m.viper.WatchConfig()
	m.watching = true
	m.log.Debug().Str("file", file).Msg("watching config")
	return nil
}

func (m *Manager) handleEvent(e fsnotify.Event) {
	// Editors touch permissions on save; only content changes matter.
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	m.mu.Lock()
	changed, err := m.reload()
	if err != nil {
		m.mu.Unlock()
		m.log.Warn().Err(err).Str("file", e.Name).Msg("config reload failed, keeping previous values")
		return
	}
	if !changed {
		m.mu.Unlock()
		m.log.Debug().Str("file", e.Name).Msg("config unchanged")
		return
	}
	cfg := m.config
	subscribers := make([]watcher, len(m.watchers))
	copy(subscribers, m.watchers)
	m.mu.Unlock()

	for _, w := range subscribers {
		w.fn(cfg)
	}
}

// OnConfigChange subscribes fn to reloads and returns a function that
// unsubscribes it.
func (m *Manager) OnConfigChange(fn func(*Config)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.watchers = append(m.watchers, watcher{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, w := range m.watchers {
			if w.id == id {
				m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
				return
			}
		}
	}
}

// Reloads reports how many reloads changed the configuration.
func (m *Manager) Reloads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reloads
}

// reload re-reads the file and swaps in the result when it validates.
// Callers hold m.mu for writing.
func (m *Manager) reload() (bool, error) {
	if err := m.viper.ReadInConfig(); err != nil {
		return false, fmt.Errorf("read %s: %w", m.viper.ConfigFileUsed(), err)
	}
	cfg, err := m.unmarshalConfig()
	if err != nil {
		return false, err
	}
	normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return false, fmt.Errorf("configuration validation failed: %w", err)
	}

	if reflect.DeepEqual(cfg, m.config) {
		return false, nil
	}
	m.config = cfg
	m.reloads++
	m.log.Info().Int("reload", m.reloads).Msg("config reloaded")
	return true, nil
}

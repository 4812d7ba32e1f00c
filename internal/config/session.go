package config

import (
	"fmt"

	"parallax-banner/internal/utils"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	sessionObject   = "session"
	sessionProperty = "last"
)

// SessionState is what survives a restart.
type SessionState struct {
	BannerIndex int    `yaml:"banner_index"`
	BannerName  string `yaml:"banner_name"`
}

// Session persists SessionState through gdata. A nil manager keeps the
// state in memory only.
type Session struct {
	manager *gdata.Manager
	state   SessionState
}

// OpenSession opens the per-user data store for appName. When the store
// cannot be opened the session falls back to memory and the error is logged.
func OpenSession(appName string) *Session {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		utils.Warn("Session storage unavailable, nothing will be remembered: %v", err)
		manager = nil
	}
	s := NewSession(manager)
	if err := s.Load(); err != nil {
		utils.Warn("Failed to load session: %v (using defaults)", err)
	}
	return s
}

func NewSession(manager *gdata.Manager) *Session {
	return &Session{manager: manager}
}

func (s *Session) Load() error {
	s.state = SessionState{}
	if s.manager == nil || !s.manager.ObjectPropExists(sessionObject, sessionProperty) {
		return nil
	}

	data, err := s.manager.LoadObjectProp(sessionObject, sessionProperty)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	var state SessionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if state.BannerIndex < 0 {
		state.BannerIndex = 0
	}
	s.state = state
	utils.Debug("Session loaded: banner %d (%s)", state.BannerIndex, state.BannerName)
	return nil
}

func (s *Session) Save() error {
	if s.manager == nil {
		return nil
	}

	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.manager.SaveObjectProp(sessionObject, sessionProperty, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Session) State() SessionState { return s.state }

// SetBanner records the selected catalog entry. Call Save to persist it.
func (s *Session) SetBanner(index int, name string) {
	s.state.BannerIndex = index
	s.state.BannerName = name
}

// Persistent reports whether state outlives the process.
func (s *Session) Persistent() bool { return s.manager != nil }

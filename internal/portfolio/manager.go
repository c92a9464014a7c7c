package portfolio

import (
	"sync"

	"go.uber.org/zap"

	"SetupRadar/internal/model"
)

// Manager holds the default portfolio configuration new sessions start from.
// Sessions copy it; edits inside a session never write back here.
type Manager struct {
	mu       sync.Mutex
	profile  *Profile
	filePath string
}

// NewManager creates a Manager, loading the profile from disk or seeding it with fallback.
// An empty filePath keeps the profile in memory only.
func NewManager(filePath string, fallback model.PortfolioConfig) (*Manager, error) {
	p := &Profile{}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	if p.Capital == 0 && p.RiskPct == 0 {
		p.PortfolioConfig = fallback
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{profile: p, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns a copy of the current portfolio configuration.
func (m *Manager) Get() model.PortfolioConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.PortfolioConfig
}

// Update validates and persists a new default configuration.
func (m *Manager) Update(cfg model.PortfolioConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.profile.PortfolioConfig
	m.profile.PortfolioConfig = cfg
	if err := m.save(); err != nil {
		m.profile.PortfolioConfig = prev
		return err
	}
	zap.L().Info("portfolio profile updated",
		zap.Float64("capital", cfg.Capital), zap.Float64("risk_pct", cfg.RiskPct))
	return nil
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.profile)
}

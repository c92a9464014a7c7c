package portfolio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"SetupRadar/internal/model"
)

// Profile is the persisted portfolio configuration.
type Profile struct {
	model.PortfolioConfig
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadState reads the profile from a JSON file. Returns a zero profile if the file doesn't exist.
func LoadState(filePath string) (*Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Profile{}, nil
		}
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveState writes the profile to a JSON file.
func SaveState(filePath string, p *Profile) error {
	p.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/intersection-simulations/pkg/policy"
	"github.com/picogrid/intersection-simulations/pkg/simulation"
)

// DirName is the per-user settings directory under $HOME
const DirName = ".aim-sim"

// Profile is a saved set of positional run arguments
type Profile struct {
	Name        string   `yaml:"name"`
	Args        []string `yaml:"args"`
	Description string   `yaml:"description,omitempty"`
}

// Validate checks the arguments form a buildable run request
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if len(p.Args) == 0 {
		return fmt.Errorf("profile %s has no arguments", p.Name)
	}
	req, err := policy.ParseArgs(p.Args)
	if err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	// checks the token and, for FCFS, the buffers; the globals are discarded
	if _, err := policy.Build(req, simulation.NewGlobals()); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return nil
}

// Profiles holds the saved run profiles
type Profiles struct {
	Profiles []Profile `yaml:"profiles"`
}

// Find returns the profile with the given name
func (p *Profiles) Find(name string) (Profile, bool) {
	for _, profile := range p.Profiles {
		if profile.Name == name {
			return profile, true
		}
	}
	return Profile{}, false
}

// Add appends a profile, rejecting duplicates and incomplete arguments
func (p *Profiles) Add(profile Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	if _, exists := p.Find(profile.Name); exists {
		return fmt.Errorf("profile %s already exists", profile.Name)
	}
	p.Profiles = append(p.Profiles, profile)
	return nil
}

// Remove deletes a profile and reports whether it existed
func (p *Profiles) Remove(name string) bool {
	kept := make([]Profile, 0, len(p.Profiles))
	for _, profile := range p.Profiles {
		if profile.Name != name {
			kept = append(kept, profile)
		}
	}
	removed := len(kept) != len(p.Profiles)
	p.Profiles = kept
	return removed
}

// Dir returns the per-user settings directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// ProfilesPath returns the default location of the profiles file
func ProfilesPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.yaml"), nil
}

// LoadProfiles loads profiles from the default location
func LoadProfiles() (*Profiles, error) {
	path, err := ProfilesPath()
	if err != nil {
		return nil, err
	}
	return LoadProfilesFromFile(path)
}

// LoadProfilesFromFile loads profiles from a specific file. A missing file
// yields the built-in profiles.
func LoadProfilesFromFile(path string) (*Profiles, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return getDefaultProfiles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	return &profiles, nil
}

// SaveProfiles saves profiles to the default location
func SaveProfiles(profiles *Profiles) error {
	path, err := ProfilesPath()
	if err != nil {
		return err
	}
	return SaveProfilesToFile(profiles, path)
}

// SaveProfilesToFile saves profiles to a specific file
func SaveProfilesToFile(profiles *Profiles, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}

	return nil
}

// getDefaultProfiles returns one profile per policy on the sample data
func getDefaultProfiles() *Profiles {
	return &Profiles{
		Profiles: []Profile{
			{
				Name:        "signal-2phases",
				Args:        []string{"SIGNAL", "data/2phases", ".25", "0.10", "0.25"},
				Description: "Two-phase signal timing",
			},
			{
				Name:        "fcfs-2phases",
				Args:        []string{"FCFS", "data/2phases", ".25", "0.10", "0.25"},
				Description: "Reservation FCFS with default buffers",
			},
			{
				Name:        "stop-2phases",
				Args:        []string{"STOP", "data/2phases", "0", "0", "0"},
				Description: "All-way stop",
			},
		},
	}
}

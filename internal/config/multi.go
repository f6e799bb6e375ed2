package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoConfig = errors.New("no config selected")

// DefaultLabel is the profile created by `config init`. It cannot be removed.
const DefaultLabel = "Default"

// Store is a directory of named YAML profiles, one of which is active.
type Store struct {
	Root string
}

func DefaultStore() Store {
	return Store{Root: ConfigRoot()}
}

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "novel-dl")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "novel-dl")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "novel-dl")
}

func (s Store) ConfigsDir() string {
	return filepath.Join(s.Root, "configs")
}

func (s Store) CurrentLabelFile() string {
	return filepath.Join(s.Root, "current_config")
}

func (s Store) PathFor(label string) string {
	return filepath.Join(s.ConfigsDir(), label+".yaml")
}

func (s Store) ensureDirs() error {
	return os.MkdirAll(s.ConfigsDir(), 0755)
}

func (s Store) CurrentLabel() (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(s.CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func (s Store) ActiveConfigPath() (string, error) {
	label, err := s.CurrentLabel()
	if err != nil || label == "" {
		return "", ErrNoConfig
	}

	return s.PathFor(label), nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func (s Store) List() ([]ConfigInfo, error) {
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.ConfigsDir())
	if err != nil {
		return nil, err
	}

	activeLabel, _ := s.CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		label := strings.TrimSuffix(name, ".yaml")
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(s.ConfigsDir(), name),
			Active: label == activeLabel,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s Store) Switch(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("label cannot be empty")
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}

	if _, err := os.Stat(s.PathFor(label)); err != nil {
		return fmt.Errorf("config %q does not exist", label)
	}

	return os.WriteFile(s.CurrentLabelFile(), []byte(label), 0644)
}

// Add copies the YAML file at srcPath into a new profile after checking that
// it parses.
func (s Store) Add(label, srcPath string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("label cannot be empty")
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}

	dst := s.PathFor(label)
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("config %q already exists", label)
	}

	if _, err := loadYAML(srcPath); err != nil {
		return fmt.Errorf("invalid config %s: %w", srcPath, err)
	}

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, raw, 0644)
}

// Create writes a new profile holding the defaults.
func (s Store) Create(label string) (string, error) {
	if strings.TrimSpace(label) == "" {
		return "", errors.New("label cannot be empty")
	}
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path := s.PathFor(label)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config %q already exists", label)
	}

	return path, SaveYAML(DefaultConfig(), path)
}

func (s Store) Rename(oldLabel, newLabel string) error {
	if strings.TrimSpace(newLabel) == "" {
		return errors.New("new label cannot be empty")
	}
	if oldLabel == DefaultLabel {
		return errors.New("cannot rename the Default config")
	}

	oldPath, newPath := s.PathFor(oldLabel), s.PathFor(newLabel)
	if _, err := os.Stat(oldPath); err != nil {
		return fmt.Errorf("config %q does not exist", oldLabel)
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := s.CurrentLabel(); active == oldLabel {
		return os.WriteFile(s.CurrentLabelFile(), []byte(newLabel), 0644)
	}

	return nil
}

// Remove deletes a profile. Removing the active one makes Default active.
func (s Store) Remove(label string) (switched bool, err error) {
	if strings.TrimSpace(label) == "" {
		return false, errors.New("label cannot be empty")
	}
	if label == DefaultLabel {
		return false, errors.New("cannot remove the Default config")
	}

	path := s.PathFor(label)
	if _, err := os.Stat(path); err != nil {
		return false, fmt.Errorf("config %q does not exist", label)
	}

	if active, _ := s.CurrentLabel(); active == label {
		if err := s.Switch(DefaultLabel); err != nil {
			return false, fmt.Errorf("failed switching to Default: %w", err)
		}
		switched = true
	}

	return switched, os.Remove(path)
}

// Init writes the Default profile if missing and makes it active. It returns
// os.ErrExist when the profile was already there.
func (s Store) Init() (string, error) {
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	defPath := s.PathFor(DefaultLabel)
	_, statErr := os.Stat(defPath)

	if statErr != nil {
		if err := SaveYAML(DefaultConfig(), defPath); err != nil {
			return "", err
		}
	}

	if err := os.WriteFile(s.CurrentLabelFile(), []byte(DefaultLabel), 0644); err != nil {
		return "", err
	}

	if statErr == nil {
		return defPath, os.ErrExist
	}

	return defPath, nil
}

// Reset overwrites the active profile with the defaults.
func (s Store) Reset() (string, error) {
	path, err := s.ActiveConfigPath()
	if err != nil {
		return "", err
	}

	return path, SaveYAML(DefaultConfig(), path)
}

// Load reads the active profile as stored, without command line overrides.
func (s Store) Load() (*Config, string, error) {
	path, err := s.ActiveConfigPath()
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", path, err)
	}

	return cfg, path, nil
}

// Package skills installs the grok-search skill into the host's skills
// directory, keeping a persistent copy that survives plugin updates.
package skills

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const skillDirName = "grok-search"

type Manager struct {
	persistentDir string // ~/.grokscout/skill
	skillsDir     string // host skills dir
}

// NewManager resolves the default directories. The host skills path can be
// overridden with GROKSCOUT_SKILLS_PATH.
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}
	skillsDir := os.Getenv("GROKSCOUT_SKILLS_PATH")
	if skillsDir == "" {
		skillsDir = filepath.Join(homeDir, ".grokscout", "skills")
	}
	return &Manager{
		persistentDir: filepath.Join(homeDir, ".grokscout", "skill"),
		skillsDir:     skillsDir,
	}, nil
}

// NewManagerAt creates a manager with explicit directories.
func NewManagerAt(persistentDir, skillsDir string) *Manager {
	return &Manager{persistentDir: persistentDir, skillsDir: skillsDir}
}

// InstalledDir is where the skill lives when installed.
func (m *Manager) InstalledDir() string {
	return filepath.Join(m.skillsDir, skillDirName)
}

// Migrate seeds the persistent dir from the embedded payload on first run.
// An existing persistent copy is left alone; it may carry user edits.
func (m *Manager) Migrate() error {
	if _, err := os.Lstat(m.persistentDir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("check persistent skill dir: %w", err)
	}
	if err := os.MkdirAll(m.persistentDir, 0755); err != nil {
		return fmt.Errorf("create persistent skill dir: %w", err)
	}
	if err := writePayload(m.persistentDir); err != nil {
		return fmt.Errorf("extract skill payload: %w", err)
	}
	log.Printf("[skills] skill migrated to persistent dir: %s", m.persistentDir)
	return nil
}

// Install copies the persistent skill into the host skills dir, replacing
// any previous install. A symlinked source is refused.
func (m *Manager) Install() error {
	info, err := os.Lstat(m.persistentDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("persistent skill dir does not exist: %s", m.persistentDir)
	}
	if err != nil {
		return fmt.Errorf("check persistent skill dir: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("skill source is a symlink, refusing to install: %s", m.persistentDir)
	}

	target := m.InstalledDir()
	if err := os.MkdirAll(m.skillsDir, 0755); err != nil {
		return fmt.Errorf("create skills dir: %w", err)
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("remove previous install: %w", err)
	}
	if err := copyTree(m.persistentDir, target); err != nil {
		return fmt.Errorf("install skill: %w", err)
	}
	log.Printf("[skills] skill installed to %s", target)
	return nil
}

// Uninstall moves the installed skill back to the persistent dir, so edits
// made in place are kept. Missing install is a no-op.
func (m *Manager) Uninstall() error {
	source := m.InstalledDir()
	if _, err := os.Lstat(source); os.IsNotExist(err) {
		return nil
	}

	// The installed copy may be newer than the persistent one
	if err := os.RemoveAll(m.persistentDir); err != nil {
		return fmt.Errorf("clear persistent skill dir: %w", err)
	}
	if err := os.Rename(source, m.persistentDir); err != nil {
		// Cross-device rename fails; fall back to copy + remove
		if copyErr := copyTree(source, m.persistentDir); copyErr != nil {
			return fmt.Errorf("move skill back: %w", err)
		}
		if err := os.RemoveAll(source); err != nil {
			return fmt.Errorf("remove installed skill: %w", err)
		}
	}
	log.Printf("[skills] skill moved back to persistent dir: %s", m.persistentDir)
	return nil
}

// Sync brings the install state in line with enable_skill.
func (m *Manager) Sync(enabled bool) error {
	if err := m.Migrate(); err != nil {
		return err
	}
	if enabled {
		return m.Install()
	}
	return m.Uninstall()
}

// copyTree copies a directory recursively. Symlinks are recreated as
// links, never followed.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			dest, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(dest, target)
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

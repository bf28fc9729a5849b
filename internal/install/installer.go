// Package install registers the grokscout MCP server in known MCP client
// configuration files.
package install

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

const serverName = "grokscout"

// ConfigPath represents a known location for MCP settings
type ConfigPath struct {
	Name string
	Path string
}

// GetUserConfigPaths returns a list of candidate paths for MCP configurations
func GetUserConfigPaths() []ConfigPath {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []ConfigPath{
		{
			Name: "Cursor",
			Path: filepath.Join(home, ".cursor/mcp.json"),
		},
		{
			Name: "Claude Code CLI",
			Path: filepath.Join(home, ".claude.json"),
		},
		{
			Name: "Kilo Code",
			Path: filepath.Join(home, ".kiro/settings/mcp.json"),
		},
	}

	if runtime.GOOS == "darwin" {
		paths = append(paths,
			ConfigPath{
				Name: "Claude Desktop",
				Path: filepath.Join(home, "Library/Application Support/Claude/claude_desktop_config.json"),
			},
			ConfigPath{
				Name: "Cline (VS Code)",
				Path: filepath.Join(home, "Library/Application Support/Code/User/globalStorage/saoudrizwan.claude-dev/settings/cline_mcp_settings.json"),
			},
			ConfigPath{
				Name: "VS Code (Generic MCP)",
				Path: filepath.Join(home, "Library/Application Support/Code/User/mcp.json"),
			},
		)
	}

	return paths
}

// MCPServerConfig represents individual server settings
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Install patches every existing client config with a grokscout entry.
// Only files that already exist are touched.
func Install(binaryPath string) error {
	configs := GetUserConfigPaths()
	installedCount := 0

	for _, cfg := range configs {
		if _, err := os.Stat(cfg.Path); os.IsNotExist(err) {
			continue
		}

		log.Printf("Found config for %s at %s. Patching...", cfg.Name, cfg.Path)

		if err := patchConfigFile(cfg.Path, binaryPath); err != nil {
			log.Printf("Failed to patch %s: %v", cfg.Name, err)
			continue
		}

		installedCount++
		fmt.Printf("Configured %s\n", cfg.Name)
	}

	if installedCount == 0 {
		return fmt.Errorf("no supported MCP configurations found. Please make sure at least one of these is installed: Cursor, Claude Desktop, Claude Code, Cline, or Kilo Code")
	}

	return nil
}

// Uninstall removes the grokscout entry from every client config that has one.
func Uninstall() error {
	for _, cfg := range GetUserConfigPaths() {
		if _, err := os.Stat(cfg.Path); os.IsNotExist(err) {
			continue
		}
		if err := removeFromConfigFile(cfg.Path); err != nil {
			log.Printf("Failed to update %s: %v", cfg.Name, err)
		}
	}
	return nil
}

func patchConfigFile(path, binaryPath string) error {
	root, servers, err := readConfig(path)
	if err != nil {
		return err
	}

	servers[serverName] = MCPServerConfig{
		Command: binaryPath,
		Args:    []string{"serve"},
	}

	return writeConfig(path, root, servers)
}

func removeFromConfigFile(path string) error {
	root, servers, err := readConfig(path)
	if err != nil {
		return err
	}
	if _, ok := servers[serverName]; !ok {
		return nil
	}
	delete(servers, serverName)
	return writeConfig(path, root, servers)
}

// readConfig keeps the whole document as a map so unrelated top-level keys
// survive the rewrite. Some client configs (.claude.json) carry much more
// than mcpServers.
func readConfig(path string) (map[string]json.RawMessage, map[string]MCPServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	root := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &root); err != nil {
		root = make(map[string]json.RawMessage)
	}

	servers := make(map[string]MCPServerConfig)
	if raw, ok := root["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return nil, nil, fmt.Errorf("mcpServers has unexpected shape: %w", err)
		}
	}
	return root, servers, nil
}

func writeConfig(path string, root map[string]json.RawMessage, servers map[string]MCPServerConfig) error {
	raw, err := json.Marshal(servers)
	if err != nil {
		return err
	}
	root["mcpServers"] = raw

	newData, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, newData, 0644)
}

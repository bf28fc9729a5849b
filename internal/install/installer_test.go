package install

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestPatchConfigFileAddsEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	if err := os.WriteFile(path, []byte(`{"mcpServers":{"other":{"command":"/bin/other"}}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := patchConfigFile(path, "/usr/local/bin/grokscout"); err != nil {
		t.Fatalf("patchConfigFile failed: %v", err)
	}

	_, servers, err := readConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := servers["grokscout"]
	if !ok {
		t.Fatal("grokscout entry not added")
	}
	if entry.Command != "/usr/local/bin/grokscout" {
		t.Errorf("command = %q", entry.Command)
	}
	if len(entry.Args) != 1 || entry.Args[0] != "serve" {
		t.Errorf("args = %v, want [serve]", entry.Args)
	}
	if _, ok := servers["other"]; !ok {
		t.Error("existing server entry lost")
	}
}

func TestPatchConfigFilePreservesUnrelatedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude.json")
	doc := `{"theme":"dark","projects":{"/x":{"history":[]}},"mcpServers":{}}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	if err := patchConfigFile(path, "/bin/grokscout"); err != nil {
		t.Fatalf("patchConfigFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"theme", "projects", "mcpServers"} {
		if _, ok := root[key]; !ok {
			t.Errorf("top-level key %q lost on rewrite", key)
		}
	}
}

func TestPatchConfigFileEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := patchConfigFile(path, "/bin/grokscout"); err != nil {
		t.Fatalf("patchConfigFile failed: %v", err)
	}
	_, servers, err := readConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := servers["grokscout"]; !ok {
		t.Error("grokscout entry not added to empty file")
	}
}

func TestRemoveFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	if err := os.WriteFile(path, []byte(`{"mcpServers":{"grokscout":{"command":"/bin/grokscout"},"other":{"command":"/bin/other"}}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := removeFromConfigFile(path); err != nil {
		t.Fatalf("removeFromConfigFile failed: %v", err)
	}
	_, servers, err := readConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := servers["grokscout"]; ok {
		t.Error("grokscout entry still present")
	}
	if _, ok := servers["other"]; !ok {
		t.Error("unrelated entry removed")
	}
}

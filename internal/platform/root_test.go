package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// /tmp/
	//   data/ (tally.yaml)
	//     subdir/
	//       nested/
	//   empty/

	baseDir := t.TempDir()
	dataDir := filepath.Join(baseDir, "data")
	subDir := filepath.Join(dataDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, ConfigFileName), nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: dataDir, wantRoot: dataDir},
		{name: "Start in Subdir", startPath: subDir, wantRoot: dataDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: dataDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}

func TestFindRoot_Database(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultDatabase), nil, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := FindRoot(filepath.Join(dir))
	if err != nil || filepath.Clean(got) != filepath.Clean(dir) {
		t.Errorf("FindRoot() = %v, %v; want %v", got, err, dir)
	}
}

func TestResolveDataPath(t *testing.T) {
	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, "tally-dev")

	tests := []struct {
		name      string
		dir       string
		forceTemp bool
		expected  string
	}{
		{name: "Normal Mode - Current Dir", dir: ".", expected: "."},
		{name: "Normal Mode - Empty", dir: "", expected: "."},
		{name: "Normal Mode - Specific Path", dir: "/some/path", expected: "/some/path"},
		{name: "Dev Mode - Empty Path", dir: "", forceTemp: true, expected: filepath.Join(devBase, "default")},
		{name: "Dev Mode - Current Dir", dir: ".", forceTemp: true, expected: filepath.Join(devBase, "default")},
		{name: "Dev Mode - Relative Name", dir: "ledger", forceTemp: true, expected: filepath.Join(devBase, "ledger")},
		{name: "Dev Mode - Clean Name", dir: "../bad/path", forceTemp: true, expected: filepath.Join(devBase, "path")},
		{name: "Dev Mode - Temp Dir Kept", dir: filepath.Join(tempRoot, "my-test"), forceTemp: true, expected: filepath.Join(tempRoot, "my-test")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDataPath(tt.dir, tt.forceTemp); got != tt.expected {
				t.Errorf("ResolveDataPath(%q, %v) = %q; want %q", tt.dir, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	if !IsDevRun() {
		t.Errorf("IsDevRun() = false; want true inside go test")
	}
}

func TestDataDir(t *testing.T) {
	if got := DataDir("/explicit"); got != "/explicit" {
		t.Errorf("DataDir(flag) = %q", got)
	}
	t.Setenv(HomeEnv, "/from/env")
	if got := DataDir(""); got != "/from/env" {
		t.Errorf("DataDir(env) = %q", got)
	}
}

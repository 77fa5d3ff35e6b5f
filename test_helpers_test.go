package scopedio_test

import (
	"os"
	"path/filepath"
	"testing"
)

const (
	testMissingFile = "does-not-exist.txt"
	testPayload     = "hello"
)

func writeFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()

	fullPath := filepath.Join(root, rel)

	err := os.WriteFile(fullPath, data, 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}

	return fullPath
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	return string(data)
}

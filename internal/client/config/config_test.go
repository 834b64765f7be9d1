package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	got := Load(nil)
	want := &Config{ServerURL: "http://127.0.0.1:8080", RequestTimeout: 10 * time.Second}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_JSONThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"http://json:1","request_timeout":"3s"}`), 0o600))

	got := Load([]string{"-c", path})
	assert.Equal(t, "http://json:1", got.ServerURL)
	assert.Equal(t, 3*time.Second, got.RequestTimeout)

	got = Load([]string{"-c", path, "-a", "http://flag:2/", "-t", "7"})
	assert.Equal(t, "http://flag:2", got.ServerURL)
	assert.Equal(t, 7*time.Second, got.RequestTimeout)
}

func TestLoad_BadJSONPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	assert.Panics(t, func() { Load([]string{"-config", path}) })
	assert.Panics(t, func() { Load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}) })
}

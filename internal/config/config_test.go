package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, k := range []string{"API_URL", "LOG_LEVEL", "LOG_FORMAT", "TIMEOUT", "OUTPUT", "KEYRING_BACKEND"} {
		t.Setenv(EnvPrefix+"_"+k, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+"_"+k))
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	c, err := Load(LoadOptions{Path: filepath.Join(dir, "config.json"), EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, Config{
		APIURL:    DefaultAPIURL,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Timeout:   DefaultTimeout,
		Output:    DefaultOutput,
	}, c)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, SaveTo(cfgPath, Config{APIURL: "https://file.example.com", Timeout: 30 * time.Second, Output: "json"}))

	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("TRIPMART_TIMEOUT=45s\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("TRIPMART_TIMEOUT") })

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"--api-url", "localhost:9000/api"}))

	c, err := Load(LoadOptions{Path: cfgPath, EnvFile: envPath, Flags: flags})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", c.APIURL, "flag wins and is normalized")
	assert.Equal(t, 45*time.Second, c.Timeout, "environment wins over file")
	assert.Equal(t, "json", c.Output, "unset flag does not override the file")
}

func TestLoad_Invalid(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.json")

	require.NoError(t, SaveTo(cfgPath, Config{Output: "yaml"}))
	_, err := Load(LoadOptions{Path: cfgPath, EnvFile: filepath.Join(dir, "none")})
	assert.Error(t, err)

	require.NoError(t, SaveTo(cfgPath, Config{APIURL: "ftp://nope"}))
	_, err = Load(LoadOptions{Path: cfgPath, EnvFile: filepath.Join(dir, "none")})
	assert.Error(t, err)
}

func TestSaveTo_Permissions(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveTo(p, Config{APIURL: "https://a.example", Timeout: time.Minute}))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"api_url":"https://a.example","timeout":"1m0s"}`, string(b))
}

func TestLoad_LogFormat(t *testing.T) {
	dir := isolate(t)
	opts := LoadOptions{Path: filepath.Join(dir, "config.json"), EnvFile: filepath.Join(dir, "none")}

	t.Setenv(EnvPrefix+"_LOG_FORMAT", "json")
	c, err := Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "json", c.LogFormat)

	t.Setenv(EnvPrefix+"_LOG_FORMAT", "xml")
	_, err = Load(opts)
	assert.Error(t, err)
}

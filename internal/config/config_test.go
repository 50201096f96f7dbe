package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 7070, cfg.GRPCPort)
	assert.Equal(t, 9100, cfg.MetricsPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Resolver.Cache)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "versiond.yml", `schema_version: v1
http:
  addr: 127.0.0.1:9000
  rate_limit: 120
resolver:
  cache: true
  cache_ttl: 30s
manifest: resources.yml
`)
	t.Setenv("VERSIOND__GRPC_PORT", "7171")
	t.Setenv("VERSIOND__LOG__LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, 120, cfg.HTTP.RateLimit)
	assert.Equal(t, 7171, cfg.GRPCPort)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Resolver.Cache)
	assert.Equal(t, 30*time.Second, cfg.Resolver.CacheTTL)
	assert.Equal(t, filepath.Join(dir, "resources.yml"), cfg.Manifest)
}

func TestLoad_BadSchema(t *testing.T) {
	path := write(t, t.TempDir(), "versiond.yml", "schema_version: v2\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, `"v2" not supported`)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "resources.yml", `schema_version: v1
resources:
  - name: widgets
    transform_base: widgets.WidgetTransform
    media_type: application/vnd.versiond.widget+json
source:
  kind: kafka
  driver: sarama
  config: kafka_source.yml
sinks:
  - name: legacy
    driver: kafka
    resources: [widgets]
    version: 0
    kafka:
      brokers: [localhost:9092]
      topic: widgets.v0
  - name: console
    driver: stdout
`)
	m, confPath, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Resources, 1)
	assert.Equal(t, "widgets", m.Resources[0].Kind)
	assert.Equal(t, filepath.Join(dir, "kafka_source.yml"), confPath)

	require.Len(t, m.Sinks, 2)
	require.NotNil(t, m.Sinks[0].Version)
	assert.Equal(t, 0, *m.Sinks[0].Version)
	assert.Nil(t, m.Sinks[1].Version)
	assert.Equal(t, "widgets.v0", m.Sinks[0].Kafka.Topic)
}

func TestLoadManifest_Invalid(t *testing.T) {
	cases := map[string]string{
		"schema":         "schema_version: v3\n",
		"no name":        "resources:\n  - kind: widgets\n",
		"duplicate":      "resources:\n  - name: a\n  - name: a\n",
		"unknown target": "resources:\n  - name: a\nsinks:\n  - name: s\n    driver: stdout\n    resources: [b]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := write(t, t.TempDir(), "resources.yml", body)
			_, _, err := LoadManifest(path)
			assert.Error(t, err)
		})
	}
}

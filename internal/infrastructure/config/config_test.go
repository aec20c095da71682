package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
  mode: debug
database:
  host: 127.0.0.1
  port: 3306
  user: root
  password: secret
  dbname: bookstore
  charset: utf8mb4
  parse_time: true
  loc: Asia/Shanghai
jwt:
  secret: test-secret
notification:
  workers: 2
  queue_size: 8
delete_policy:
  publishers: ignore
`

func chdirWithConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(content), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_FileDefaultsAndEnv(t *testing.T) {
	chdirWithConfig(t, sampleYAML)
	t.Setenv("BOOKSTORE_DATABASE_PASSWORD", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 2, cfg.Notification.Workers)
	assert.Equal(t, 5*time.Second, cfg.Notification.WriteTimeout)
	assert.Equal(t, DeletePolicyIgnore, cfg.DeletePolicy.Publishers)
	assert.Equal(t, DeletePolicyRestrict, cfg.DeletePolicy.Categories)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png"}, cfg.Storage.AllowedExts)
}

func TestLoad_RejectsUnknownDeletePolicy(t *testing.T) {
	chdirWithConfig(t, sampleYAML+"\n  books: cascade\n")

	_, err := Load()
	assert.ErrorContains(t, err, "delete_policy.books")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		User: "root", Password: "pw", Host: "db", Port: 3306,
		DBName: "bookstore", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t,
		"root:pw@tcp(db:3306)/bookstore?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai",
		d.DSN())
}

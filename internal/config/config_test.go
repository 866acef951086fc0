package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
api:
  port: "9090"
  allowed_cors_domains:
    - http://localhost:3000
postgres:
  host: db
  user: camp
  password: secret
  dbname: market
market:
  collect_mode: atomic
cron:
  interval: 30s
store:
  url: https://store.example.com
  public_key: anon
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, "dev", conf.API.Environment)
	assert.Equal(t, CollectModeAtomic, conf.Market.CollectMode)
	assert.Equal(t, 30*time.Second, conf.Cron.Interval)
	assert.Equal(t, "market_updates", conf.Notify.Channel)
	assert.Equal(t, "anon", conf.Store.PublicKey)
	assert.Equal(t, "host=db port=5432 user=camp password=secret dbname=market sslmode=disable", conf.Postgres.DSN())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("POSTGRES_PASSWORD_PARAMETER", "/camp/db-password")
	t.Setenv("API_PORT", "7070")

	conf, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "/camp/db-password", conf.Postgres.PasswordParameter)
	assert.True(t, conf.NeedsSecrets())
	assert.Equal(t, "7070", conf.API.Port)
}

func TestLoad_InvalidCollectMode(t *testing.T) {
	_, err := Load(writeConfig(t, "market:\n  collect_mode: eventually\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestPostgresConfig_DSNWithTimeZone(t *testing.T) {
	c := PostgresConfig{Host: "h", Port: 1, User: "u", Password: "p", DBName: "d", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable TimeZone=UTC", c.DSN())
}

type fakeParameterStore struct {
	values map[string]string
	calls  int
}

func (f *fakeParameterStore) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	v, ok := f.values[*in.Name]
	if !ok {
		return nil, errors.New("parameter not found")
	}

	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: &v}}, nil
}

func TestResolveSecrets(t *testing.T) {
	store := &fakeParameterStore{values: map[string]string{
		"/camp/db-password": "from-ssm",
		"/camp/cron-key":    "cron-from-ssm",
	}}

	conf, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)
	conf.Postgres.PasswordParameter = "/camp/db-password"
	conf.API.CronSigningKeyParameter = "/camp/cron-key"

	require.NoError(t, ResolveSecrets(context.Background(), conf, store))
	assert.Equal(t, 2, store.calls)
	assert.Equal(t, "host=db port=5432 user=camp password=from-ssm dbname=market sslmode=disable", conf.Postgres.DSN())
	assert.Equal(t, "cron-from-ssm", conf.API.CronSigningKey)
}

func TestResolveSecrets_NothingConfigured(t *testing.T) {
	store := &fakeParameterStore{}

	conf, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.False(t, conf.NeedsSecrets())

	require.NoError(t, ResolveSecrets(context.Background(), conf, store))
	assert.Zero(t, store.calls)
	assert.Equal(t, "secret", conf.Postgres.Password)
}

func TestResolveSecrets_MissingParameter(t *testing.T) {
	store := &fakeParameterStore{values: map[string]string{"/camp/empty": ""}}

	conf := &AppConfig{API: &APIConfig{}, Postgres: &PostgresConfig{PasswordParameter: "/camp/unknown"}}
	assert.Error(t, ResolveSecrets(context.Background(), conf, store))

	conf = &AppConfig{API: &APIConfig{CronSigningKeyParameter: "/camp/empty"}, Postgres: &PostgresConfig{}}
	assert.ErrorIs(t, ResolveSecrets(context.Background(), conf, store), ErrEmptyParameter)
}

func TestLoad_DatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://camp:secret@db:5432/market?sslmode=require")

	conf, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "postgres://camp:secret@db:5432/market?sslmode=require", conf.Postgres.DSN())
	assert.Equal(t, "host=db port=5432 user=camp password=secret dbname=postgres sslmode=disable", conf.Postgres.AdminDSN())
}

package dao

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testNotifyChannel = "market_updates_test"

var (
	testDB  *gorm.DB
	testDSN string
)

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, dao tests will be skipped: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=camp_economy",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres: %v", err)
	}
	_ = resource.Expire(180)

	testDSN = fmt.Sprintf("postgres://postgres:secret@%s/camp_economy?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = 90 * time.Second
	if err = pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			return err
		}
		testDB = db
		return nil
	}); err != nil {
		log.Fatalf("could not connect to postgres: %v", err)
	}

	if err = InitTables(testDB, testNotifyChannel); err != nil {
		log.Fatalf("could not init tables: %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Printf("could not purge postgres: %v", err)
	}

	os.Exit(code)
}

// newTestDAO returns a DAO over an empty market table.
func newTestDAO(t *testing.T) *MarketDAO {
	t.Helper()

	if testDB == nil {
		t.Skip("postgres container unavailable")
	}

	if err := testDB.Exec("TRUNCATE market RESTART IDENTITY").Error; err != nil {
		t.Fatalf("truncate market: %v", err)
	}

	return NewMarketDAO(testDB)
}

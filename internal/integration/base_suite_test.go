package integration_test

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/metinatakli/box-office-ledger/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const (
	dbName         = "box_office"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
)

const (
	seedFile  = "testdata/ledger_up.sql"
	resetFile = "testdata/ledger_down.sql"
)

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
}

func (s *BaseSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping container tests in short mode")
	}

	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	s.Require().NoError(err, "failed to start db container")
	s.dbContainer = postgresContainer

	redisContainer, err := getCacheContainer(ctx)
	s.Require().NoError(err, "failed to start cache container")
	s.cacheContainer = redisContainer

	cfg := app.Config{
		Mode:     app.ModeServe,
		Port:     3000,
		Env:      "test",
		TimeZone: "UTC",
		LockTTL:  time.Minute,
		DB: app.DBConfig{
			DSN:          postgresContainer.ConnectionString,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			URL:          redisContainer.ConnectionString,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		SeatCheck: app.SeatCheckConfig{
			Offset:     3 * time.Minute,
			Dispatcher: app.DispatcherLog,
			QueueKey:   "boxoffice:test:seat-checks",
		},
	}

	testApp, err := newTestApp(cfg)
	s.Require().NoError(err, "cannot initialize app")

	s.app = testApp
}

func (s *BaseSuite) SetupTest() {
	executeSQLFile(s.T(), s.app.DB, resetFile)
	executeSQLFile(s.T(), s.app.DB, seedFile)
	s.Require().NoError(s.app.Redis.FlushAll(context.Background()).Err())
}

func (s *BaseSuite) TearDownSuite() {
	if s.app != nil {
		s.app.Close()
	}
	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

// Scenario is one request against the routes and what it should produce.
// Body and WantBody are JSON; WantBody is compared structurally with
// requestId and timestamp ignored.
type Scenario struct {
	Name       string
	Method     string
	Path       string
	Body       string
	WantStatus int
	WantBody   string
	Before     func(t testing.TB, app *TestApp)
	After      func(t testing.TB, app *TestApp, body []byte)
}

func (sc Scenario) Run(t *testing.T, testApp *TestApp) {
	t.Run(sc.Name, func(t *testing.T) {
		if sc.Before != nil {
			sc.Before(t, testApp)
		}

		status, body := doRequest(t, testApp, sc.Method, sc.Path, sc.Body)
		assert.Equal(t, sc.WantStatus, status, string(body))

		if sc.WantBody != "" {
			compareResponse(t, body, sc.WantBody)
		}

		if sc.After != nil {
			sc.After(t, testApp, body)
		}
	})
}

// runScenarios reseeds the ledger before every scenario so they stay independent.
func (s *BaseSuite) runScenarios(scenarios []Scenario) {
	for _, scenario := range scenarios {
		s.SetupTest()
		scenario.Run(s.T(), s.app)
	}
}

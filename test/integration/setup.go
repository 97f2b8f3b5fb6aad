package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/vncsmyrnk/ballot/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/core/services"
	"github.com/vncsmyrnk/ballot/internal/storage"
)

const (
	jwtSecret     = "test-secret"
	voterTokenKey = "integration-voter-key"
)

type TestApp struct {
	DB          *sql.DB
	Stores      *storage.Stores
	Server      *httptest.Server
	Client      *http.Client
	Recorder    *services.AuditRecorder
	Tokenizer   *services.VoterTokenizer
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername(user),
		tcpostgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T, opts ...services.VoteServiceOption) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx, db))

	stores := storage.NewPostgres(db)
	logger := zerolog.Nop()
	metrics := services.NewMetrics(prometheus.NewRegistry())

	tokenizer, err := services.NewVoterTokenizer([]byte(voterTokenKey))
	require.NoError(t, err)
	recorder := services.NewAuditRecorder(stores.Audit, logger, metrics, services.DefaultAuditBufferSize)

	eligibility := services.NewEligibilityChecker(stores.Elections, stores.Candidates, nil)
	opts = append([]services.VoteServiceOption{
		services.WithStorageTimeout(5 * time.Second),
		services.WithMetrics(metrics),
	}, opts...)
	voteSvc := services.NewVoteService(eligibility, stores.UnitOfWork, stores.Ledger, stores.Votes, recorder, tokenizer, opts...)
	resultSvc := services.NewResultService(stores.Elections, stores.Candidates, stores.Votes, logger)
	electionSvc := services.NewElectionService(stores.Elections, stores.Candidates, recorder)

	router := handler.NewHandler(logger, handler.Handlers{
		Votes:     handler.NewVoteHandler(voteSvc),
		Elections: handler.NewElectionHandler(electionSvc, resultSvc),
		Admin:     handler.NewAdminHandler(electionSvc, services.NewAuditService(stores.Audit)),
		Auth:      handler.NewAdminAuth(jwtSecret),
		Ping:      stores.Ping,
	})

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Stores:      stores,
		Server:      server,
		Client:      server.Client(),
		Recorder:    recorder,
		Tokenizer:   tokenizer,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Recorder.Close(ctx); err != nil {
		t.Logf("audit recorder did not drain: %v", err)
	}
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func (app *TestApp) adminToken(t *testing.T) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  "admin-integration",
		"role": "admin",
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signedToken
}

func (app *TestApp) request(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

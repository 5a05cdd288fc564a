package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/config"
	"ripple/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:           "development",
		Port:          "8430",
		JWTSecret:     "test_secret_for_handlers",
		JWTIssuer:     "ripple-api",
		JWTAudience:   "ripple-clients",
		JWTExpiryMins: 60,
		RateLimitRPM:  300,
	}
}

// setupTestServer builds a Server over an in-memory database with routes
// mounted on a fresh Fiber app. Redis is absent, so notifications and the
// user cache are no-ops.
func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: databases vanish per connection, keep exactly one.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	s, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	s.SetupRoutes(app)

	return s, app
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// registerAndLogin creates an account via the HTTP surface and returns a
// valid bearer token for it.
func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	creds := map[string]string{"username": username, "password": "Password123!"}

	resp := doJSON(t, app, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &token)
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

// createPostHTTP creates a post through the API and returns its ID.
func createPostHTTP(t *testing.T, app *fiber.App, token, content string) uint {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/posts/", token,
		map[string]string{"content": content})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &post)
	require.NotZero(t, post.ID)
	return post.ID
}

func postPath(id uint, suffix string) string {
	if suffix == "" {
		return fmt.Sprintf("/posts/%d", id)
	}
	return fmt.Sprintf("/posts/%d/%s", id, suffix)
}

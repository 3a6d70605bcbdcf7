package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/capability"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/handler"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/middleware"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pool"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/service"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/spectral"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/store"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/worker"
	ws "github.com/AhmedShehab1/computational-wave-lab-sub001/internal/websocket"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app  *fiber.App
	auth *middleware.AuthMiddleware
}

// setupApp creates a Fiber app wired like main.go but against the
// in-memory job store, so no Redis is needed.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	jobStore := store.NewMemory()
	validate := validator.New()

	hub := ws.NewHub()
	go hub.Run()

	caps := capability.Detect()
	engine := spectral.NewEngine(caps, 0)
	jobRunner := worker.New(engine, validate, worker.Options{})

	jobPool := pool.New(pool.Config{PoolSize: 2, MaxQueueDepth: 8}, jobRunner)
	t.Cleanup(jobPool.Close)

	jobService := service.NewJobService(jobStore, jobPool, hub)
	jobHandler := handler.NewJobHandler(jobService, validate)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(nil) // nil client → limiter disabled

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		queued, busy, units := jobPool.Stats()
		return c.JSON(fiber.Map{
			"status": "ok",
			"pool": fiber.Map{
				"queued": queued,
				"busy":   busy,
				"units":  units,
			},
		})
	})

	api := app.Group("/api", authMiddleware.Authenticate())

	jobs := api.Group("/jobs")
	jobs.Post("/decode", rateLimiter.SubmitLimit("decode", 10000), jobHandler.SubmitDecode)
	jobs.Post("/histogram", rateLimiter.SubmitLimit("histogram", 10000), jobHandler.SubmitHistogram)
	jobs.Post("/mix", rateLimiter.SubmitLimit("mix", 10000), jobHandler.SubmitMix)
	jobs.Post("/beam", rateLimiter.SubmitLimit("beam", 10000), jobHandler.SubmitBeam)
	jobs.Get("/status/:jobId", jobHandler.Status)
	jobs.Get("/result/:jobId", jobHandler.Result)
	jobs.Post("/cancel/:jobId", jobHandler.Cancel)

	return &testApp{app: app, auth: authMiddleware}
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T, ta *testApp) string {
	t.Helper()
	token, err := ta.auth.GenerateToken("test-user-123")
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, ta *testApp, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t, ta)
	return doRequest(ta.app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// jsonBody marshals a request payload to a JSON string.
func jsonBody(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return string(raw)
}

// pollStatus polls the status endpoint until the job reaches the given
// status or the deadline passes, returning the final status body.
func pollStatus(t *testing.T, ta *testApp, jobID, want string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	var last map[string]interface{}
	for time.Now().Before(deadline) {
		resp, err := doAuthRequest(t, ta, http.MethodGet, "/api/jobs/status/"+jobID, "")
		if err != nil {
			t.Fatalf("status request failed: %v", err)
		}
		last = parseJSON(t, resp)
		if last["status"] == want {
			return last
		}
		if s, ok := last["status"].(string); ok && (s == "failed" || s == "canceled") && s != want {
			t.Fatalf("job %s reached %q while waiting for %q: %v", jobID, s, want, last)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached %q, last status: %v", jobID, want, last)
	return nil
}

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "ngo-donation-ledger/internal/adapter/http/handler"
	redisStorage "ngo-donation-ledger/internal/adapter/storage/redis"
	"ngo-donation-ledger/internal/core/domain"
	"ngo-donation-ledger/internal/core/ports"
	"ngo-donation-ledger/internal/service"
	"ngo-donation-ledger/pkg/logger"
	"ngo-donation-ledger/pkg/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack on in-memory repos and miniredis.
// It exercises the real HTTP layer, middleware, handlers and services
// end-to-end; only the storage engines are substituted.

const ownerIdentity = domain.Identity("id_integration_owner")

type testApp struct {
	server       *httptest.Server
	redis        *miniredis.Miniredis
	tokenSvc     ports.TokenService
	notifier     *captureNotifier
	donationRepo *inMemoryDonationRepo
}

func newTestApp(t *testing.T) *testApp {
	return buildTestApp(t, false)
}

func newTestAppWithRateLimit(t *testing.T) *testApp {
	return buildTestApp(t, true)
}

func buildTestApp(t *testing.T, rateLimit bool) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	log := logger.New("debug", false)
	m := metrics.NewWith(prometheus.NewRegistry())
	notifier := newCaptureNotifier()

	ngoRepo := newInMemoryNGORepo()
	donationRepo := newInMemoryDonationRepo()
	walletRepo := newInMemoryWalletRepo()
	verifierRepo := newInMemoryVerifierRepo()
	accountRepo := newInMemoryAccountRepo()
	transactor := newInMemoryTransactor()

	hashSvc := service.NewHashService()
	tokenSvc := service.NewTokenService("test-jwt-secret-key-32bytes!!", "test-issuer", 24*time.Hour)

	authSvc := service.NewAuthService(accountRepo, walletRepo, hashSvc, tokenSvc, log)
	verifierSvc := service.NewVerifierService(verifierRepo, notifier, m, ownerIdentity, log)
	registrySvc := service.NewRegistryService(ngoRepo, walletRepo, transactor, verifierSvc, notifier, m, log)
	donationSvc := service.NewDonationService(donationRepo, ngoRepo, walletRepo, transactor, notifier, m, log)
	walletSvc := service.NewWalletService(walletRepo, transactor, log)

	var rlStore *redisStorage.RateLimitStore
	if rateLimit {
		rlStore = redisStorage.NewRateLimitStore(rdb)
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		RegistrySvc:    registrySvc,
		DonationSvc:    donationSvc,
		VerifierSvc:    verifierSvc,
		WalletSvc:      walletSvc,
		TokenSvc:       tokenSvc,
		NGORepo:        ngoRepo,
		DonationRepo:   donationRepo,
		RateLimitStore: rlStore,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:       server,
		redis:        mr,
		tokenSvc:     tokenSvc,
		notifier:     notifier,
		donationRepo: donationRepo,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// --- Helpers ---

func (a *testApp) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", envelope)
	return data
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	code, _ := envelope["error_code"].(string)
	return code
}

// registerAccount creates an account and returns its minted identity.
func (a *testApp) registerAccount(t *testing.T, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	resp := a.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeData(t, resp)
	identity, _ := data["identity"].(string)
	require.NotEmpty(t, identity)
	return identity
}

func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	resp := a.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// ownerToken mints a JWT for the configured owner identity directly via the
// token service; no account backs it.
func (a *testApp) ownerToken(t *testing.T) string {
	t.Helper()
	token, _, err := a.tokenSvc.Generate(ownerIdentity)
	require.NoError(t, err)
	return token
}

// setupVerifiedNGO registers an account, registers its organization and
// moves it to Verified. Returns (identity, token).
func (a *testApp) setupVerifiedNGO(t *testing.T, username, email string) (string, string) {
	t.Helper()
	identity := a.registerAccount(t, username, "StrongPass123!")
	token := a.login(t, username, "StrongPass123!")

	body := fmt.Sprintf(`{"name":"Org %s","description":"Integration test org","email":%q}`, username, email)
	resp := a.do(t, http.MethodPost, "/api/v1/ngos", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeData(t, resp)
	require.Equal(t, "PENDING", data["status"])

	verifyResp := a.do(t, http.MethodPost, "/api/v1/ngos/"+identity+"/verify", a.ownerToken(t), "")
	require.Equal(t, http.StatusOK, verifyResp.StatusCode)
	verifyResp.Body.Close()

	return identity, token
}

func (a *testApp) deposit(t *testing.T, token string, amount int64) {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/v1/wallets/deposit", token, fmt.Sprintf(`{"amount":%d}`, amount))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	identity := app.registerAccount(t, "donor1", "StrongPass123!")
	assert.Contains(t, identity, "id_")

	token := app.login(t, "donor1", "StrongPass123!")
	assert.NotEmpty(t, token)
}

func TestIntegration_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerAccount(t, "donor1", "StrongPass123!")

	resp := app.do(t, http.MethodPost, "/api/v1/auth/register", "", `{"username":"donor1","password":"OtherPass456!"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "AUTH_002", decodeError(t, resp))
}

func TestIntegration_LoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerAccount(t, "donor1", "StrongPass123!")

	resp := app.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"username":"donor1","password":"WrongPass!"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_001", decodeError(t, resp))
}

func TestIntegration_JWT_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp := app.do(t, http.MethodGet, "/api/v1/wallets/balance", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_NGOLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	identity := app.registerAccount(t, "ngo1", "StrongPass123!")
	token := app.login(t, "ngo1", "StrongPass123!")
	owner := app.ownerToken(t)

	// Register: lands in Pending.
	resp := app.do(t, http.MethodPost, "/api/v1/ngos", token, `{"name":"Clean Water Initiative","description":"Wells","email":"water@example.org"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, identity, data["identity"])

	// Owner verifies.
	verifyResp := app.do(t, http.MethodPost, "/api/v1/ngos/"+identity+"/verify", owner, "")
	require.Equal(t, http.StatusOK, verifyResp.StatusCode)
	verifyResp.Body.Close()

	getResp := app.do(t, http.MethodGet, "/api/v1/ngos/"+identity, "", "")
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, "VERIFIED", decodeData(t, getResp)["status"])

	// Suspend, then confirm the state is terminal.
	suspendResp := app.do(t, http.MethodPost, "/api/v1/ngos/"+identity+"/suspend", owner, "")
	require.Equal(t, http.StatusOK, suspendResp.StatusCode)
	suspendResp.Body.Close()

	reverifyResp := app.do(t, http.MethodPost, "/api/v1/ngos/"+identity+"/verify", owner, "")
	assert.Equal(t, http.StatusConflict, reverifyResp.StatusCode)
	assert.Equal(t, "NGO_004", decodeError(t, reverifyResp))

	getResp2 := app.do(t, http.MethodGet, "/api/v1/ngos/"+identity, "", "")
	assert.Equal(t, "SUSPENDED", decodeData(t, getResp2)["status"])
}

func TestIntegration_NGOUniqueness(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerAccount(t, "ngo1", "StrongPass123!")
	token1 := app.login(t, "ngo1", "StrongPass123!")
	app.registerAccount(t, "ngo2", "StrongPass123!")
	token2 := app.login(t, "ngo2", "StrongPass123!")

	resp := app.do(t, http.MethodPost, "/api/v1/ngos", token1, `{"name":"First","email":"shared@example.org"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Same identity cannot register twice.
	again := app.do(t, http.MethodPost, "/api/v1/ngos", token1, `{"name":"First Again","email":"other@example.org"}`)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
	assert.Equal(t, "NGO_001", decodeError(t, again))

	// Email binds to the first claimant.
	stolen := app.do(t, http.MethodPost, "/api/v1/ngos", token2, `{"name":"Second","email":"shared@example.org"}`)
	assert.Equal(t, http.StatusConflict, stolen.StatusCode)
	assert.Equal(t, "NGO_002", decodeError(t, stolen))

	// Lookup by email resolves to the winner.
	byEmail := app.do(t, http.MethodGet, "/api/v1/ngos/by-email?email=shared@example.org", "", "")
	require.Equal(t, http.StatusOK, byEmail.StatusCode)
	assert.Equal(t, "First", decodeData(t, byEmail)["name"])
}

func TestIntegration_VerifierAuthorization(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ngoIdentity := app.registerAccount(t, "ngo1", "StrongPass123!")
	ngoToken := app.login(t, "ngo1", "StrongPass123!")
	resp := app.do(t, http.MethodPost, "/api/v1/ngos", ngoToken, `{"name":"Org","email":"org@example.org"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// An unprivileged caller cannot verify.
	strangerIdentity := app.registerAccount(t, "stranger", "StrongPass123!")
	strangerToken := app.login(t, "stranger", "StrongPass123!")
	denied := app.do(t, http.MethodPost, "/api/v1/ngos/"+ngoIdentity+"/verify", strangerToken, "")
	assert.Equal(t, http.StatusForbidden, denied.StatusCode)
	assert.Equal(t, "AUTHZ_001", decodeError(t, denied))

	// Only the owner can grow the verifier set.
	deniedAdd := app.do(t, http.MethodPost, "/api/v1/verifiers", strangerToken, fmt.Sprintf(`{"identity":%q}`, strangerIdentity))
	assert.Equal(t, http.StatusForbidden, deniedAdd.StatusCode)

	owner := app.ownerToken(t)
	added := app.do(t, http.MethodPost, "/api/v1/verifiers", owner, fmt.Sprintf(`{"identity":%q}`, strangerIdentity))
	require.Equal(t, http.StatusCreated, added.StatusCode)
	added.Body.Close()

	status := app.do(t, http.MethodGet, "/api/v1/verifiers/"+strangerIdentity, "", "")
	require.Equal(t, http.StatusOK, status.StatusCode)
	assert.Equal(t, true, decodeData(t, status)["verifier"])

	// Newly minted verifier can now verify.
	verified := app.do(t, http.MethodPost, "/api/v1/ngos/"+ngoIdentity+"/verify", strangerToken, "")
	assert.Equal(t, http.StatusOK, verified.StatusCode)
	verified.Body.Close()

	// The owner can never be removed, not even by themselves.
	removeOwner := app.do(t, http.MethodDelete, "/api/v1/verifiers/"+string(ownerIdentity), owner, "")
	assert.Equal(t, http.StatusForbidden, removeOwner.StatusCode)
	assert.Equal(t, "VER_003", decodeError(t, removeOwner))

	// Removing the verifier revokes the privilege.
	removed := app.do(t, http.MethodDelete, "/api/v1/verifiers/"+strangerIdentity, owner, "")
	require.Equal(t, http.StatusOK, removed.StatusCode)
	removed.Body.Close()

	ngo2Identity := app.registerAccount(t, "ngo2", "StrongPass123!")
	ngo2Token := app.login(t, "ngo2", "StrongPass123!")
	resp2 := app.do(t, http.MethodPost, "/api/v1/ngos", ngo2Token, `{"name":"Org2","email":"org2@example.org"}`)
	require.Equal(t, http.StatusCreated, resp2.StatusCode)
	resp2.Body.Close()

	revoked := app.do(t, http.MethodPost, "/api/v1/ngos/"+ngo2Identity+"/verify", strangerToken, "")
	assert.Equal(t, http.StatusForbidden, revoked.StatusCode)
}

func TestIntegration_DonationEndToEnd(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ngoIdentity, _ := app.setupVerifiedNGO(t, "ngo1", "org@example.org")

	app.registerAccount(t, "donor1", "StrongPass123!")
	donorToken := app.login(t, "donor1", "StrongPass123!")
	app.deposit(t, donorToken, 100000)

	// First committed donation takes id 0.
	resp := app.do(t, http.MethodPost, "/api/v1/donations", donorToken, fmt.Sprintf(`{"ngo":%q,"amount":30000,"project_id":"wells"}`, ngoIdentity))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, float64(0), data["id"])
	assert.Equal(t, float64(30000), data["amount"])
	assert.Equal(t, "wells", data["project_id"])

	// Donor balance reduced, recipient total increased.
	balResp := app.do(t, http.MethodGet, "/api/v1/wallets/balance", donorToken, "")
	assert.Equal(t, float64(70000), decodeData(t, balResp)["balance"])

	ngoResp := app.do(t, http.MethodGet, "/api/v1/ngos/"+ngoIdentity, "", "")
	assert.Equal(t, float64(30000), decodeData(t, ngoResp)["total_donations"])

	// Ledger entry is readable by id.
	getResp := app.do(t, http.MethodGet, "/api/v1/donations/0", "", "")
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, ngoIdentity, decodeData(t, getResp)["ngo"])

	missing := app.do(t, http.MethodGet, "/api/v1/donations/1", "", "")
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestIntegration_DonationToUnverifiedNGO(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Registered but never verified.
	ngoIdentity := app.registerAccount(t, "ngo1", "StrongPass123!")
	ngoToken := app.login(t, "ngo1", "StrongPass123!")
	resp := app.do(t, http.MethodPost, "/api/v1/ngos", ngoToken, `{"name":"Org","email":"org@example.org"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	app.registerAccount(t, "donor1", "StrongPass123!")
	donorToken := app.login(t, "donor1", "StrongPass123!")
	app.deposit(t, donorToken, 50000)

	denied := app.do(t, http.MethodPost, "/api/v1/donations", donorToken, fmt.Sprintf(`{"ngo":%q,"amount":1000}`, ngoIdentity))
	assert.Equal(t, http.StatusUnprocessableEntity, denied.StatusCode)
	assert.Equal(t, "DON_001", decodeError(t, denied))

	// The aborted attempt leaves no ledger entry.
	count, err := app.donationRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestIntegration_DonationInsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ngoIdentity, _ := app.setupVerifiedNGO(t, "ngo1", "org@example.org")

	app.registerAccount(t, "donor1", "StrongPass123!")
	donorToken := app.login(t, "donor1", "StrongPass123!")
	app.deposit(t, donorToken, 500)

	denied := app.do(t, http.MethodPost, "/api/v1/donations", donorToken, fmt.Sprintf(`{"ngo":%q,"amount":1000}`, ngoIdentity))
	assert.Equal(t, http.StatusUnprocessableEntity, denied.StatusCode)
	assert.Equal(t, "DON_003", decodeError(t, denied))

	// Balance untouched and no gap in the ledger: the next success takes id 0.
	balResp := app.do(t, http.MethodGet, "/api/v1/wallets/balance", donorToken, "")
	assert.Equal(t, float64(500), decodeData(t, balResp)["balance"])

	ok := app.do(t, http.MethodPost, "/api/v1/donations", donorToken, fmt.Sprintf(`{"ngo":%q,"amount":500}`, ngoIdentity))
	require.Equal(t, http.StatusCreated, ok.StatusCode)
	assert.Equal(t, float64(0), decodeData(t, ok)["id"])
}

func TestIntegration_SelfDonation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ngoIdentity, ngoToken := app.setupVerifiedNGO(t, "ngo1", "org@example.org")
	app.deposit(t, ngoToken, 10000)

	resp := app.do(t, http.MethodPost, "/api/v1/donations", ngoToken, fmt.Sprintf(`{"ngo":%q,"amount":4000}`, ngoIdentity))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(0), decodeData(t, resp)["id"])

	// Value returns to the same wallet; only the ledger and total move.
	balResp := app.do(t, http.MethodGet, "/api/v1/wallets/balance", ngoToken, "")
	assert.Equal(t, float64(10000), decodeData(t, balResp)["balance"])

	ngoResp := app.do(t, http.MethodGet, "/api/v1/ngos/"+ngoIdentity, "", "")
	assert.Equal(t, float64(4000), decodeData(t, ngoResp)["total_donations"])
}

func TestIntegration_EventsEmittedOnCommit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ngoIdentity, _ := app.setupVerifiedNGO(t, "ngo1", "org@example.org")

	app.registerAccount(t, "donor1", "StrongPass123!")
	donorToken := app.login(t, "donor1", "StrongPass123!")
	app.deposit(t, donorToken, 5000)

	resp := app.do(t, http.MethodPost, "/api/v1/donations", donorToken, fmt.Sprintf(`{"ngo":%q,"amount":5000}`, ngoIdentity))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	types := app.notifier.Types()
	assert.Contains(t, types, domain.EventNGORegistered)
	assert.Contains(t, types, domain.EventNGOVerified)
	assert.Contains(t, types, domain.EventDonationReceived)
}

func TestIntegration_Stats(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ngoIdentity, _ := app.setupVerifiedNGO(t, "ngo1", "org@example.org")
	app.registerAccount(t, "donor1", "StrongPass123!")
	donorToken := app.login(t, "donor1", "StrongPass123!")
	app.deposit(t, donorToken, 3000)

	for i := 0; i < 3; i++ {
		resp := app.do(t, http.MethodPost, "/api/v1/donations", donorToken, fmt.Sprintf(`{"ngo":%q,"amount":1000}`, ngoIdentity))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	statsResp := app.do(t, http.MethodGet, "/api/v1/stats", "", "")
	require.Equal(t, http.StatusOK, statsResp.StatusCode)
	data := decodeData(t, statsResp)
	assert.Equal(t, float64(1), data["total_ngos"])
	assert.Equal(t, float64(3), data["total_donations"])
}

func TestIntegration_RateLimit(t *testing.T) {
	app := newTestAppWithRateLimit(t)
	defer app.close()

	app.registerAccount(t, "donor1", "StrongPass123!")

	// The login rule allows 10 attempts per window; the 11th gets throttled.
	body := `{"username":"donor1","password":"WrongPass!"}`
	for i := 0; i < 10; i++ {
		resp := app.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	throttled := app.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, throttled.StatusCode)
	assert.NotEmpty(t, throttled.Header.Get("Retry-After"))
	assert.Equal(t, "RATE_001", decodeError(t, throttled))
}

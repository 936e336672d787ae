package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublymus/sublyadmin/internal/config"
	"github.com/sublymus/sublyadmin/internal/models"
)

// setupAPI boots an in-memory database, seeds the operator account and
// returns a router with test-double monitoring internals.
func setupAPI(t *testing.T) (*gin.Engine, *stubDispatcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{DBDriver: "sqlite", DBPath: ":memory:"}
	require.NoError(t, InitDB(cfg))
	SetJWTSecret("test-secret")
	require.NoError(t, SeedAdmin("admin@sublymus.com", "admin"))

	d := &stubDispatcher{}
	r := gin.New()
	RegisterRoutes(r, &Monitoring{Store: stubStore{}, Poller: stubPoller{}, Dispatcher: d})
	return r, d
}

func doRequest(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/login", "", gin.H{
		"email":    "admin@sublymus.com",
		"password": "admin",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin_IssuesTokenThatOpensProtectedRoutes(t *testing.T) {
	r, _ := setupAPI(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodGet, "/api/global-status", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	r, _ := setupAPI(t)

	w := doRequest(r, http.MethodPost, "/api/login", "", gin.H{
		"email":    "admin@sublymus.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])
}

func TestProtectedRoutes_RequireValidToken(t *testing.T) {
	r, _ := setupAPI(t)

	// No header at all.
	w := doRequest(r, http.MethodGet, "/api/stores", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	w = doRequest(r, http.MethodGet, "/api/stores", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong scheme.
	req := httptest.NewRequest(http.MethodGet, "/api/stores", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth_IsPublic(t *testing.T) {
	r, _ := setupAPI(t)
	w := doRequest(r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func seedCatalog(t *testing.T) {
	t.Helper()

	owner := models.User{FullName: "Alice Kouassi", Email: "alice@sublymus.com", Status: "active"}
	require.NoError(t, DB.Create(&owner).Error)

	wallet := models.Wallet{OwnerID: &owner.ID, OwnerName: owner.FullName, EntityType: "store", Balance: 12500}
	require.NoError(t, DB.Create(&wallet).Error)

	platform := models.Wallet{EntityType: "platform", OwnerName: "Sublymus", Balance: 990000}
	require.NoError(t, DB.Create(&platform).Error)

	stores := []models.Store{
		{UserID: owner.ID, Name: "alpha-shop", Slug: "alpha-shop", IsActive: true, IsRunning: true, WalletID: &wallet.ID},
		{UserID: owner.ID, Name: "beta-shop", Slug: "beta-shop", IsActive: true, IsRunning: false},
		{UserID: owner.ID, Name: "archived", Slug: "archived", IsActive: false, IsRunning: false, Status: "suspended"},
	}
	for i := range stores {
		require.NoError(t, DB.Create(&stores[i]).Error)
	}

	for _, tx := range []models.Transaction{
		{WalletID: wallet.ID, Amount: 5000, Category: "sale", Label: "order #1042"},
		{WalletID: wallet.ID, Amount: -1200, Category: "payout", Label: "weekly payout"},
	} {
		require.NoError(t, DB.Create(&tx).Error)
	}

	require.NoError(t, DB.Create(&models.AffiliationCode{Code: "ALICE10", OwnerID: owner.ID, Uses: 4, EarnedTotal: 2000}).Error)
}

func TestStoreList_PaginatesAndSearches(t *testing.T) {
	r, _ := setupAPI(t)
	seedCatalog(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodGet, "/api/stores?page=1&limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		List []models.Store `json:"list"`
		Meta PageMeta       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.List, 2)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Limit)

	w = doRequest(r, http.MethodGet, "/api/stores?search=alpha", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.List, 1)
	assert.Equal(t, "alpha-shop", resp.List[0].Name)
}

func TestStoreGet_LoadsOwnerAndWallet(t *testing.T) {
	r, _ := setupAPI(t)
	seedCatalog(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodGet, "/api/stores/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var store models.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &store))
	assert.Equal(t, "alpha-shop", store.Name)
	require.NotNil(t, store.User)
	assert.Equal(t, "alice@sublymus.com", store.User.Email)
	require.NotNil(t, store.Wallet)
	assert.Equal(t, float64(12500), store.Wallet.Balance)

	w = doRequest(r, http.MethodGet, "/api/stores/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWalletTransactions_NewestFirst(t *testing.T) {
	r, _ := setupAPI(t)
	seedCatalog(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodGet, "/api/wallets/1/transactions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Transactions []models.Transaction `json:"transactions"`
		Pagination   struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Transactions, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)
}

func TestPlatformWallet_ReturnsPlatformRow(t *testing.T) {
	r, _ := setupAPI(t)
	seedCatalog(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodGet, "/api/platform-wallet", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var wallet models.Wallet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wallet))
	assert.Equal(t, "platform", wallet.EntityType)
	assert.Equal(t, float64(990000), wallet.Balance)
}

func TestGlobalStatus_CountsCatalog(t *testing.T) {
	r, _ := setupAPI(t)
	seedCatalog(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodGet, "/api/global-status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var gs GlobalStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gs))
	assert.Equal(t, int64(3), gs.Stores)
	assert.Equal(t, int64(2), gs.ActiveStores)
	assert.Equal(t, int64(1), gs.RunningStores)
	assert.Equal(t, int64(1), gs.Users)
	assert.Equal(t, int64(1), gs.Affiliations)
}

func TestAffiliations_IncludeOwner(t *testing.T) {
	r, _ := setupAPI(t)
	seedCatalog(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodGet, "/api/affiliations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var codes []models.AffiliationCode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &codes))
	require.Len(t, codes, 1)
	assert.Equal(t, "ALICE10", codes[0].Code)
	require.NotNil(t, codes[0].Owner)
	assert.Equal(t, "Alice Kouassi", codes[0].Owner.FullName)
}

func TestSeedAdmin_DoesNotOverwriteExistingAccount(t *testing.T) {
	r, _ := setupAPI(t)

	// Re-seeding with a different password must leave the original intact.
	require.NoError(t, SeedAdmin("admin@sublymus.com", "changed"))
	token := loginToken(t, r)
	assert.NotEmpty(t, token)
}

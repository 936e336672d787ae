// Package server provides the console's Gin-based REST API.
// All /api routes except login and health require a JWT session.
package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires up the console API on the given engine.
//
//	Public:           POST /api/login, GET /api/health
//	Protected (JWT):  monitoring + catalog routes
func RegisterRoutes(r *gin.Engine, mon *Monitoring) {
	api := r.Group("/api")

	// ── Public endpoints ─────────────────────────────────────────────────────
	api.POST("/login", handleLogin)
	api.GET("/health", handleHealth)

	// ── JWT-protected endpoints ──────────────────────────────────────────────
	auth := api.Group("/", JWTMiddleware())
	{
		// Fleet monitoring & control
		auth.GET("/monitoring", mon.handleStats)
		auth.POST("/monitoring/action", mon.handleAction)
		auth.POST("/monitoring/group-action", mon.handleGroupAction)

		// Catalog
		auth.GET("/stores", handleStoreList)
		auth.GET("/stores/:id", handleStoreGet)
		auth.GET("/users", handleUserList)
		auth.GET("/wallets/:id", handleWalletGet)
		auth.GET("/wallets/:id/transactions", handleWalletTransactions)
		auth.GET("/platform-wallet", handlePlatformWallet)
		auth.GET("/affiliations", handleAffiliations)
		auth.GET("/global-status", handleGlobalStatus)
	}
}

func errorJSON(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"status": "error", "message": msg})
}

// ── Handlers ──────────────────────────────────────────────────────────────────

// handleLogin accepts email + password and returns a signed JWT.
//
//	POST /api/login
//	Body: { "email": "admin@sublymus.com", "password": "admin" }
func handleLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errorJSON(c, http.StatusBadRequest, "email and password required")
		return
	}

	admin, err := Authenticate(body.Email, body.Password)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := GenerateJWT(admin.Email)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": 86400, // seconds
		"type":       "Bearer",
	})
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleStoreList(c *gin.Context) {
	page, limit := pageParams(c)
	stores, meta, err := ListStores(page, limit, c.Query("search"))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": stores, "meta": meta})
}

func handleStoreGet(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid id")
		return
	}
	store, err := GetStore(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "store not found")
		return
	}
	c.JSON(http.StatusOK, store)
}

func handleUserList(c *gin.Context) {
	page, limit := pageParams(c)
	users, meta, err := ListUsers(page, limit, c.Query("search"))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": users, "meta": meta})
}

func handleWalletGet(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid id")
		return
	}
	wallet, err := GetWallet(id)
	if err != nil {
		errorJSON(c, http.StatusNotFound, "wallet not found")
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func handleWalletTransactions(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	txs, total, err := ListTransactions(id, limit, offset)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"pagination":   gin.H{"total": total, "limit": limit, "offset": offset},
	})
}

func handlePlatformWallet(c *gin.Context) {
	wallet, err := PlatformWallet()
	if err != nil {
		errorJSON(c, http.StatusNotFound, "platform wallet not found")
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func handleAffiliations(c *gin.Context) {
	codes, err := ListAffiliations()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, codes)
}

func handleGlobalStatus(c *gin.Context) {
	gs, err := GetGlobalStatus()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gs)
}

// ── Param helpers ─────────────────────────────────────────────────────────────

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	return page, limit
}

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err
}

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmhub/campaign-manager-api/internal/constants"
	"github.com/dmhub/campaign-manager-api/internal/database"
	"github.com/dmhub/campaign-manager-api/internal/middleware"
	"github.com/dmhub/campaign-manager-api/internal/models"
	"github.com/dmhub/campaign-manager-api/internal/repository"
	"github.com/dmhub/campaign-manager-api/internal/services"
	"github.com/dmhub/campaign-manager-api/internal/sheet"
)

type testEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
}

type discardAssets struct{}

func (discardAssets) Save(name string, r io.Reader) (string, error) { return "/assets/" + name, nil }
func (discardAssets) Remove(name string) error                      { return nil }

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Character{},
		&models.Campaign{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	log := zap.NewNop()
	userRepo := repository.NewUserRepository(db)
	characterRepo := repository.NewCharacterRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)

	authService := services.NewAuthService(userRepo)
	linkService := services.NewLinkService(characterRepo, campaignRepo, discardAssets{}, log)
	characterService := services.NewCharacterService(characterRepo, campaignRepo, discardAssets{}, linkService, log)
	campaignService := services.NewCampaignService(campaignRepo, characterRepo, linkService, log)
	exporter := sheet.NewExporter(sheet.NewLoader(nil, ""), log)

	authHandler := NewAuthHandler(authService)
	characterHandler := NewCharacterHandler(characterService, authService, linkService, exporter)
	campaignHandler := NewCampaignHandler(campaignService)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionName, store))

	api := r.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)

	characters := api.Group("/characters")
	characters.Use(middleware.RequireAuth())
	characters.GET("", characterHandler.List)
	characters.POST("", characterHandler.Create)
	characters.GET("/:id", characterHandler.Get)
	characters.PUT("/:id", characterHandler.Update)
	characters.DELETE("/:id", characterHandler.Delete)
	characters.POST("/:id/links", characterHandler.Link)
	characters.DELETE("/:id/links/:campaignId", characterHandler.Unlink)
	characters.GET("/:id/sheet", characterHandler.ExportSheet)
	characters.POST("/:id/portrait", characterHandler.UploadPortrait)

	campaigns := api.Group("/campaigns")
	campaigns.Use(middleware.RequireAuth())
	campaigns.GET("", campaignHandler.List)
	campaigns.POST("", campaignHandler.Create)
	campaigns.GET("/:id", campaignHandler.Get)
	campaigns.PUT("/:id", campaignHandler.Update)
	campaigns.DELETE("/:id", campaignHandler.Delete)
	campaigns.DELETE("/:id/players/:characterId", campaignHandler.RemovePlayer)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &testEnv{db: db, router: r, authService: authService}
}

// signupAndLogin registers a user and returns the session cookies for
// authenticated requests.
func (e *testEnv) signupAndLogin(t *testing.T, email, displayName string) []*http.Cookie {
	t.Helper()

	_, err := e.authService.Signup(services.SignupInput{
		Email:       email,
		DisplayName: displayName,
		Password:    "supersecret",
	})
	require.NoError(t, err)

	w := e.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    email,
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

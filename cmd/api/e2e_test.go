package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/itskasymzhomartsanzhar/routr/internal/adapters/handler/http"
	"github.com/itskasymzhomartsanzhar/routr/internal/adapters/repository"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/services"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/workers"
)

const e2eBotToken = "777:E2E_TOKEN"

func signE2EInitData(values url.Values) string {
	var pairs []string
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(e2eBotToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

// setupServer wires the full stack on in-memory storage, the same
// composition main performs without a database.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	habits := repository.NewInMemoryHabitRepository()
	completions := repository.NewInMemoryCompletionRepository(habits)
	users := repository.NewInMemoryUserRepository()
	board := repository.NewInMemoryLeaderboardRepository(users)

	worker := workers.NewStreakWorker(habits, completions)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	worker.Start(ctx)

	tokenService := services.NewTokenService("e2e-secret", "routr", time.Hour, users)
	authService := services.NewAuthService(e2eBotToken, users, tokenService)
	habitService := services.NewHabitService(habits, completions, users, worker)
	statsService := services.NewStatsService(habits, completions, users)
	leaderboardService := services.NewLeaderboardService(board, users)
	bootstrapService := services.NewBootstrapService(habitService, statsService, leaderboardService, users, habits)

	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitService),
		StatsHandler:     adapterHTTP.NewStatsHandler(statsService, leaderboardService),
		BootstrapHandler: adapterHTTP.NewBootstrapHandler(bootstrapService),
		TokenService:     tokenService,
		StartTime:        time.Now(),
	})
}

func doJSON(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_MiniAppFlow(t *testing.T) {
	router := setupServer(t)

	var token string
	var habitID string

	t.Run("1. Authenticate via Telegram init data", func(t *testing.T) {
		values := url.Values{}
		values.Set("user", `{"id":90001,"username":"e2e","first_name":"EndToEnd"}`)
		values.Set("auth_date", fmt.Sprintf("%d", time.Now().Unix()))
		initData := signE2EInitData(values)

		body, _ := json.Marshal(gin.H{"init_data": initData})
		w := doJSON(router, http.MethodPost, "/api/v1/auth/telegram", "", string(body))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)
		token = resp.Token
	})

	t.Run("2. Auth error without a token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/habits", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("3. Create Habit", func(t *testing.T) {
		require.NotEmpty(t, token)

		w := doJSON(router, http.MethodPost, "/api/v1/habits", token,
			`{"title": "Morning Run", "goal": 2, "category_id": 1}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.ID)
		habitID = resp.ID
	})

	t.Run("4. Complete twice to hit the goal", func(t *testing.T) {
		require.NotEmpty(t, habitID)

		first := doJSON(router, http.MethodPost, "/api/v1/habits/"+habitID+"/complete", token, `{}`)
		require.Equal(t, http.StatusOK, first.Code)
		assert.Contains(t, first.Body.String(), `"xp_awarded":0`, "goal of 2 not yet reached")

		second := doJSON(router, http.MethodPost, "/api/v1/habits/"+habitID+"/complete", token, `{}`)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Contains(t, second.Body.String(), `"xp_awarded":10`)
		assert.Contains(t, second.Body.String(), `"completed":true`)
	})

	t.Run("5. Bootstrap reflects the day", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/app/bootstrap", token, "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Morning Run"`)
		assert.Contains(t, w.Body.String(), `"xp":10`)
	})

	t.Run("6. Update Habit", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/api/v1/habits/"+habitID, token,
			`{"title": "Evening Run", "goal": 2}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Evening Run")
	})

	t.Run("7. Delete Habit", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/api/v1/habits/"+habitID, token, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		list := doJSON(router, http.MethodGet, "/api/v1/habits", token, "")
		require.Equal(t, http.StatusOK, list.Code)
		assert.NotContains(t, list.Body.String(), habitID)
	})

	t.Run("8. Validation Error", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/habits", token, `{"goal": 3}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

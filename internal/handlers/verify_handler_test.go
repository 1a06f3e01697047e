package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistream/internal/authz"
	"vistream/internal/handlers"
	"vistream/internal/models"
	"vistream/internal/routes"
	"vistream/internal/services"
	"vistream/internal/verification"
)

type fakeSender struct {
	lastCode string
	calls    int
}

func (f *fakeSender) SendVerificationCode(email, code string, purpose models.Purpose) error {
	f.calls++
	f.lastCode = code
	return nil
}

type fakeAccounts struct {
	takenEmails map[string]bool
	users       map[string]*models.User
	finalized   *models.PendingPayload
	pwChanged   *models.PasswordChange
}

func (f *fakeAccounts) EmailTaken(email string) (bool, error) { return f.takenEmails[email], nil }

func (f *fakeAccounts) GetUserByEmail(email string) (*models.User, error) {
	return f.users[email], nil
}

func (f *fakeAccounts) HashPassword(plain string) (string, error) { return "hash:" + plain, nil }

func (f *fakeAccounts) FinalizeRegistration(payload models.PendingPayload) (*models.User, string, error) {
	f.finalized = &payload
	user := &models.User{ID: 1, RoleID: authz.RoleViewer}
	switch {
	case payload.Viewer != nil:
		user.Email = payload.Viewer.Email
		user.DisplayName = payload.Viewer.DisplayName
	case payload.Creator != nil:
		user.Email = payload.Creator.Email
		user.DisplayName = payload.Creator.DisplayName
		user.RoleID = authz.RoleCreator
	}
	return user, "test-access-token", nil
}

func (f *fakeAccounts) FinalizePasswordChange(change *models.PasswordChange) error {
	f.pwChanged = change
	return nil
}

func setupRouter(t *testing.T) (*gin.Engine, *fakeSender, *fakeAccounts) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := verification.NewStore(5*time.Minute, 3, 5*time.Minute)
	sender := &fakeSender{}
	accounts := &fakeAccounts{
		takenEmails: map[string]bool{},
		users:       map[string]*models.User{},
	}
	svc := services.NewVerificationService(store, sender, accounts, 10*time.Minute, 5)

	router := gin.New()
	routes.SetupRoutes(router,
		handlers.NewVerifyHandler(svc, accounts),
		handlers.NewPasswordHandler(svc, accounts),
	)
	return router, sender, accounts
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestViewerRegistrationFlow(t *testing.T) {
	router, sender, accounts := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"email":        "Viewer@Example.com",
		"display_name": "Viewer",
		"password":     "secret123",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Equal(t, 1, sender.calls)
	require.Len(t, sender.lastCode, 6)

	w = doJSON(t, router, http.MethodPost, "/register/confirm", gin.H{
		"email": "viewer@example.com",
		"code":  sender.lastCode,
		"role":  "viewer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string       `json:"access_token"`
		User        *models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test-access-token", resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "viewer@example.com", resp.User.Email)
	require.NotNil(t, accounts.finalized)

	// Код одноразовый.
	w = doJSON(t, router, http.MethodPost, "/register/confirm", gin.H{
		"email": "viewer@example.com",
		"code":  sender.lastCode,
		"role":  "viewer",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatorRegistrationRequiresChannel(t *testing.T) {
	router, sender, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register/creator", gin.H{
		"email":        "creator@example.com",
		"display_name": "Creator",
		"password":     "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, sender.calls)

	w = doJSON(t, router, http.MethodPost, "/register/creator", gin.H{
		"email":        "creator@example.com",
		"display_name": "Creator",
		"channel_name": "My Channel",
		"password":     "secret123",
	})
	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
}

func TestRegisterTakenEmail(t *testing.T) {
	router, sender, accounts := setupRouter(t)
	accounts.takenEmails["taken@example.com"] = true

	w := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"email":        "Taken@Example.com",
		"display_name": "Viewer",
		"password":     "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, sender.calls)
}

func TestConfirmWrongCode(t *testing.T) {
	router, sender, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"email":        "x@y.com",
		"display_name": "Viewer",
		"password":     "secret123",
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	wrong := "000000"
	if wrong == sender.lastCode {
		wrong = "000001"
	}
	w = doJSON(t, router, http.MethodPost, "/register/confirm", gin.H{
		"email": "x@y.com",
		"code":  wrong,
		"role":  "viewer",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid code")
}

func TestConfirmWithoutRequest(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/register/confirm", gin.H{
		"email": "nobody@y.com",
		"code":  "123456",
		"role":  "viewer",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no pending verification")
}

func TestPendingStatus(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/register/pending?email=x@y.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":false`)

	doJSON(t, router, http.MethodPost, "/register", gin.H{
		"email":        "x@y.com",
		"display_name": "Viewer",
		"password":     "secret123",
	})

	w = doJSON(t, router, http.MethodGet, "/register/pending?email=x@y.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":true`)
}

func TestPasswordChangeFlow(t *testing.T) {
	router, sender, accounts := setupRouter(t)
	accounts.users["user@example.com"] = &models.User{ID: 7, Email: "user@example.com"}

	w := doJSON(t, router, http.MethodPost, "/password/change", gin.H{
		"email":        "User@Example.com",
		"new_password": "newsecret",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Equal(t, 1, sender.calls)

	// Регистрационный confirm не принимает код смены пароля.
	w = doJSON(t, router, http.MethodPost, "/register/confirm", gin.H{
		"email": "user@example.com",
		"code":  sender.lastCode,
		"role":  "viewer",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/password/confirm", gin.H{
		"email": "user@example.com",
		"code":  sender.lastCode,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, accounts.pwChanged)
	assert.Equal(t, 7, accounts.pwChanged.UserID)
	assert.Equal(t, "hash:newsecret", accounts.pwChanged.NewPasswordHash)
}

func TestPasswordChangeUnknownEmailDoesNotLeak(t *testing.T) {
	router, sender, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/password/change", gin.H{
		"email":        "ghost@example.com",
		"new_password": "newsecret",
	})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 0, sender.calls)
}

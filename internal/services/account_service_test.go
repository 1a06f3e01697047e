package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistream/internal/authz"
	"vistream/internal/models"
)

type fakeUserRepo struct {
	created     []*models.User
	countCalls  []int
	countByRole map[int]int
	existing    map[string]bool
	passwords   map[int]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		countByRole: map[int]int{},
		existing:    map[string]bool{},
		passwords:   map[int]string{},
	}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	user.ID = len(f.created) + 1
	user.CreatedAt = time.Now()
	f.created = append(f.created, user)
	f.countByRole[user.RoleID]++
	return nil
}

func (f *fakeUserRepo) GetByID(id int) (*models.User, error) { return nil, nil }

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }

func (f *fakeUserRepo) ExistsByEmail(email string) (bool, error) { return f.existing[email], nil }

func (f *fakeUserRepo) UpdatePassword(id int, passwordHash string) error {
	f.passwords[id] = passwordHash
	return nil
}

func (f *fakeUserRepo) GetCountByRole(roleID int) (int, error) {
	f.countCalls = append(f.countCalls, roleID)
	return f.countByRole[roleID], nil
}

func newTestAccountService(repo *fakeUserRepo) AccountService {
	return NewAccountService(repo, nil, nil, "test-secret", time.Hour)
}

func TestFinalizeRegistrationCreator(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)

	user, token, err := svc.FinalizeRegistration(models.PendingPayload{
		Creator: &models.CreatorRegistration{
			Email:        "creator@example.com",
			DisplayName:  "Creator",
			ChannelName:  "My Channel",
			PasswordHash: "hash",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, authz.RoleCreator, user.RoleID)
	require.NotNil(t, user.ChannelName)
	assert.Equal(t, "My Channel", *user.ChannelName)

	// Для нового автора считаем общее число авторов (идёт в админский алерт).
	require.Len(t, repo.countCalls, 1)
	assert.Equal(t, authz.RoleCreator, repo.countCalls[0])

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, authz.RoleCreator, claims.RoleID)
}

func TestFinalizeRegistrationViewerSkipsCreatorAlert(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)

	user, token, err := svc.FinalizeRegistration(models.PendingPayload{
		Viewer: &models.ViewerRegistration{
			Email:        "viewer@example.com",
			DisplayName:  "Viewer",
			PasswordHash: "hash",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.RoleViewer, user.RoleID)
	assert.NotEmpty(t, token)
	assert.Empty(t, repo.countCalls)
}

func TestFinalizeRegistrationTakenEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.existing["taken@example.com"] = true
	svc := newTestAccountService(repo)

	_, _, err := svc.FinalizeRegistration(models.PendingPayload{
		Viewer: &models.ViewerRegistration{
			Email:        "taken@example.com",
			DisplayName:  "Viewer",
			PasswordHash: "hash",
		},
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.Empty(t, repo.created)
}

func TestFinalizePasswordChange(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAccountService(repo)

	require.NoError(t, svc.FinalizePasswordChange(&models.PasswordChange{
		UserID:          7,
		NewPasswordHash: "newhash",
	}))
	assert.Equal(t, "newhash", repo.passwords[7])

	require.Error(t, svc.FinalizePasswordChange(nil))
}

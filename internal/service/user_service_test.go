package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"postboard/internal/hasher"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/util"
)

func TestUserService_Register(t *testing.T) {
	valid := models.RegisterUserRequest{
		Username: "TestUser",
		Email:    "test@test.com",
		Password: "testuserpassword",
	}

	tests := []struct {
		name        string
		req         models.RegisterUserRequest
		mockSetup   func(repo *MockUserRepository, h *MockHasher)
		expectedID  int64
		expectedErr error
	}{
		{
			name: "successful registration",
			req:  valid,
			mockSetup: func(repo *MockUserRepository, h *MockHasher) {
				repo.On("ExistsByUsername", mock.Anything, "TestUser").Return(false, nil)
				repo.On("ExistsByEmail", mock.Anything, "test@test.com").Return(false, nil)
				h.On("Hash", "testuserpassword").Return("hashed", nil)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
					return u.Username == "TestUser" && u.Email == "test@test.com" && u.Password == "hashed"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*models.User).ID = 1
				}).Return(nil)
			},
			expectedID: 1,
		},
		{
			name:        "missing username",
			req:         models.RegisterUserRequest{Email: "test@test.com", Password: "testuserpassword"},
			mockSetup:   func(repo *MockUserRepository, h *MockHasher) {},
			expectedErr: ErrMissingData,
		},
		{
			name:        "missing password wins over duplicate username",
			req:         models.RegisterUserRequest{Username: "TestUser", Email: "test@test.com"},
			mockSetup:   func(repo *MockUserRepository, h *MockHasher) {},
			expectedErr: ErrMissingData,
		},
		{
			name: "duplicate username checked before email",
			req:  valid,
			mockSetup: func(repo *MockUserRepository, h *MockHasher) {
				repo.On("ExistsByUsername", mock.Anything, "TestUser").Return(true, nil)
			},
			expectedErr: ErrDuplicateUsername,
		},
		{
			name: "duplicate email",
			req:  valid,
			mockSetup: func(repo *MockUserRepository, h *MockHasher) {
				repo.On("ExistsByUsername", mock.Anything, "TestUser").Return(false, nil)
				repo.On("ExistsByEmail", mock.Anything, "test@test.com").Return(true, nil)
			},
			expectedErr: ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			h := new(MockHasher)
			tt.mockSetup(repo, h)

			svc := NewUserService(repo, h, util.NewStubClock())
			id, err := svc.Register(context.Background(), tt.req)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Zero(t, id)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}
			repo.AssertExpectations(t)
			h.AssertExpectations(t)
		})
	}
}

func TestUserService_Register_SetsCreationDate(t *testing.T) {
	repo := new(MockUserRepository)
	h := new(MockHasher)
	clock := util.NewStubClock()

	var stored *models.User
	repo.On("ExistsByUsername", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	h.On("Hash", mock.Anything).Return("hashed", nil)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.User)
	}).Return(nil)

	svc := NewUserService(repo, h, clock)
	_, err := svc.Register(context.Background(), models.RegisterUserRequest{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, clock.NowUtc(), stored.DateCreated)
	assert.Equal(t, "hashed", stored.Password)
}

func TestUserService_Register_LongMultibytePassword(t *testing.T) {
	repo := new(MockUserRepository)
	h := hasher.NewBcrypt(bcrypt.MinCost)
	password := strings.Repeat("пароль", 10)

	var stored *models.User
	repo.On("ExistsByUsername", mock.Anything, "TestUser").Return(false, nil)
	repo.On("ExistsByEmail", mock.Anything, "test@test.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.User)
	}).Return(nil)

	_, err := NewUserService(repo, h, util.NewStubClock()).Register(context.Background(), models.RegisterUserRequest{
		Username: "TestUser", Email: "test@test.com", Password: password,
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, h.Verify(stored.Password, password))
}

func TestUserService_Register_HashFailure(t *testing.T) {
	repo := new(MockUserRepository)
	h := new(MockHasher)

	repo.On("ExistsByUsername", mock.Anything, "TestUser").Return(false, nil)
	repo.On("ExistsByEmail", mock.Anything, "test@test.com").Return(false, nil)
	h.On("Hash", "testuserpassword").Return("", errors.New("bcrypt: bad cost"))

	_, err := NewUserService(repo, h, util.NewStubClock()).Register(context.Background(), models.RegisterUserRequest{
		Username: "TestUser", Email: "test@test.com", Password: "testuserpassword",
	})

	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Register_StoreFailure(t *testing.T) {
	repo := new(MockUserRepository)
	h := new(MockHasher)

	repo.On("ExistsByUsername", mock.Anything, "TestUser").Return(false, errors.New("connection refused"))

	svc := NewUserService(repo, h, util.NewStubClock())
	_, err := svc.Register(context.Background(), models.RegisterUserRequest{
		Username: "TestUser", Email: "test@test.com", Password: "testuserpassword",
	})

	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestUserService_FindByUsername(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, new(MockHasher), util.NewStubClock())

	repo.On("GetByUsername", mock.Anything, "TestUser").
		Return(&models.User{ID: 1, Username: "TestUser", Email: "test@test.com"}, nil)
	repo.On("GetByUsername", mock.Anything, "Nobody").
		Return(nil, fmt.Errorf("пользователь Nobody: %w", repository.ErrNotFound))
	repo.On("GetByUsername", mock.Anything, "Broken").
		Return(nil, errors.New("timeout"))

	user, err := svc.FindByUsername(context.Background(), "TestUser")
	require.NoError(t, err)
	assert.Equal(t, "test@test.com", user.Email)

	user, err = svc.FindByUsername(context.Background(), "Nobody")
	assert.NoError(t, err)
	assert.Nil(t, user)

	_, err = svc.FindByUsername(context.Background(), "Broken")
	assert.Error(t, err)
}

func TestUserService_FindByID(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, new(MockHasher), util.NewStubClock())

	repo.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, Username: "TestUser"}, nil)
	repo.On("GetByID", mock.Anything, int64(2)).Return(nil, repository.ErrNotFound)

	user, err := svc.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "TestUser", user.Username)

	user, err = svc.FindByID(context.Background(), 2)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserService_ListAll(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, new(MockHasher), util.NewStubClock())

	users := []models.User{
		{ID: 1, Username: "First"},
		{ID: 2, Username: "Second"},
	}
	repo.On("List", mock.Anything).Return(users, nil)

	first, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	second, err := svc.ListAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, users, first)
	assert.Equal(t, first, second)
}

func TestUserService_Delete(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, new(MockHasher), util.NewStubClock())

	repo.On("DeleteByUsername", mock.Anything, "TestUser").Return(nil)
	repo.On("DeleteByUsername", mock.Anything, "Nobody").Return(fmt.Errorf("пользователь Nobody: %w", repository.ErrNotFound))
	repo.On("DeleteByUsername", mock.Anything, "Broken").Return(errors.New("deadlock"))

	assert.NoError(t, svc.Delete(context.Background(), "TestUser"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "Nobody"), ErrUserNotFound)

	err := svc.Delete(context.Background(), "Broken")
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}

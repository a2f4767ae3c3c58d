package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"microblog/internal/model"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================
//
// Read paths and validation failures never open a transaction, so these tests
// run UserService against a mock with a nil *sqlx.DB. Write paths are covered
// against SQLite in service_test.go.

type mockUserRepository struct {
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)

	createCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	m.createCalls++
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, tx *sqlx.Tx, id int64, username string, aboutMe *string) error {
	return nil
}

func (m *mockUserRepository) TouchLastSeen(ctx context.Context, tx *sqlx.Tx, id int64, at time.Time) error {
	return nil
}

// =============================================================================
// REGISTER VALIDATION
// =============================================================================

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   model.RegisterRequest
		field string
	}{
		{
			name:  "blank username",
			req:   model.RegisterRequest{Username: "   ", Email: "a@example.com", Password: "pw"},
			field: "username",
		},
		{
			name:  "bad email",
			req:   model.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "pw"},
			field: "email",
		},
		{
			name:  "missing password",
			req:   model.RegisterRequest{Username: "alice", Email: "a@example.com"},
			field: "password",
		},
		{
			name:  "confirmation mismatch",
			req:   model.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "pw", PasswordConfirm: "other"},
			field: "password_confirm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{}
			svc := NewUserService(nil, mockRepo, nil, nil)

			user, err := svc.Register(context.Background(), &tt.req)

			if !errors.Is(err, model.ErrValidation) {
				t.Fatalf("error = %v, want validation error", err)
			}
			var verr *model.ValidationError
			if !errors.As(err, &verr) || len(verr.Fields) == 0 || verr.Fields[0].Field != tt.field {
				t.Errorf("fields = %+v, want first field %q", verr, tt.field)
			}
			if user != nil {
				t.Error("user should be nil when validation fails")
			}
			if mockRepo.createCalls != 0 {
				t.Error("Create should not be called when validation fails")
			}
		})
	}
}

// =============================================================================
// AUTHENTICATE - Table-Driven
// =============================================================================

func TestUserService_Authenticate(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testUser := &model.User{
		ID:           1,
		Username:     "testuser",
		PasswordHash: string(validHash),
	}
	dbError := errors.New("connection reset")

	tests := []struct {
		name          string
		username      string
		password      string
		mockGetByUser func(ctx context.Context, username string) (*model.User, error)
		wantErr       error
	}{
		{
			name:     "valid credentials",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr: nil,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr: model.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "nobody",
			password: "whatever",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			wantErr: model.ErrUserNotFound,
		},
		{
			name:     "storage failure passes through",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, dbError
			},
			wantErr: dbError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{getByUsernameFn: tt.mockGetByUser}
			svc := NewUserService(nil, mockRepo, nil, nil)

			user, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if user != nil {
					t.Error("user should be nil on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID != testUser.ID {
				t.Errorf("user.ID = %d, want %d", user.ID, testUser.ID)
			}
		})
	}
}

// =============================================================================
// GET BY ID
// =============================================================================

func TestUserService_GetByID(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		mockGetFn func(ctx context.Context, id int64) (*model.User, error)
		wantErr   error
	}{
		{
			name: "found",
			id:   1,
			mockGetFn: func(ctx context.Context, id int64) (*model.User, error) {
				return &model.User{ID: id, Username: "testuser"}, nil
			},
		},
		{
			name: "not found",
			id:   999,
			mockGetFn: func(ctx context.Context, id int64) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			wantErr: model.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(nil, &mockUserRepository{getByIDFn: tt.mockGetFn}, nil, nil)

			user, err := svc.GetByID(context.Background(), tt.id)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && user.ID != tt.id {
				t.Errorf("user.ID = %d, want %d", user.ID, tt.id)
			}
		})
	}
}

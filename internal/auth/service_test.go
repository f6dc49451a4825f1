package auth

import (
	"context"
	stderrors "errors"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

// Mock UserRepository for testing
type mockUserRepository struct {
	users         map[string]*Credentials // email -> credentials
	nextID        int64
	lastLogin     map[int64]time.Time
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		users: map[string]*Credentials{
			"user@example.com": {
				User:         User{ID: 1, Email: "user@example.com", Name: "User", Role: RoleUser},
				PasswordHash: string(hashedPassword),
				IsActive:     true,
			},
			"admin@example.com": {
				User:         User{ID: 2, Email: "admin@example.com", Name: "Admin", Role: RoleAdmin},
				PasswordHash: string(hashedPassword),
				IsActive:     true,
			},
			"inactive@example.com": {
				User:         User{ID: 3, Email: "inactive@example.com", Name: "Gone", Role: RoleUser},
				PasswordHash: string(hashedPassword),
				IsActive:     false,
			},
		},
		nextID:    10,
		lastLogin: map[int64]time.Time{},
	}
}

func (m *mockUserRepository) GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if c, ok := m.users[email]; ok {
		return c, nil
	}
	return nil, errors.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	for _, c := range m.users {
		if c.ID == id && c.IsActive {
			u := c.User
			return &u, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (m *mockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.returnError {
		return false, m.errorToReturn
	}
	_, ok := m.users[email]
	return ok, nil
}

func (m *mockUserRepository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	m.nextID++
	c := &Credentials{
		User:         User{ID: m.nextID, Email: email, Name: name, Role: RoleUser},
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	m.users[email] = c
	u := c.User
	return &u, nil
}

func (m *mockUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	m.lastLogin[id] = at
	return nil
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

type mockLoginHook struct {
	calls []int64
	err   error
}

func (m *mockLoginHook) ProcessForUser(ctx context.Context, userID int64, now time.Time) error {
	m.calls = append(m.calls, userID)
	return m.err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockUserRepository
		tokenGen      *JWTTokenGenerator
		ctx           context.Context
		accessSecret  string        = "test-access-secret-that-is-long-enough"
		refreshSecret string        = "test-refresh-secret-that-is-long-enough"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, nil)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens", func() {
				// Given
				dto := LoginDTO{Email: "user@example.com", Password: "correct_password"}

				// When
				tokens, err := service.Login(ctx, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
				gomega.Expect(tokens.ExpiresIn).To(gomega.Equal(int64(900)))
				gomega.Expect(tokens.User.ID).To(gomega.Equal(int64(1)))
			})

			ginkgo.It("should carry the role in the access token", func() {
				// When
				tokens, err := service.Login(ctx, LoginDTO{Email: "admin@example.com", Password: "correct_password"})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("2"))
				gomega.Expect(claims.Email).To(gomega.Equal("admin@example.com"))
				gomega.Expect(claims.Role).To(gomega.Equal(RoleAdmin))
			})

			ginkgo.It("should record the last login", func() {
				_, err := service.Login(ctx, LoginDTO{Email: "user@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockRepo.lastLogin).To(gomega.HaveKey(int64(1)))
			})
		})

		ginkgo.Context("with a login hook", func() {
			ginkgo.It("should run the hook for the user when enabled", func() {
				hook := &mockLoginHook{}
				service.SetLoginHook(hook, true)

				_, err := service.Login(ctx, LoginDTO{Email: "user@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(hook.calls).To(gomega.Equal([]int64{1}))
			})

			ginkgo.It("should still log in when the hook fails", func() {
				hook := &mockLoginHook{err: stderrors.New("boom")}
				service.SetLoginHook(hook, true)

				tokens, err := service.Login(ctx, LoginDTO{Email: "user@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
			})

			ginkgo.It("should skip the hook when disabled", func() {
				hook := &mockLoginHook{}
				service.SetLoginHook(hook, false)

				_, err := service.Login(ctx, LoginDTO{Email: "user@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(hook.calls).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return error for unknown email", func() {
				tokens, err := service.Login(ctx, LoginDTO{Email: "nonexistent@example.com", Password: "any_password"})

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens).To(gomega.BeNil())
			})

			ginkgo.It("should return error for invalid password", func() {
				tokens, err := service.Login(ctx, LoginDTO{Email: "user@example.com", Password: "wrong_password"})

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens).To(gomega.BeNil())
			})

			ginkgo.It("should reject inactive users", func() {
				_, err := service.Login(ctx, LoginDTO{Email: "inactive@example.com", Password: "correct_password"})

				gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty email", func() {
				_, err := service.Login(ctx, LoginDTO{Password: "password"})

				gomega.Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should return invalid credentials error", func() {
				mockRepo.setError(stderrors.New("database error"))

				_, err := service.Login(ctx, LoginDTO{Email: "user@example.com", Password: "correct_password"})

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
			})
		})
	})

	ginkgo.Describe("SignUp", func() {
		ginkgo.It("should create the user and issue tokens", func() {
			// Given
			dto := SignUpDTO{Name: " New Person ", Email: "New@Example.com", Password: "longpassword", ConfirmPassword: "longpassword"}

			// When
			tokens, err := service.SignUp(ctx, dto)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(tokens.User.Email).To(gomega.Equal("new@example.com"))
			gomega.Expect(tokens.User.Name).To(gomega.Equal("New Person"))
			gomega.Expect(tokens.User.Role).To(gomega.Equal(RoleUser))
			gomega.Expect(VerifyPassword(mockRepo.users["new@example.com"].PasswordHash, "longpassword")).To(gomega.Succeed())
		})

		ginkgo.It("should reject a taken email with a conflict", func() {
			dto := SignUpDTO{Name: "Dup", Email: "user@example.com", Password: "longpassword", ConfirmPassword: "longpassword"}

			_, err := service.SignUp(ctx, dto)

			gomega.Expect(err).To(gomega.MatchError(errors.ErrEmailTaken))
			gomega.Expect(errors.IsType(err, errors.ErrorTypeConflict)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject mismatched passwords", func() {
			dto := SignUpDTO{Name: "X", Email: "x@example.com", Password: "longpassword", ConfirmPassword: "different1"}

			_, err := service.SignUp(ctx, dto)

			gomega.Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject short passwords", func() {
			dto := SignUpDTO{Name: "X", Email: "x@example.com", Password: "short", ConfirmPassword: "short"}

			_, err := service.SignUp(ctx, dto)

			gomega.Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var validRefreshToken string

		ginkgo.BeforeEach(func() {
			tokens, err := service.Login(ctx, LoginDTO{Email: "user@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validRefreshToken = tokens.RefreshToken
		})

		ginkgo.It("should preserve user information in new tokens", func() {
			newTokens, err := service.RefreshTokens(ctx, validRefreshToken)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			claims, err := service.ValidateAccessToken(newTokens.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("1"))
			gomega.Expect(claims.Email).To(gomega.Equal("user@example.com"))
		})

		ginkgo.It("should not accept an access token as a refresh token", func() {
			tokens, err := service.Login(ctx, LoginDTO{Email: "user@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, tokens.AccessToken)

			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})

		ginkgo.It("should return error for malformed token", func() {
			tokens, err := service.RefreshTokens(ctx, "invalid.token.format")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(tokens).To(gomega.BeNil())
		})

		ginkgo.It("should return error for expired token", func() {
			expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, -1*time.Hour)
			expiredToken, err := expiredTokenGen.GenerateRefreshToken("1", "user@example.com", RoleUser)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, expiredToken)

			gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should return error for empty token", func() {
			claims, err := service.ValidateAccessToken("")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should return error for a token signed with another secret", func() {
			other := NewJWTTokenGenerator("another-access-secret-of-some-length", refreshSecret, accessTTL, refreshTTL)
			token, err := other.GenerateAccessToken("1", "user@example.com", RoleUser)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)

			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})

		ginkgo.It("should return error for expired token", func() {
			expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, refreshTTL)
			expiredToken, err := expiredTokenGen.GenerateAccessToken("1", "user@example.com", RoleUser)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(expiredToken)

			gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
			gomega.Expect(claims).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("GetUser", func() {
		ginkgo.It("should return the user", func() {
			user, err := service.GetUser(ctx, 2)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(user.IsAdmin()).To(gomega.BeTrue())
		})

		ginkgo.It("should return not found for unknown users", func() {
			_, err := service.GetUser(ctx, 999)

			gomega.Expect(err).To(gomega.MatchError(errors.ErrUserNotFound))
		})
	})
})

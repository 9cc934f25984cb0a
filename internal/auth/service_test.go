package auth_test

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/auth"
	"github.com/frahmantamala/bodega-inventory/pkg/logger"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testSecret = "test-secret-test-secret-test-secret"

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		repo     *mockUserRepository
		store    *mockRevocationStore
		tokens   *auth.JWTTokenGenerator
		hasher   *auth.PasswordHasher
		recorder *countingRecorder
		ctx      context.Context
	)

	BeforeEach(func() {
		hasher = auth.NewPasswordHasher(4)
		repo = newMockUserRepository(hasher)
		store = newMockRevocationStore()
		tokens = auth.NewJWTTokenGenerator(testSecret, "bodega", time.Hour)
		recorder = newCountingRecorder()
		service = auth.NewService(repo, tokens, store, hasher, time.Second, logger.Discard()).WithRecorder(recorder)
		ctx = context.Background()
	})

	login := func(username string) *auth.LoginResult {
		res, err := service.Login(ctx, auth.LoginDTO{Username: username, Password: "correct_password"})
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Describe("Login", func() {
		Context("when credentials are valid", func() {
			It("returns a token and the public profile", func() {
				res := login("manager")

				Expect(res.Token).NotTo(BeEmpty())
				Expect(res.User).To(Equal(auth.Profile{ID: 2, Username: "manager", Name: "Manager", Role: permission.RoleAdmin}))
				Expect(recorder.logins[auth.LoginSucceeded]).To(Equal(1))
			})

			It("issues distinct tokens for back-to-back logins", func() {
				first := login("clerk")
				second := login("clerk")
				Expect(first.Token).NotTo(Equal(second.Token))
			})

			It("issues a signed token carrying id, role and a random jti", func() {
				res := login("owner")

				claims, err := tokens.Parse(res.Token)
				Expect(err).NotTo(HaveOccurred())
				Expect(claims.Subject).To(Equal("3"))
				Expect(claims.Role).To(Equal(permission.RoleSuperAdmin))
				Expect(claims.ID).NotTo(BeEmpty())
				Expect(store.sessions[3]).To(ContainElement(claims.ID))
			})
		})

		Context("when credentials are invalid", func() {
			It("gives identical errors for unknown user and wrong password", func() {
				_, unknownErr := service.Login(ctx, auth.LoginDTO{Username: "ghost", Password: "correct_password"})
				_, wrongErr := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: "wrong_password"})

				Expect(unknownErr).To(MatchError(internal.ErrInvalidCredentials))
				Expect(wrongErr).To(MatchError(internal.ErrInvalidCredentials))
				Expect(unknownErr.Error()).To(Equal(wrongErr.Error()))
				Expect(recorder.logins[auth.LoginRejected]).To(Equal(2))
			})

			It("matches usernames exactly", func() {
				_, err := service.Login(ctx, auth.LoginDTO{Username: "CLERK", Password: "correct_password"})
				Expect(err).To(MatchError(internal.ErrInvalidCredentials))
			})

			It("rejects a stored value that is not a bcrypt hash", func() {
				repo.byID[1].PasswordHash = "correct_password"
				_, err := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: "correct_password"})
				Expect(err).To(MatchError(internal.ErrInvalidCredentials))
			})
		})

		Context("when input validation fails", func() {
			It("rejects an empty username", func() {
				_, err := service.Login(ctx, auth.LoginDTO{Password: "x"})
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
				Expect(err.Error()).To(ContainSubstring("username is required"))
			})

			It("rejects an empty password", func() {
				_, err := service.Login(ctx, auth.LoginDTO{Username: "clerk"})
				Expect(err.Error()).To(ContainSubstring("password is required"))
			})

			It("answers over-long input like any other failed login", func() {
				_, longUser := service.Login(ctx, auth.LoginDTO{Username: strings.Repeat("u", 40), Password: "correct_password"})
				_, longPassword := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: strings.Repeat("p", 100)})
				_, wrong := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: "wrong_password"})

				Expect(longUser).To(MatchError(internal.ErrInvalidCredentials))
				Expect(longPassword).To(MatchError(internal.ErrInvalidCredentials))
				Expect(longUser.Error()).To(Equal(wrong.Error()))
				Expect(recorder.logins[auth.LoginRejected]).To(Equal(3))
			})
		})

		Context("when the stored hash uses another cost", func() {
			It("upgrades it after a successful login", func() {
				stronger := auth.NewPasswordHasher(5)
				service = auth.NewService(repo, tokens, store, stronger, time.Second, logger.Discard())

				login("clerk")
				Expect(repo.upgrades).To(Equal(1))
				Expect(stronger.NeedsRehash(repo.byID[1].PasswordHash)).To(BeFalse())
				Expect(stronger.Verify("correct_password", repo.byID[1].PasswordHash)).To(BeTrue())

				login("clerk")
				Expect(repo.upgrades).To(Equal(1))
			})

			It("leaves the hash alone when the password is wrong", func() {
				service = auth.NewService(repo, tokens, store, auth.NewPasswordHasher(5), time.Second, logger.Discard())
				before := repo.byID[1].PasswordHash

				_, err := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: "wrong_password"})
				Expect(err).To(MatchError(internal.ErrInvalidCredentials))
				Expect(repo.byID[1].PasswordHash).To(Equal(before))
				Expect(repo.upgrades).To(BeZero())
			})
		})

		Context("when the user store fails", func() {
			It("reports unavailability, not bad credentials", func() {
				repo.setError(errDatabaseDown)

				_, err := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: "correct_password"})
				Expect(err).To(MatchError(internal.ErrAuthUnavailable))
				Expect(err).NotTo(MatchError(internal.ErrInvalidCredentials))
				Expect(recorder.logins[auth.LoginUnavailable]).To(Equal(1))
			})

			It("treats a timeout as unavailability", func() {
				repo.delay = 200 * time.Millisecond
				service = auth.NewService(repo, tokens, store, hasher, 20*time.Millisecond, logger.Discard())

				_, err := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: "correct_password"})
				Expect(err).To(MatchError(internal.ErrAuthUnavailable))
			})

			It("fails when the session cannot be tracked", func() {
				store.setError(errDatabaseDown)
				_, err := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: "correct_password"})
				Expect(err).To(MatchError(internal.ErrAuthUnavailable))
			})
		})

		It("refuses accounts with an unrecognised stored role", func() {
			repo.setRole(1, permission.Role("root"))
			_, err := service.Login(ctx, auth.LoginDTO{Username: "clerk", Password: "correct_password"})
			Expect(err).To(MatchError(internal.ErrAuthUnavailable))
		})
	})

	Describe("VerifyToken", func() {
		It("accepts a freshly issued token", func() {
			Expect(service.VerifyToken(ctx, login("clerk").Token)).To(BeTrue())
		})

		DescribeTable("rejects without erroring",
			func(token string) {
				Expect(service.VerifyToken(ctx, token)).To(BeFalse())
			},
			Entry("empty", ""),
			Entry("garbage", "not-a-token"),
			Entry("legacy timestamp token", "token-1700000000000"),
		)

		It("rejects a token signed with another secret", func() {
			other := auth.NewJWTTokenGenerator("another-secret-another-secret-1234", "bodega", time.Hour)
			forged, _, err := other.Generate(&auth.User{ID: 3, Username: "owner", Role: permission.RoleSuperAdmin})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.VerifyToken(ctx, forged)).To(BeFalse())
		})

		It("rejects an unsigned token", func() {
			claims := auth.Claims{
				Role: permission.RoleSuperAdmin,
				RegisteredClaims: jwt.RegisteredClaims{
					ID: "x", Subject: "3", Issuer: "bodega",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}
			unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
			Expect(err).NotTo(HaveOccurred())
			Expect(service.VerifyToken(ctx, unsigned)).To(BeFalse())
		})

		It("rejects an expired token", func() {
			past := auth.NewJWTTokenGenerator(testSecret, "bodega", time.Minute).
				WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
			expired, _, err := past.Generate(&auth.User{ID: 1, Username: "clerk", Role: permission.RoleUser})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.VerifyToken(ctx, expired)).To(BeFalse())
			_, err = service.ValidateToken(ctx, expired)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects a token whose user was deleted", func() {
			token := login("clerk").Token
			repo.remove(1)
			Expect(service.VerifyToken(ctx, token)).To(BeFalse())
		})

		It("returns false when the revocation list is unreachable", func() {
			token := login("clerk").Token
			store.setError(errDatabaseDown)
			Expect(service.VerifyToken(ctx, token)).To(BeFalse())

			_, err := service.ValidateToken(ctx, token)
			Expect(err).To(MatchError(auth.ErrSessionStoreUnavailable))
		})
	})

	Describe("Authenticate", func() {
		It("uses the stored role rather than the token's", func() {
			token := login("manager").Token
			repo.setRole(2, permission.RoleUser)

			p, err := service.Authenticate(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Role).To(Equal(permission.RoleUser))
			Expect(p.TokenID).NotTo(BeEmpty())
		})

		It("reports a user store failure as unavailable", func() {
			token := login("manager").Token
			repo.setError(errDatabaseDown)
			_, err := service.Authenticate(ctx, token)
			Expect(err).To(MatchError(auth.ErrSessionStoreUnavailable))
		})
	})

	Describe("RefreshProfile", func() {
		It("returns the current record", func() {
			token := login("manager").Token
			repo.byID[2].Name = "Renamed"

			profile, err := service.RefreshProfile(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Name).To(Equal("Renamed"))
		})

		It("fails for an invalid token", func() {
			_, err := service.RefreshProfile(ctx, "bad")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("Logout", func() {
		It("revokes the token", func() {
			token := login("clerk").Token
			Expect(service.Logout(ctx, token)).To(Succeed())

			_, err := service.ValidateToken(ctx, token)
			Expect(err).To(MatchError(internal.ErrTokenRevoked))
		})

		It("leaves other sessions alone", func() {
			a := login("clerk").Token
			b := login("clerk").Token
			Expect(service.Logout(ctx, a)).To(Succeed())
			Expect(service.VerifyToken(ctx, b)).To(BeTrue())
		})

		It("rejects a malformed token", func() {
			Expect(service.Logout(ctx, "junk")).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("RevokeUserSessions", func() {
		It("kills every token of the user", func() {
			a := login("manager").Token
			b := login("manager").Token
			other := login("clerk").Token

			Expect(service.RevokeUserSessions(ctx, 2)).To(Succeed())

			Expect(service.VerifyToken(ctx, a)).To(BeFalse())
			Expect(service.VerifyToken(ctx, b)).To(BeFalse())
			Expect(service.VerifyToken(ctx, other)).To(BeTrue())
		})
	})

	Describe("HashPassword", func() {
		It("never returns the plaintext", func() {
			hash, err := service.HashPassword("s3cret!")
			Expect(err).NotTo(HaveOccurred())
			Expect(hash).NotTo(ContainSubstring("s3cret!"))
			Expect(strings.HasPrefix(hash, "$2")).To(BeTrue())
		})
	})
})

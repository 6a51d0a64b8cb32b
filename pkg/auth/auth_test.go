package auth_test

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quire/pkg/auth"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func sign(secret string, claims auth.Claims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	Expect(err).NotTo(HaveOccurred())
	return token
}

func validClaims() auth.Claims {
	return auth.Claims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) AccessToken() (string, error) { return s.token, s.err }

var _ = Describe("Verifier", func() {
	clock := func() time.Time { return now }

	Context("without a secret", func() {
		v := auth.NewVerifier("").WithClock(clock)

		It("decodes the user from any signature", func() {
			user, err := v.Verify(sign("whatever", validClaims()))
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal("user-1"))
			Expect(user.Email).To(Equal("ada@example.com"))
			Expect(user.ExpiresAt).To(BeTemporally("==", now.Add(time.Hour)))
		})

		It("reports expired tokens", func() {
			claims := validClaims()
			claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
			_, err := v.Verify(sign("x", claims))
			Expect(err).To(MatchError(auth.ErrExpired))
		})

		It("rejects garbage", func() {
			_, err := v.Verify("not-a-jwt")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("requires a subject", func() {
			claims := validClaims()
			claims.Subject = ""
			_, err := v.Verify(sign("x", claims))
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("treats an empty token as signed out", func() {
			_, err := v.Verify("  ")
			Expect(err).To(MatchError(auth.ErrSignedOut))
		})
	})

	Context("with a secret", func() {
		v := auth.NewVerifier("s3cret").WithClock(clock)

		It("accepts a correctly signed token", func() {
			user, err := v.Verify(sign("s3cret", validClaims()))
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal("user-1"))
		})

		It("rejects a token signed with another key", func() {
			_, err := v.Verify(sign("other", validClaims()))
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("reports expired tokens", func() {
			claims := validClaims()
			claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
			_, err := v.Verify(sign("s3cret", claims))
			Expect(err).To(MatchError(auth.ErrExpired))
		})
	})
})

var _ = Describe("BearerToken", func() {
	DescribeTable("extracts the token",
		func(header, want string) {
			Expect(auth.BearerToken(header)).To(Equal(want))
		},
		Entry("bearer", "Bearer abc", "abc"),
		Entry("case insensitive", "bearer abc", "abc"),
		Entry("padded", "  Bearer   abc  ", "abc"),
		Entry("basic", "Basic abc", ""),
		Entry("empty", "", ""),
	)
})

var _ = Describe("Current", func() {
	v := auth.NewVerifier("").WithClock(func() time.Time { return now })

	It("returns the user and token", func() {
		token := sign("x", validClaims())
		user, got, err := auth.Current(staticTokens{token: token}, v)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.ID).To(Equal("user-1"))
		Expect(got).To(Equal(token))
	})

	It("treats a missing token as signed out", func() {
		_, _, err := auth.Current(staticTokens{}, v)
		Expect(err).To(MatchError(auth.ErrSignedOut))
	})

	It("treats an expired token as signed out", func() {
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Second))
		_, _, err := auth.Current(staticTokens{token: sign("x", claims)}, v)
		Expect(err).To(MatchError(auth.ErrSignedOut))
	})

	It("surfaces storage errors", func() {
		boom := errors.New("disk")
		_, _, err := auth.Current(staticTokens{err: boom}, v)
		Expect(err).To(MatchError(boom))
	})
})

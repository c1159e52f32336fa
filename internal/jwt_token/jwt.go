package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
)

// AccessTokenClaims are the claims of tokens issued by this service. Only the
// subject is trusted; the admin flag is always re-read from the user store.
type AccessTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AssertionClaims are minted by the upstream identity provider after it has
// authenticated the user.
type AssertionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey      []byte
	assertionSecret []byte
	issuer          string
	audience        string
}

func NewJWTService(signingKey, assertionSecret, issuer, audience string) *JWTService {
	return &JWTService{
		signingKey:      []byte(signingKey),
		assertionSecret: []byte(assertionSecret),
		issuer:          issuer,
		audience:        audience,
	}
}

// GenerateAccessToken returns a signed token and its jti.
func (s *JWTService) GenerateAccessToken(userID id.UserID, expiresIn time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signedToken, jti, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, hmacKey(s.signingKey),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		return nil, tokenError(err, "token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token claims")
	}
	return claims, nil
}

// VerifyAssertion validates an identity provider assertion and returns its claims.
func (s *JWTService) VerifyAssertion(assertion string) (*AssertionClaims, error) {
	parsed, err := jwt.ParseWithClaims(assertion, &AssertionClaims{}, hmacKey(s.assertionSecret),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, tokenError(err, "assertion")
	}

	claims, ok := parsed.Claims.(*AssertionClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid assertion claims")
	}
	return claims, nil
}

// SignAssertion mints an assertion with the shared secret. Used by the
// identity provider bridge and by tests.
func (s *JWTService) SignAssertion(email, name string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AssertionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString(s.assertionSecret)
}

func hmacKey(key []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return key, nil
	}
}

func tokenError(err error, kind string) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return dErrors.Wrap(err, dErrors.CodeUnauthenticated, kind+" has expired")
	}
	return dErrors.Wrap(err, dErrors.CodeUnauthenticated, "invalid "+kind)
}

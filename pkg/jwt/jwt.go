package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims claims estándar; el sujeto es el email del usuario. Rol y empresa no viajan en el
// token: se resuelven en cada request para que un cambio de rol tenga efecto inmediato.
type Claims struct {
	jwt.RegisteredClaims
}

// Generate genera un token JWT HS256 para subject.
func Generate(secret, subject, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	if subject == "" {
		return "", fmt.Errorf("jwt: sujeto vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma, expiración y emisor; devuelve el sujeto.
func Parse(secret, issuer, tokenString string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("claims inválidos")
	}
	if claims.Subject == "" {
		return "", errors.New("jwt: token sin sujeto")
	}
	return claims.Subject, nil
}

// Issuer adapta Generate/Parse a un emisor con configuración fija.
type Issuer struct {
	secret string
	issuer string
	ttl    time.Duration
}

// NewIssuer crea el emisor; expMinutes <= 0 usa 60 minutos.
func NewIssuer(secret, issuer string, expMinutes int) *Issuer {
	if expMinutes <= 0 {
		expMinutes = 60
	}
	return &Issuer{secret: secret, issuer: issuer, ttl: time.Duration(expMinutes) * time.Minute}
}

func (i *Issuer) Issue(subject string) (string, error) {
	return Generate(i.secret, subject, i.issuer, i.ttl)
}

func (i *Issuer) Verify(token string) (string, error) {
	return Parse(i.secret, i.issuer, token)
}

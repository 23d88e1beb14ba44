// Package credential issues signed, time-bounded editing credentials
// consumed by the external editor integration.
package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docflow/internal/config"
)

// minSecretLen is the minimum HMAC secret length accepted at construction.
const minSecretLen = 32

// DocumentClaim describes the document the credential grants access to.
type DocumentClaim struct {
	FileType string `json:"fileType"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// PermissionsClaim describes what the credential holder may do.
type PermissionsClaim struct {
	Edit    bool `json:"edit"`
	Review  bool `json:"review"`
	Comment bool `json:"comment"`
}

// UserClaim identifies the credential holder.
type UserClaim struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EditorClaims extends standard JWT claims with the editor payload.
type EditorClaims struct {
	jwt.RegisteredClaims
	Document    DocumentClaim    `json:"document"`
	Permissions PermissionsClaim `json:"permissions"`
	User        UserClaim        `json:"user"`
}

// Issuer signs editor credentials with an HMAC-SHA256 key.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
}

// NewIssuer validates the configuration and returns an Issuer.
// The secret must be at least 32 bytes.
func NewIssuer(cfg config.JWTConfig) (*Issuer, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d characters long", minSecretLen)
	}
	expiry := time.Duration(cfg.ExpirationHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Issuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   expiry,
	}, nil
}

// Issue creates a signed credential granting userID access to the document.
func (i *Issuer) Issue(documentID, fileName, fileURL, userID, userName string, canEdit bool) (string, error) {
	now := time.Now().UTC()
	claims := EditorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
		},
		Document: DocumentClaim{
			FileType: "docx",
			Key:      documentID,
			Title:    fileName,
			URL:      fileURL,
		},
		Permissions: PermissionsClaim{
			Edit:    canEdit,
			Review:  false,
			Comment: true,
		},
		User: UserClaim{ID: userID, Name: userName},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate parses and verifies a credential, returning its claims.
func (i *Issuer) Validate(tokenString string) (*EditorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &EditorClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return i.secret, nil
		},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*EditorClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

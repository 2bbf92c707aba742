package moonpsrv

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "moonpsrv"

// signingKeyFor mixes the server-wide secret with the account's password
// hash and last-logout time, the same way the teacher's server package
// does, so a password change or logout invalidates every token issued
// before it without needing a revocation list.
func signingKeyFor(secret []byte, acct Account) []byte {
	key := make([]byte, 0, len(secret)+len(acct.PasswordHash)+20)
	key = append(key, secret...)
	key = append(key, []byte(acct.PasswordHash)...)
	key = append(key, []byte(fmt.Sprintf("%d", acct.LastLogoutTime.Unix()))...)
	return key
}

func issueToken(secret []byte, acct Account) (string, error) {
	claims := &jwt.MapClaims{
		"iss": tokenIssuer,
		"sub": acct.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(signingKeyFor(secret, acct))
}

func verifyToken(ctx context.Context, tok string, secret []byte, accounts AccountStore) (Account, error) {
	var acct Account

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("get subject: %w", err)
		}
		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("parse subject id: %w", err)
		}
		acct, err = accounts.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("subject account lookup: %w", err)
		}
		return signingKeyFor(secret, acct), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithLeeway(time.Minute))
	if err != nil {
		return Account{}, New("verify token", err)
	}

	return acct, nil
}

func bearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no Authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(strings.TrimSpace(parts[0]), "bearer") {
		return "", fmt.Errorf("Authorization header not in Bearer format")
	}

	return strings.TrimSpace(parts[1]), nil
}

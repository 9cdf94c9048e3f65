package sfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLoginURL is the OAuth authorization server used when a profile
// does not name one.
const DefaultLoginURL = "https://login.salesforce.com"

// jwtBearerGrant is the OAuth 2.0 JWT bearer grant type (RFC 7523).
const jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// assertionTTL bounds the lifetime of the signed assertion.
const assertionTTL = 3 * time.Minute

// JWTConfig holds the connected-app settings of the JWT bearer flow.
type JWTConfig struct {
	LoginURL      string
	ClientID      string
	Username      string
	PrivateKeyPEM []byte
}

// Token is a session issued by the authorization server.
type Token struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
}

type oauthError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// SignAssertion builds the RS256-signed assertion for cfg.
func SignAssertion(cfg JWTConfig, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKeyPEM)
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}
	claims := jwt.RegisteredClaims{
		Issuer:    cfg.ClientID,
		Subject:   cfg.Username,
		Audience:  jwt.ClaimStrings{loginURL(cfg)},
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// FetchJWTToken exchanges a signed assertion for an access token.
func FetchJWTToken(ctx context.Context, httpClient *http.Client, cfg JWTConfig, now time.Time) (*Token, error) {
	assertion, err := SignAssertion(cfg, now)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	tokenURL := loginURL(cfg) + "/services/oauth2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var oe oauthError
		if json.Unmarshal(data, &oe) == nil && oe.Error != "" {
			return nil, &APIError{HTTPStatus: resp.StatusCode, Code: oe.Error, Message: oe.Description}
		}
		return nil, &APIError{HTTPStatus: resp.StatusCode, Message: snippet(data)}
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" || tok.InstanceURL == "" {
		return nil, fmt.Errorf("token response missing access_token or instance_url")
	}
	return &tok, nil
}

func loginURL(cfg JWTConfig) string {
	if cfg.LoginURL == "" {
		return DefaultLoginURL
	}
	return strings.TrimRight(cfg.LoginURL, "/")
}

// Package auth signs users in against Firebase Authentication and decides
// who may use the app.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chunkrecall/trainer/internal/logger"
)

const DefaultIdentityURL = "https://identitytoolkit.googleapis.com/v1"

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrUserDisabled       = errors.New("auth: account is disabled")
	ErrTooManyAttempts    = errors.New("auth: too many attempts, try again later")
)

// FirebaseError is an Identity Toolkit error with an unmapped code.
type FirebaseError struct {
	Status int
	Code   string
}

func (e *FirebaseError) Error() string {
	return fmt.Sprintf("firebase error (status %d): %s", e.Status, e.Code)
}

// Identity is the account Firebase signed in.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	IDToken     string
}

type FirebaseConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Firebase signs in with email and password over the Identity Toolkit REST
// API.
type Firebase struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewFirebase(cfg FirebaseConfig) *Firebase {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultIdentityURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Firebase{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
}

type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (Identity, error) {
	log := logger.FromContext(ctx).WithPrefix("firebase")

	data, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return Identity{}, err
	}
	endpoint := f.baseURL + "/accounts:signInWithPassword?key=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("firebase sign-in request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, fmt.Errorf("reading firebase response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := signInError(resp.StatusCode, body)
		log.Warn("sign-in failed for %s: %v", email, err)
		return Identity{}, err
	}

	var out signInResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Identity{}, fmt.Errorf("decoding firebase response: %w", err)
	}
	log.Debug("signed in %s", out.Email)
	return Identity{UID: out.LocalID, Email: out.Email, DisplayName: out.DisplayName, IDToken: out.IDToken}, nil
}

// signInError maps the error message code. Messages may carry a detail
// suffix such as "TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled".
func signInError(status int, body []byte) error {
	var parsed firebaseErrorResponse
	_ = json.Unmarshal(body, &parsed)
	code, _, _ := strings.Cut(parsed.Error.Message, " ")

	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "MISSING_PASSWORD":
		return ErrInvalidCredentials
	case "USER_DISABLED":
		return ErrUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrTooManyAttempts
	}
	if code == "" {
		code = strings.TrimSpace(string(body))
	}
	return &FirebaseError{Status: status, Code: code}
}

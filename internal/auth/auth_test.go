package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkrecall/trainer/internal/auth"
)

func firebaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "fb-key", r.URL.Query().Get("key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@example.com", req["email"])
		assert.Equal(t, true, req["returnSecureToken"])

		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSignIn(t *testing.T) {
	srv := firebaseServer(t, http.StatusOK, `{"localId":"uid-1","email":"a@example.com","displayName":"A","idToken":"tok"}`)
	fb := auth.NewFirebase(auth.FirebaseConfig{APIKey: "fb-key", BaseURL: srv.URL})

	id, err := fb.SignIn(context.Background(), "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{UID: "uid-1", Email: "a@example.com", DisplayName: "A", IDToken: "tok"}, id)
}

func TestSignIn_ErrorMapping(t *testing.T) {
	tests := []struct {
		message string
		want    error
	}{
		{"EMAIL_NOT_FOUND", auth.ErrInvalidCredentials},
		{"INVALID_PASSWORD", auth.ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", auth.ErrInvalidCredentials},
		{"USER_DISABLED", auth.ErrUserDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled", auth.ErrTooManyAttempts},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			body, _ := json.Marshal(map[string]any{"error": map[string]any{"code": 400, "message": tt.message}})
			srv := firebaseServer(t, http.StatusBadRequest, string(body))
			fb := auth.NewFirebase(auth.FirebaseConfig{APIKey: "fb-key", BaseURL: srv.URL})

			_, err := fb.SignIn(context.Background(), "a@example.com", "secret")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignIn_UnknownError(t *testing.T) {
	srv := firebaseServer(t, http.StatusForbidden, `{"error":{"code":403,"message":"API_KEY_INVALID"}}`)
	fb := auth.NewFirebase(auth.FirebaseConfig{APIKey: "fb-key", BaseURL: srv.URL})

	_, err := fb.SignIn(context.Background(), "a@example.com", "secret")

	var fbErr *auth.FirebaseError
	require.ErrorAs(t, err, &fbErr)
	assert.Equal(t, http.StatusForbidden, fbErr.Status)
	assert.Equal(t, "API_KEY_INVALID", fbErr.Code)
}

func TestAllowList(t *testing.T) {
	open := auth.NewAllowList(nil)
	assert.True(t, open.Allowed("anyone@example.com"))

	list := auth.NewAllowList([]string{" Tutor@Example.com ", "", "student@example.com"})
	assert.Equal(t, 2, list.Len())
	assert.True(t, list.Allowed("tutor@example.com"))
	assert.True(t, list.Allowed("STUDENT@example.com "))
	assert.False(t, list.Allowed("stranger@example.com"))
	assert.False(t, list.Allowed(""))
}

func TestSessionToken(t *testing.T) {
	a, b := auth.NewSessionToken(), auth.NewSessionToken()
	assert.NotEqual(t, a, b)
	assert.True(t, auth.ValidSessionToken(a))
	assert.False(t, auth.ValidSessionToken("not-a-token"))
	assert.False(t, auth.ValidSessionToken(""))
}

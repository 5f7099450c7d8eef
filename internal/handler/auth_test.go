package handler

import (
	"net/http"
	"testing"
)

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)

	token := env.signup(t, "alice", "Secret123")
	if token == "" {
		t.Fatal("expected a non-empty auth token")
	}

	// the token works against a protected route
	w := env.do(t, http.MethodGet, "/sessionslist", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("sessionslist with fresh token: status = %d, want 200", w.Code)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice", "Secret123")

	w := env.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": "alice",
		"password": "Other456",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: status = %d, want 400", w.Code)
	}
}

func TestRegister_CaseSensitiveUsernames(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice", "Secret123")

	// usernames are case-sensitive, so Alice is a different user
	w := env.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": "Alice",
		"password": "Secret123",
	})
	if w.Code != http.StatusFound {
		t.Errorf("register with different case: status = %d, want 302", w.Code)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	testCases := []map[string]string{
		{"username": "", "password": "Secret123"},
		{"username": "   ", "password": "Secret123"},
		{"username": "alice", "password": ""},
		{},
	}

	for i, body := range testCases {
		env := newTestEnv(t)
		w := env.do(t, http.MethodPost, "/register", "", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, w.Code)
		}
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice", "Secret123")

	w := env.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", w.Code)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": "nobody",
		"password": "Secret123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status = %d, want 401", w.Code)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "alice", "Secret123")

	w := env.do(t, http.MethodGet, "/logout", token, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("logout: status = %d, want 302", w.Code)
	}

	// the login session row is revoked, so the old token is dead even
	// though the JWT itself has not expired yet
	w = env.do(t, http.MethodGet, "/sessionslist", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("request after logout: status = %d, want 401", w.Code)
	}
}

func TestProtectedRoute_NoToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/sessionslist", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
}

func TestProtectedRoute_GarbageToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/sessionslist", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", w.Code)
	}
}

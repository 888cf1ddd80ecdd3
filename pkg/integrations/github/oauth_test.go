package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestDeviceFlow(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/device/code", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.Form.Get("client_id"); got != "Iv1.test" {
			t.Errorf("client_id = %q", got)
		}
		writeJSON(w, map[string]any{
			"device_code":      "dev-123",
			"user_code":        "ABCD-1234",
			"verification_uri": "https://github.com/login/device",
			"expires_in":       900,
			"interval":         1,
		})
	})
	mux.HandleFunc("POST /login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.Form.Get("device_code"); got != "dev-123" {
			t.Errorf("device_code = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if polls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "authorization_pending"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_xyz", "token_type": "bearer"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	flow := NewDeviceFlow("Iv1.test").WithEndpoint(oauth2.Endpoint{
		DeviceAuthURL: srv.URL + "/login/device/code",
		TokenURL:      srv.URL + "/login/oauth/access_token",
		AuthStyle:     oauth2.AuthStyleInParams,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	auth, err := flow.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if auth.UserCode != "ABCD-1234" || auth.VerificationURI != "https://github.com/login/device" {
		t.Errorf("Start = %+v", auth)
	}

	tok, err := flow.Wait(ctx, auth)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if tok.AccessToken != "gho_xyz" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
	if polls.Load() < 2 {
		t.Errorf("polls = %d, want the pending response to be retried", polls.Load())
	}
}

func TestCurrentUser(t *testing.T) {
	tree := testTree(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"login": "octocat", "id": 1})
	}, RepoRef{Owner: "o", Repo: "r"})

	login, err := CurrentUser(context.Background(), tree.gh)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if login != "octocat" {
		t.Errorf("login = %q, want octocat", login)
	}
}

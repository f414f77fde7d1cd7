package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahar-app/bahar/internal/apperr"
	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/remote"
)

func TestConnectionInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/user-1/connection-info", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(remote.ConnectionInfo{
			Hostname: "db.example.com", AccessToken: "tok-1", DBName: "replica-user-1",
		})
	}))
	defer srv.Close()

	c := remote.New(srv.URL, "tok-1")
	info, err := c.ConnectionInfo(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "replica-user-1", info.DBName)
}

func TestUnauthorizedMapsToTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := remote.New(srv.URL, "expired")
	_, err := c.ConnectionInfo(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTokenRejected))

	_, err = c.PullChanges(context.Background(), "user-1", 0)
	assert.True(t, apperr.IsKind(err, apperr.KindTokenRejected))
}

func TestServerErrorMapsToConnectionFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := remote.New(srv.URL, "tok")
	_, err := c.Migrations(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConnectionFailed))
}

func TestRefreshTokenReplacesHeldToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/users/user-1/refresh-token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh"})
	}))
	defer srv.Close()

	c := remote.New(srv.URL, "stale")
	token, err := c.RefreshToken(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, "fresh", c.Token())
}

func TestRefreshTokenEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := remote.New(srv.URL, "stale")
	_, err := c.RefreshToken(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTokenRefreshFailed))
	assert.Equal(t, "stale", c.Token())
}

func TestVerifySchemaSendsVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/migrations/verify", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("version"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(remote.SchemaCheck{
			Status: "update_required",
			RequiredMigrations: []models.Migration{
				{Version: 4, Description: "add decks", Script: "CREATE TABLE decks (id TEXT);"},
			},
		})
	}))
	defer srv.Close()

	c := remote.New(srv.URL, "tok")
	check, err := c.VerifySchema(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "update_required", check.Status)
	require.Len(t, check.RequiredMigrations, 1)
	assert.Equal(t, 4, check.RequiredMigrations[0].Version)
}

func TestPullAndPushChanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/user-1/sync/changes", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "42", r.URL.Query().Get("since_ms"))
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(remote.Changeset{
				Entries:  []models.DictionaryEntry{{ID: "e1", Word: "w", Translation: "t", Type: models.WordTypeNoun}},
				ServerMS: 100,
			})
		case http.MethodPost:
			var cs remote.Changeset
			require.NoError(t, json.NewDecoder(r.Body).Decode(&cs))
			assert.Len(t, cs.Flashcards, 1)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]int64{"server_ms": 200})
		}
	}))
	defer srv.Close()

	c := remote.New(srv.URL, "tok")

	cs, err := c.PullChanges(context.Background(), "user-1", 42)
	require.NoError(t, err)
	require.Len(t, cs.Entries, 1)
	assert.Equal(t, int64(100), cs.ServerMS)

	ack, err := c.PushChanges(context.Background(), "user-1", remote.Changeset{
		Flashcards: []models.Flashcard{{ID: "c1", EntryID: "e1", Direction: models.DirectionForward}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200), ack)
}

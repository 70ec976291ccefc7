package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reviewhub/config"
	"reviewhub/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T, handler http.Handler) (service.DirectoryService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		GoogleOAuth: &config.GoogleOAuthConfig{DirectoryURL: server.URL},
		Fetch: &config.FetchConfig{
			Directory: &config.FetchProfile{Timeout: time.Second, MaxRetries: 1, RetryDelay: time.Millisecond},
		},
	}

	return NewDirectoryService(cfg, testLogger()), server
}

func TestDirectory_ListAccounts(t *testing.T) {
	directory, _ := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"accounts": [
			{"name": "accounts/101", "accountName": "Coffee Corner", "email": "owner@example.com"},
			{"name": "accounts/102", "accountName": "Bakery"}
		]}`))
	}))

	accounts, err := directory.ListAccounts(context.Background(), "access-1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "accounts/101", accounts[0].Name)
	assert.Equal(t, "101", accounts[0].AccountID)
	assert.Equal(t, "Coffee Corner", accounts[0].DisplayName)
	assert.Equal(t, "owner@example.com", accounts[0].Email)
}

func TestDirectory_ListAccountsPaginates(t *testing.T) {
	directory, _ := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"accounts": [{"name": "accounts/1"}], "nextPageToken": "page-2"}`))

			return
		}
		assert.Equal(t, "page-2", r.URL.Query().Get("pageToken"))
		_, _ = w.Write([]byte(`{"accounts": [{"name": "accounts/2"}]}`))
	}))

	accounts, err := directory.ListAccounts(context.Background(), "access-1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "1", accounts[0].AccountID)
	assert.Equal(t, "2", accounts[1].AccountID)
}

func TestDirectory_ListLocationsNotFoundMeansEmpty(t *testing.T) {
	directory, _ := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	locations, err := directory.ListLocations(context.Background(), "access-1", "accounts/101")
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestDirectory_ListReviews(t *testing.T) {
	directory, _ := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/101/locations/201/reviews", r.URL.Path)
		_, _ = w.Write([]byte(`{"reviews": [
			{
				"name": "accounts/101/locations/201/reviews/r1",
				"reviewId": "r1",
				"starRating": "FIVE",
				"comment": "Great espresso",
				"reviewer": {"displayName": "Alice"},
				"createTime": "2026-08-20T09:30:00Z"
			},
			{
				"reviewId": "r2",
				"starRating": "STAR_RATING_UNSPECIFIED"
			}
		]}`))
	}))

	reviews, err := directory.ListReviews(context.Background(), "access-1", "accounts/101/locations/201")
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	assert.Equal(t, "accounts/101/locations/201/reviews/r1", reviews[0].ExternalID)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, "Great espresso", reviews[0].Text)
	assert.Equal(t, "Alice", reviews[0].ReviewerName)
	assert.Equal(t, time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC), reviews[0].CreatedAt)

	// Missing resource name falls back to composing it; unknown rating maps to 0.
	assert.Equal(t, "accounts/101/locations/201/reviews/r2", reviews[1].ExternalID)
	assert.Equal(t, 0, reviews[1].Rating)
	assert.False(t, reviews[1].CreatedAt.IsZero())
}

func TestDirectory_ListReviewsUnauthorized(t *testing.T) {
	directory, _ := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := directory.ListReviews(context.Background(), "stale", "accounts/101/locations/201")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrGrantRejected)
}

func TestDirectory_PutReply(t *testing.T) {
	directory, _ := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/accounts/101/locations/201/reviews/r1/reply", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Thank you for visiting!", payload["comment"])
	}))

	err := directory.PutReply(context.Background(), "access-1",
		"accounts/101/locations/201/reviews/r1", "Thank you for visiting!")
	require.NoError(t, err)
}

func TestDirectory_PutReplyUpstreamError(t *testing.T) {
	directory, _ := newTestDirectory(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := directory.PutReply(context.Background(), "access-1",
		"accounts/101/locations/201/reviews/r1", "Thanks")
	require.Error(t, err)
}

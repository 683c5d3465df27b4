package twitter

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twsampler/pkg/errors"
	"twsampler/pkg/period"
)

func testWindow() period.Window {
	return period.Window{
		Start: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2022, time.January, 1, 1, 0, 0, 0, time.UTC),
	}
}

func newTestClient(serverURL string) *Client {
	c := NewClient("test-token", 5*time.Second, nil)
	c.SetBaseURL(serverURL)
	return c
}

func TestSearchSuccess(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"1","text":"hello"}],"meta":{"result_count":1,"newest_id":"1"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	params := DefaultSearchParams(`("a" OR "b") lang:en has:media`, 500)

	result, err := client.Search(context.Background(), params, testWindow())
	require.NoError(t, err)

	assert.Equal(t, "/2/tweets/search/all", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, `("a" OR "b") lang:en has:media`, gotQuery["query"])
	assert.Equal(t, "500", gotQuery["max_results"])
	assert.Equal(t, "2022-01-01T00:00:00Z", gotQuery["start_time"])
	assert.Equal(t, "2022-01-01T01:00:00Z", gotQuery["end_time"])
	assert.Equal(t, DefaultExpansions, gotQuery["expansions"])
	assert.Equal(t, DefaultTweetFields, gotQuery["tweet.fields"])

	assert.Equal(t, 1, result.Meta.ResultCount)
	assert.JSONEq(t, `{"data":[{"id":"1","text":"hello"}],"meta":{"result_count":1,"newest_id":"1"}}`, string(result.Raw))
}

func TestSearchStatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantType  errors.ErrorType
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, errors.ErrorTypeRateLimit, true},
		{"server error", http.StatusInternalServerError, errors.ErrorTypeServerError, true},
		{"bad gateway", http.StatusBadGateway, errors.ErrorTypeServerError, true},
		{"unauthorized", http.StatusUnauthorized, errors.ErrorTypeAuth, false},
		{"bad request", http.StatusBadRequest, errors.ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"title":"error"}`))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			params := DefaultSearchParams("q", 500)

			_, err := client.Search(context.Background(), params, testWindow())
			require.Error(t, err)

			var apiErr *errors.Error
			require.True(t, stderrors.As(err, &apiErr))
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.status, apiErr.Code)
			assert.Equal(t, tt.retryable, errors.IsRetryable(apiErr.Type))
		})
	}
}

func TestSearchMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta": not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	params := DefaultSearchParams("q", 500)

	_, err := client.Search(context.Background(), params, testWindow())
	require.Error(t, err)

	var apiErr *errors.Error
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, errors.ErrorTypeParsing, apiErr.Type)
	assert.True(t, errors.IsRetryable(apiErr.Type), "a malformed payload is a transient fetch failure")
}

func TestSearchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(server.URL)
	params := DefaultSearchParams("q", 500)

	_, err := client.Search(context.Background(), params, testWindow())
	require.Error(t, err)

	var apiErr *errors.Error
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, errors.ErrorTypeNetwork, apiErr.Type)
}

func TestSearchHonorsContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	params := DefaultSearchParams("q", 500)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Search(ctx, params, testWindow())
	assert.Error(t, err)
}

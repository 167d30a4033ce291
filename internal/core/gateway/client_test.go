package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"recipe-search/internal/core/cache"
	"recipe-search/internal/infrastructure/config"
	"recipe-search/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const curryResponse = `{"meals":[
	{"idMeal":"52795","strMeal":"Chicken Handi","strArea":"Indian","strCategory":"Chicken","strMealThumb":"https://img/handi.jpg",
	 "strIngredient1":"Chicken","strMeasure1":"1.2 kg","strIngredient2":"Onion","strMeasure2":"5 thinly sliced",
	 "strIngredient3":"","strMeasure3":"","strIngredient4":"Tomato","strMeasure4":"2"},
	{"idMeal":"","strMeal":"Broken"},
	{"idMeal":"52806","strMeal":"Tandoori chicken","strArea":null}
]}`

type recorder struct {
	calls atomic.Int32
	paths chan string
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{paths: make(chan string, 64)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls.Add(1)
		rec.paths <- r.URL.Path + "?" + r.URL.RawQuery
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func testConfig(baseURL string) *config.GatewayConfig {
	return &config.GatewayConfig{
		BaseURL:          baseURL,
		Timeout:          2 * time.Second,
		RetryCount:       0,
		PreferredCuisine: "Indian",
	}
}

func TestSearchByNameParsesMeals(t *testing.T) {
	srv, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(curryResponse))
	})
	client := NewClient(testConfig(srv.URL), nil)

	records, err := client.SearchByName(context.Background(), "chicken curry")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "/search.php?s=chicken+curry", <-rec.paths)
	assert.Equal(t, "52795", records[0].ID)
	assert.Equal(t, "Indian", records[0].Area)
	require.Len(t, records[0].Ingredients, 2)
	assert.Equal(t, "1.2 kg Chicken", records[0].Ingredients[0].String())
	assert.Equal(t, "", records[1].Area)
}

func TestNullMealsIsEmpty(t *testing.T) {
	for _, body := range []string{`{"meals":null}`, `{}`, `{"meals":"Invalid ID"}`} {
		srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		client := NewClient(testConfig(srv.URL), nil)

		records, err := client.SearchByIngredient(context.Background(), "unobtainium")
		require.NoError(t, err, body)
		assert.Empty(t, records, body)
	}
}

func TestEndpointRoutes(t *testing.T) {
	srv, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meals":null}`))
	})
	client := NewClient(testConfig(srv.URL), nil)
	ctx := context.Background()

	_, _ = client.SearchByIngredient(ctx, "paneer")
	assert.Equal(t, "/filter.php?i=paneer", <-rec.paths)
	_, _ = client.FilterByArea(ctx, "Thai")
	assert.Equal(t, "/filter.php?a=Thai", <-rec.paths)
	_, _ = client.FilterByCategory(ctx, "Dessert")
	assert.Equal(t, "/filter.php?c=Dessert", <-rec.paths)
	assert.Equal(t, "Indian", client.PreferredCuisine())
	_, _ = client.PreferredCuisineRecipes(ctx)
	assert.Equal(t, "/filter.php?a=Indian", <-rec.paths)

	rec2, err := client.LookupByID(ctx, "52795")
	require.NoError(t, err)
	assert.Nil(t, rec2)
	assert.Equal(t, "/lookup.php?i=52795", <-rec.paths)

	_, _ = client.Random(ctx)
	assert.Equal(t, "/random.php?", <-rec.paths)
}

func TestHTTPErrorWrapsGatewayCallFailed(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := NewClient(testConfig(srv.URL), nil)

	_, err := client.SearchByName(context.Background(), "pho")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGatewayCallFailed))
}

func TestMalformedBodyFails(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})
	client := NewClient(testConfig(srv.URL), nil)

	_, err := client.SearchByName(context.Background(), "pho")
	assert.True(t, errors.Is(err, common.ErrGatewayCallFailed))
}

func TestResponsesAreCached(t *testing.T) {
	srv, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(curryResponse))
	})
	store := cache.NewManager(&config.CacheConfig{TTL: time.Minute})
	defer store.Close()
	client := NewClient(testConfig(srv.URL), store)
	ctx := context.Background()

	first, err := client.SearchByName(ctx, "curry")
	require.NoError(t, err)
	second, err := client.SearchByName(ctx, "curry")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), rec.calls.Load())

	_, _ = client.SearchByIngredient(ctx, "curry")
	assert.Equal(t, int32(2), rec.calls.Load())
}

func TestRandomIsNeverCached(t *testing.T) {
	srv, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(curryResponse))
	})
	store := cache.NewManager(&config.CacheConfig{TTL: time.Minute})
	defer store.Close()
	client := NewClient(testConfig(srv.URL), store)

	for i := 0; i < 3; i++ {
		got, err := client.Random(context.Background())
		require.NoError(t, err)
		require.NotNil(t, got)
	}
	assert.Equal(t, int32(3), rec.calls.Load())
	assert.Equal(t, 0, store.Stats().Size)
}

func TestFailuresAreNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(curryResponse))
	})
	store := cache.NewManager(&config.CacheConfig{TTL: time.Minute})
	defer store.Close()
	client := NewClient(testConfig(srv.URL), store)
	ctx := context.Background()

	_, err := client.SearchByName(ctx, "curry")
	require.Error(t, err)

	fail.Store(false)
	records, err := client.SearchByName(ctx, "curry")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(2), rec.calls.Load())
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	bc := DefaultBreakerConfig()
	bc.Name = "test-breaker"
	bc.MinRequests = 3
	client := NewClientWithBreaker(testConfig(srv.URL), nil, bc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.SearchByName(ctx, "pho")
		require.Error(t, err)
	}
	_, err := client.SearchByName(ctx, "pho")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGatewayCallFailed))
	assert.Equal(t, int32(3), rec.calls.Load())
}

package recipe

import (
	"context"
	"errors"
	"sync"

	"recipe-search/internal/core/keywords"
	"recipe-search/internal/pkg/common"
)

var errUpstream = errors.New("upstream unavailable")

// fakeGateway 以 "kind:param" 為鍵回傳固定資料，並記錄所有呼叫
type fakeGateway struct {
	mu        sync.Mutex
	responses map[string][]RecipeRecord
	failures  map[string]bool
	failAll   bool
	details   map[string]*RecipeRecord
	random    *RecipeRecord
	calls     []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		responses: make(map[string][]RecipeRecord),
		failures:  make(map[string]bool),
		details:   make(map[string]*RecipeRecord),
	}
}

func (f *fakeGateway) on(kind, param string, records ...RecipeRecord) *fakeGateway {
	f.responses[kind+":"+param] = records
	return f
}

func (f *fakeGateway) fail(kind, param string) *fakeGateway {
	f.failures[kind+":"+param] = true
	return f
}

func (f *fakeGateway) get(kind, param string) ([]RecipeRecord, error) {
	key := kind + ":" + param
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if f.failAll || f.failures[key] {
		return nil, common.Wrap(common.ErrGatewayCallFailed, errUpstream)
	}
	return f.responses[key], nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

func (f *fakeGateway) SearchByIngredient(ctx context.Context, ingredient string) ([]RecipeRecord, error) {
	return f.get("ingredient", ingredient)
}

func (f *fakeGateway) SearchByName(ctx context.Context, name string) ([]RecipeRecord, error) {
	return f.get("name", name)
}

func (f *fakeGateway) FilterByArea(ctx context.Context, area string) ([]RecipeRecord, error) {
	return f.get("area", area)
}

func (f *fakeGateway) FilterByCategory(ctx context.Context, category string) ([]RecipeRecord, error) {
	return f.get("category", category)
}

func (f *fakeGateway) PreferredCuisineRecipes(ctx context.Context) ([]RecipeRecord, error) {
	return f.get("area", "Indian")
}

func (f *fakeGateway) LookupByID(ctx context.Context, id string) (*RecipeRecord, error) {
	if _, err := f.get("lookup", id); err != nil {
		return nil, err
	}
	return f.details[id], nil
}

func (f *fakeGateway) Random(ctx context.Context) (*RecipeRecord, error) {
	if _, err := f.get("random", ""); err != nil {
		return nil, err
	}
	return f.random, nil
}

func rec(id, name string) RecipeRecord {
	return RecipeRecord{ID: id, Name: name}
}

func testLists(t interface{ Fatalf(string, ...any) }) *keywords.Allowlists {
	lists, err := keywords.Parse([]byte(`
cuisine: [curry, masala, tikka, dal]
authentic: [masala]
regional: [punjabi]
popular: [butter chicken, dal]
vegetarian: [paneer, dal, vegetable]
non_vegetarian: [chicken, fish]
`))
	if err != nil {
		t.Fatalf("parse test keywords: %v", err)
	}
	return lists
}

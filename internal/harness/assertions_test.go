package harness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/repository"
	"github.com/roach88/storefront/internal/testutil"
)

func newAssertionContext(t *testing.T) *AssertionContext {
	t.Helper()
	s := testutil.NewSeededStore(t)
	return &AssertionContext{
		Ctx:    context.Background(),
		Repos:  repository.New(s, testutil.NewStepClock(time.Second), 0),
		UserID: 1,
	}
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func TestEvaluateAssertions_EmptyState(t *testing.T) {
	actx := newAssertionContext(t)

	errs := EvaluateAssertions([]Assertion{
		{Type: AssertCartTotal, Value: "0.00"},
		{Type: AssertCartCount, Count: intPtr(0)},
		{Type: AssertWishlistHas, ProductID: 3, In: boolPtr(false)},
	}, actx)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_AfterChanges(t *testing.T) {
	actx := newAssertionContext(t)
	ctx := actx.Ctx

	require.NoError(t, actx.Repos.Cart.Add(ctx, 1, 1))
	require.NoError(t, actx.Repos.Cart.Add(ctx, 1, 3))
	require.NoError(t, actx.Repos.Wishlist.Add(ctx, 1, 3))

	errs := EvaluateAssertions([]Assertion{
		{Type: AssertCartTotal, Value: "6.70"},
		{Type: AssertCartCount, Count: intPtr(2)},
		{Type: AssertWishlistHas, ProductID: 3, In: boolPtr(true)},
	}, actx)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	actx := newAssertionContext(t)

	errs := EvaluateAssertions([]Assertion{
		{Type: AssertCartTotal, Value: "1.00"},
		{Type: AssertCartCount, Count: intPtr(3)},
		{Type: AssertWishlistHas, ProductID: 3, In: boolPtr(true)},
		{Type: "bogus"},
	}, actx)

	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], "Assertion failed: cart_total")
	assert.Contains(t, errs[0], "Expected: 1.00")
	assert.Contains(t, errs[0], "Actual: 0.00")
	assert.Contains(t, errs[1], "3 lines")
	assert.Contains(t, errs[2], "product 3 in wishlist = true")
	assert.Contains(t, errs[3], `unknown assertion type "bogus"`)
}

func TestMatchResult(t *testing.T) {
	actual := map[string]any{
		"count":       4,
		"product_ids": []int64{1, 2, 3, 4},
		"total":       "0.90",
		"ok":          true,
	}

	tests := []struct {
		name     string
		expected map[string]any
		want     bool
	}{
		{"nil expectation", nil, true},
		{"int matches int", map[string]any{"count": 4}, true},
		{"float matches int", map[string]any{"count": 4.0}, true},
		{"list from yaml", map[string]any{"product_ids": []any{1, 2, 3, 4}}, true},
		{"string", map[string]any{"total": "0.90"}, true},
		{"bool", map[string]any{"ok": true}, true},
		{"wrong value", map[string]any{"count": 5}, false},
		{"missing key", map[string]any{"message": "x"}, false},
		{"string vs number", map[string]any{"total": 0.9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchResult(actual, tt.expected))
		})
	}
}

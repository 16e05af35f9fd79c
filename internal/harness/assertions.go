package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/storefront/internal/live"
	"github.com/roach88/storefront/internal/repository"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext provides the repositories assertions read from.
type AssertionContext struct {
	Ctx    context.Context
	Repos  *repository.Set
	UserID int64
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCartTotal:
			err = assertCartTotal(actx, assertion)
		case AssertCartCount:
			err = assertCartCount(actx, assertion)
		case AssertWishlistHas:
			err = assertWishlistHas(actx, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func assertCartTotal(actx *AssertionContext, a Assertion) error {
	summary, err := live.First(actx.Ctx, actx.Repos.Cart.Summary(actx.UserID))
	if err != nil {
		return fmt.Errorf("cart_total: %w", err)
	}
	if got := summary.Total.StringFixed(2); got != a.Value {
		return &AssertionError{Type: AssertCartTotal, Expected: a.Value, Actual: got}
	}
	return nil
}

func assertCartCount(actx *AssertionContext, a Assertion) error {
	items, err := live.First(actx.Ctx, actx.Repos.Cart.Items(actx.UserID))
	if err != nil {
		return fmt.Errorf("cart_count: %w", err)
	}
	if len(items) != *a.Count {
		return &AssertionError{
			Type:     AssertCartCount,
			Expected: fmt.Sprintf("%d lines", *a.Count),
			Actual:   fmt.Sprintf("%d lines", len(items)),
		}
	}
	return nil
}

func assertWishlistHas(actx *AssertionContext, a Assertion) error {
	in, err := live.First(actx.Ctx, actx.Repos.Wishlist.Contains(actx.UserID, a.ProductID))
	if err != nil {
		return fmt.Errorf("wishlist_has: %w", err)
	}
	if in != *a.In {
		return &AssertionError{
			Type:     AssertWishlistHas,
			Expected: fmt.Sprintf("product %d in wishlist = %t", a.ProductID, *a.In),
			Actual:   fmt.Sprintf("%t", in),
		}
	}
	return nil
}

// matchResult checks if actual contains all expected fields (subset match).
// Extra keys in actual are ignored.
func matchResult(actual, expected map[string]any) bool {
	if len(expected) == 0 {
		return true
	}

	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares two values after normalising both through JSON, so
// that int, int64 and float64 forms of the same number compare equal.
func valuesEqual(actual, expected any) bool {
	a, errA := normalize(actual)
	e, errE := normalize(expected)
	if errA != nil || errE != nil {
		return false
	}
	return reflect.DeepEqual(a, e)
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

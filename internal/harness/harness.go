package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/storefront/internal/live"
	"github.com/roach88/storefront/internal/repository"
	"github.com/roach88/storefront/internal/seed"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
)

// IDGenerator supplies run ids.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Harness executes the steps of one scenario.
type Harness struct {
	store  *store.Store
	repos  *repository.Set
	userID int64
	seq    int64
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database seeded with the demo
// catalogue, so scenarios never observe each other.
//
// Execution flow:
// 1. Create and seed a fresh in-memory database
// 2. Execute steps, comparing each outcome with its expect clause
// 3. Evaluate assertions against the final state
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	var ids IDGenerator = uuidGenerator{}
	if scenario.RunID != "" {
		ids = testutil.NewFixedIDGenerator(scenario.RunID)
	}
	return RunWith(ctx, scenario, ids)
}

// RunWith is Run with an explicit run id source.
func RunWith(ctx context.Context, scenario *Scenario, ids IDGenerator) (*Result, error) {
	st, err := store.Open(":memory:", store.WithCreateHook(seed.Hook(bcrypt.MinCost)))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.WaitBootstrap(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}

	userID := scenario.UserID
	if userID == 0 {
		userID = 1
	}

	result := NewResult(ids.NewID())
	h := &Harness{
		store:  st,
		repos:  repository.New(st, testutil.NewStepClock(time.Second), 0),
		userID: userID,
		logger: slog.Default().With("scenario", scenario.Name, "run", result.RunID),
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	actx := &AssertionContext{Ctx: ctx, Repos: h.repos, UserID: userID}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	if err := h.captureState(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// executeStep runs one step and records it. Failures of the operation itself
// are outcomes; only a broken scenario returns an error.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	h.seq++
	result.AddStepTrace(step.Op, step.Args, h.seq)

	res, opErr := h.execute(ctx, step)

	var argErr *argError
	if errors.As(opErr, &argErr) {
		return fmt.Errorf("step %d: %w", index, opErr)
	}

	outcome := OutcomeOK
	if opErr != nil {
		outcome = OutcomeError
		res = map[string]any{"error": opErr.Error()}
	}

	h.seq++
	result.AddOutcomeTrace(step.Op, outcome, res, h.seq)

	h.logger.Debug("step completed",
		"step", index,
		"op", step.Op,
		"outcome", outcome,
	)

	want := OutcomeOK
	var wantResult map[string]any
	if step.Expect != nil {
		if step.Expect.Outcome != "" {
			want = step.Expect.Outcome
		}
		wantResult = step.Expect.Result
	}

	if outcome != want {
		msg := fmt.Sprintf("step %d (%s): expected outcome %s, got %s", index, step.Op, want, outcome)
		if opErr != nil {
			msg += ": " + opErr.Error()
		}
		result.AddError(msg)
		return nil
	}
	if !matchResult(res, wantResult) {
		result.AddError(fmt.Sprintf("step %d (%s): expected result %v, got %v", index, step.Op, wantResult, res))
	}
	return nil
}

func (h *Harness) execute(ctx context.Context, step Step) (map[string]any, error) {
	r := h.repos

	switch step.Op {
	case OpLogin:
		username, err := stringArg(step.Args, "username")
		if err != nil {
			return nil, err
		}
		password, err := stringArg(step.Args, "password")
		if err != nil {
			return nil, err
		}
		ok, err := r.Auth.Validate(ctx, username, password)
		if err != nil {
			return nil, err
		}
		if !ok {
			return map[string]any{"ok": false, "message": repository.LoginFailedMessage}, nil
		}
		return map[string]any{"ok": true}, nil

	case OpCartAdd, OpCartRemove, OpWishlistAdd, OpWishlistRemove:
		productID, err := intArg(step.Args, "product_id")
		if err != nil {
			return nil, err
		}
		switch step.Op {
		case OpCartAdd:
			return nil, r.Cart.Add(ctx, h.userID, productID)
		case OpCartRemove:
			return nil, r.Cart.Remove(ctx, h.userID, productID)
		case OpWishlistAdd:
			return nil, r.Wishlist.Add(ctx, h.userID, productID)
		default:
			return nil, r.Wishlist.Remove(ctx, h.userID, productID)
		}

	case OpProductsByCategory:
		categoryID, err := intArg(step.Args, "category_id")
		if err != nil {
			return nil, err
		}
		products, err := live.First(ctx, r.Catalog.ProductsByCategory(categoryID))
		if err != nil {
			return nil, err
		}
		ids := make([]int64, len(products))
		for i, p := range products {
			ids[i] = p.ID
		}
		return map[string]any{"count": len(products), "product_ids": ids}, nil

	case OpCart:
		summary, err := live.First(ctx, r.Cart.Summary(h.userID))
		if err != nil {
			return nil, err
		}
		return cartResult(summary), nil

	case OpWishlistHas:
		productID, err := intArg(step.Args, "product_id")
		if err != nil {
			return nil, err
		}
		in, err := live.First(ctx, r.Wishlist.Contains(h.userID, productID))
		if err != nil {
			return nil, err
		}
		return map[string]any{"in": in}, nil
	}

	return nil, &argError{fmt.Sprintf("unknown op %q", step.Op)}
}

// captureState stores the final cart and wishlist in result.State.
func (h *Harness) captureState(ctx context.Context, result *Result) error {
	summary, err := live.First(ctx, h.repos.Cart.Summary(h.userID))
	if err != nil {
		return fmt.Errorf("read final cart: %w", err)
	}
	wishlist, err := live.First(ctx, h.repos.Wishlist.Items(h.userID))
	if err != nil {
		return fmt.Errorf("read final wishlist: %w", err)
	}

	ids := make([]int64, len(wishlist))
	for i, w := range wishlist {
		ids[i] = w.ProductID
	}
	result.State["cart"] = cartResult(summary)
	result.State["wishlist"] = ids
	return nil
}

func cartResult(summary repository.Summary) map[string]any {
	items := make([]map[string]any, len(summary.Items))
	for i, it := range summary.Items {
		items[i] = map[string]any{
			"product_id": it.ProductID,
			"name":       it.Name,
			"price":      decimal.NewFromFloat(it.Price).StringFixed(2),
			"quantity":   it.Quantity,
		}
	}
	return map[string]any{
		"count": len(summary.Items),
		"total": summary.Total.StringFixed(2),
		"items": items,
	}
}

// argError marks a step whose arguments cannot be used.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok {
		return "", &argError{fmt.Sprintf("arg %q must be a string", name)}
	}
	return v, nil
}

// intArg reads an integer argument. YAML numbers arrive as int, or as
// float64 when written with a fraction.
func intArg(args map[string]any, name string) (int64, error) {
	switch v := args[name].(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v == math.Trunc(v) {
			return int64(v), nil
		}
	}
	return 0, &argError{fmt.Sprintf("arg %q must be an integer", name)}
}

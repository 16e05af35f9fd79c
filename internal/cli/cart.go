package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/live"
	"github.com/roach88/storefront/internal/repository"
)

// CartLine is one rendered cart line.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// CartView is the rendered state of a user's cart.
type CartView struct {
	UserID int64      `json:"user_id"`
	Items  []CartLine `json:"items"`
	Total  string     `json:"total"`
}

func newCartView(userID int64, s repository.Summary) CartView {
	view := CartView{
		UserID: userID,
		Items:  make([]CartLine, 0, len(s.Items)),
		Total:  s.Total.StringFixed(2),
	}
	for _, it := range s.Items {
		price := decimal.NewFromFloat(it.Price)
		view.Items = append(view.Items, CartLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price.StringFixed(2),
			Quantity:  it.Quantity,
			Subtotal:  price.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2),
		})
	}
	return view
}

func (v CartView) Text() string {
	var b strings.Builder
	if len(v.Items) == 0 {
		b.WriteString("Cart is empty\n")
	}
	for _, it := range v.Items {
		fmt.Fprintf(&b, "%3d  %-40s %3d x %7s€ = %8s€\n", it.ProductID, it.Name, it.Quantity, it.Price, it.Subtotal)
	}
	fmt.Fprintf(&b, "Total: %s€\n", v.Total)
	return b.String()
}

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the user's cart",
		Long: `Manage the active shopping list of the configured user (--user-id).

Examples:
  storefront cart add 12
  storefront cart remove 12
  storefront cart show --format json
  storefront cart watch --count 3`,
	}

	cmd.AddCommand(newCartMutationCommand(rootOpts, "add", "Put a product in the cart", func(ctx context.Context, r *repository.Set, userID, productID int64) error {
		return r.Cart.Add(ctx, userID, productID)
	}))
	cmd.AddCommand(newCartMutationCommand(rootOpts, "remove", "Take a product out of the cart", func(ctx context.Context, r *repository.Set, userID, productID int64) error {
		return r.Cart.Remove(ctx, userID, productID)
	}))
	cmd.AddCommand(newCartShowCommand(rootOpts))
	cmd.AddCommand(newCartWatchCommand(rootOpts))

	return cmd
}

type cartMutation func(ctx context.Context, r *repository.Set, userID, productID int64) error

// newCartMutationCommand builds a subcommand that changes one cart line and
// prints the resulting cart.
func newCartMutationCommand(rootOpts *RootOptions, use, short string, mutate cartMutation) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <productID>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			sess, err := openSession(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer sess.Close()

			f := rootOpts.formatter(cmd)
			userID := sess.cfg.UserID
			if err := mutate(ctx, sess.repos, userID, productID); err != nil {
				return storeError(f, fmt.Sprintf("cart %s failed", use), err)
			}
			f.VerboseLog("cart %s: user %d product %d", use, userID, productID)

			summary, err := live.First(ctx, sess.repos.Cart.Summary(userID))
			if err != nil {
				return storeError(f, "failed to read cart", err)
			}
			return f.Success(newCartView(userID, summary))
		},
	}
}

func newCartShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the cart and its total",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			sess, err := openSession(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer sess.Close()

			f := rootOpts.formatter(cmd)
			summary, err := live.First(ctx, sess.repos.Cart.Summary(sess.cfg.UserID))
			if err != nil {
				return storeError(f, "failed to read cart", err)
			}
			return f.Success(newCartView(sess.cfg.UserID, summary))
		},
	}
}

// CartWatchOptions holds flags for the cart watch command.
type CartWatchOptions struct {
	*RootOptions
	Count int
}

func newCartWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartWatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the cart every time it changes",
		Long: `Subscribe to the cart and print its state on every change, starting
with the current state. Stops after --count updates, or on Ctrl-C.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartWatch(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 0, "stop after this many updates (0 = until interrupted)")

	return cmd
}

func runCartWatch(opts *CartWatchOptions, cmd *cobra.Command) error {
	if opts.Count < 0 {
		return NewExitError(ExitCommandError, "--count must not be negative")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	f := opts.formatter(cmd)
	userID := sess.cfg.UserID
	sub := sess.repos.Cart.Summary(userID).Subscribe(ctx)
	defer sub.Close()

	slog.Debug("watching cart", "user", userID, "count", opts.Count)
	seen := 0
	for summary := range sub.Updates() {
		if err := f.Success(newCartView(userID, summary)); err != nil {
			return err
		}
		seen++
		if opts.Count > 0 && seen >= opts.Count {
			return nil
		}
	}

	if err := sub.Err(); err != nil && ctx.Err() == nil {
		return storeError(f, "cart subscription failed", err)
	}
	slog.Debug("cart watch stopped", "updates", seen)
	return nil
}

// parseID parses a positive row id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", arg))
	}
	return id, nil
}

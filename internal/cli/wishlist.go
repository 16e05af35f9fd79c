package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/live"
)

// WishlistResult reports whether a product is on the user's wishlist.
type WishlistResult struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	InList    bool  `json:"in_list"`
}

func (r WishlistResult) Text() string {
	if r.InList {
		return fmt.Sprintf("Product %d is on the wishlist\n", r.ProductID)
	}
	return fmt.Sprintf("Product %d is not on the wishlist\n", r.ProductID)
}

// NewWishlistCommand creates the wishlist command group.
func NewWishlistCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the user's wishlist",
		Long: `Save products for later, drop them, or check whether one is saved.
Every subcommand prints the product's resulting wishlist state.

Examples:
  storefront wishlist add 7
  storefront wishlist has 7
  storefront wishlist remove 7`,
	}

	cmd.AddCommand(newWishlistCommand(rootOpts, "add", "Save a product for later"))
	cmd.AddCommand(newWishlistCommand(rootOpts, "remove", "Drop a saved product"))
	cmd.AddCommand(newWishlistCommand(rootOpts, "has", "Check whether a product is saved"))

	return cmd
}

func newWishlistCommand(rootOpts *RootOptions, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:           action + " <productID>",
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
			wishlist := sess.repos.Wishlist
			userID := sess.cfg.UserID

			switch action {
			case "add":
				err = wishlist.Add(ctx, userID, productID)
			case "remove":
				err = wishlist.Remove(ctx, userID, productID)
			}
			if err != nil {
				return storeError(f, fmt.Sprintf("wishlist %s failed", action), err)
			}

			in, err := live.First(ctx, wishlist.Contains(userID, productID))
			if err != nil {
				return storeError(f, "failed to read wishlist", err)
			}
			return f.Success(WishlistResult{UserID: userID, ProductID: productID, InList: in})
		},
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/live"
	"github.com/roach88/storefront/internal/store"
)

// CategoryList renders categories one per line.
type CategoryList []store.Category

func (l CategoryList) Text() string {
	var b strings.Builder
	for _, c := range l {
		fmt.Fprintf(&b, "%3d  %s\n", c.ID, c.Name)
	}
	return b.String()
}

// ProductList renders products one per line, marking those on offer.
type ProductList []store.Product

func (l ProductList) Text() string {
	var b strings.Builder
	for _, p := range l {
		offer := ""
		if p.OnOffer {
			offer = "  [offer]"
		}
		fmt.Fprintf(&b, "%3d  %-40s %8s%s\n", p.ID, p.Name, formatPrice(p.Price), offer)
	}
	return b.String()
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "categories",
		Short:         "List product categories by name",
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
			cats, err := live.First(ctx, sess.repos.Catalog.Categories())
			if err != nil {
				return storeError(f, "failed to read categories", err)
			}
			return f.Success(CategoryList(cats))
		},
	}
}

// ProductsOptions holds flags for the products command.
type ProductsOptions struct {
	*RootOptions
	CategoryID int64
	ProductID  int64
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Long: `List every product, the products of one category, or a single product.

Examples:
  storefront products
  storefront products --category 3
  storefront products --id 12 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducts(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.CategoryID, "category", 0, "only products of this category")
	cmd.Flags().Int64Var(&opts.ProductID, "id", 0, "only the product with this id")
	cmd.MarkFlagsMutuallyExclusive("category", "id")

	return cmd
}

func runProducts(opts *ProductsOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	sess, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	f := opts.formatter(cmd)
	catalog := sess.repos.Catalog

	if opts.ProductID != 0 {
		p, err := live.First(ctx, catalog.Product(opts.ProductID))
		if err != nil {
			return storeError(f, "failed to read product", err)
		}
		if p == nil {
			msg := fmt.Sprintf("product %d not found", opts.ProductID)
			_ = f.Error(CodeNotFound, msg, nil)
			return NewExitError(ExitFailure, msg)
		}
		return f.Success(ProductList{*p})
	}

	q := catalog.Products()
	if opts.CategoryID != 0 {
		q = catalog.ProductsByCategory(opts.CategoryID)
	}
	products, err := live.First(ctx, q)
	if err != nil {
		return storeError(f, "failed to read products", err)
	}
	return f.Success(ProductList(products))
}

// formatPrice renders a price in euros with two decimals.
func formatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2) + "€"
}

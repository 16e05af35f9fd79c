// Package seed loads the demo catalogue and inserts it into a newly created
// store.
//
// The catalogue is embedded YAML. Load decodes it strictly, validates it
// against an embedded CUE schema, then checks the cross references CUE does
// not express (unique ids, product categories that exist).
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/credential"
	"github.com/roach88/storefront/internal/store"
)

//go:embed catalog.yaml
var defaultCatalog []byte

//go:embed schema.cue
var schemaCUE string

// Catalog is the data inserted on first start.
type Catalog struct {
	User       User       `yaml:"user" json:"user"`
	Categories []Category `yaml:"categories" json:"categories"`
	Products   []Product  `yaml:"products" json:"products"`
}

// User is the seeded account. Password is plaintext here and hashed by
// Populate.
type User struct {
	ID       int64  `yaml:"id" json:"id"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Category is a seeded category.
type Category struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Product is a seeded product.
type Product struct {
	ID          int64   `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	ImageURL    string  `yaml:"image_url" json:"image_url"`
	Price       float64 `yaml:"price" json:"price"`
	CategoryID  int64   `yaml:"category_id" json:"category_id"`
	OnOffer     bool    `yaml:"on_offer" json:"on_offer"`
}

// ValidationError reports a catalogue that fails validation.
type ValidationError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the embedded demo catalogue.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// Load decodes and validates a catalogue. Unknown YAML fields are rejected.
// Usernames and names are normalised to NFC.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Field: "catalog", Message: "empty document"}
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	normalize(&c)

	if err := validateSchema(&c); err != nil {
		return nil, err
	}
	if err := validateRefs(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func normalize(c *Catalog) {
	c.User.Username = norm.NFC.String(c.User.Username)
	for i := range c.Categories {
		c.Categories[i].Name = norm.NFC.String(c.Categories[i].Name)
	}
	for i := range c.Products {
		c.Products[i].Name = norm.NFC.String(c.Products[i].Name)
		c.Products[i].Description = norm.NFC.String(c.Products[i].Description)
	}
}

// validateSchema unifies the catalogue with #Catalog and requires a concrete
// result.
func validateSchema(c *Catalog) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// validateRefs checks id uniqueness and that every product names a declared
// category.
func validateRefs(c *Catalog) error {
	categories := make(map[int64]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if categories[cat.ID] {
			return &ValidationError{
				Field:   "categories",
				Message: fmt.Sprintf("duplicate category id %d", cat.ID),
			}
		}
		categories[cat.ID] = true
	}

	products := make(map[int64]bool, len(c.Products))
	for _, p := range c.Products {
		if products[p.ID] {
			return &ValidationError{
				Field:   "products",
				Message: fmt.Sprintf("duplicate product id %d", p.ID),
			}
		}
		products[p.ID] = true

		if !categories[p.CategoryID] {
			return &ValidationError{
				Field:   "products",
				Message: fmt.Sprintf("product %d references unknown category %d", p.ID, p.CategoryID),
			}
		}
	}
	return nil
}

// formatCUEError keeps the first CUE error, with its position when known.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	ve := &ValidationError{Field: "schema", Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ve.Pos = positions[0]
	}
	return ve
}

// Populate inserts c into s: the user (password hashed at cost), then the
// categories, then the products, each in catalogue order.
func Populate(ctx context.Context, s *store.Store, c *Catalog, cost int) error {
	hashed, err := credential.Hash(c.User.Password, cost)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	user := store.User{ID: c.User.ID, Username: c.User.Username, Password: hashed}
	if _, err := s.Users().Upsert(ctx, user); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	for _, cat := range c.Categories {
		if _, err := s.Categories().Upsert(ctx, store.Category{ID: cat.ID, Name: cat.Name}); err != nil {
			return fmt.Errorf("seed category %d: %w", cat.ID, err)
		}
	}

	for _, p := range c.Products {
		prod := store.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Price:       p.Price,
			CategoryID:  p.CategoryID,
			OnOffer:     p.OnOffer,
		}
		if _, err := s.Products().Upsert(ctx, prod); err != nil {
			return fmt.Errorf("seed product %d: %w", p.ID, err)
		}
	}

	slog.Info("catalog seeded",
		"categories", len(c.Categories),
		"products", len(c.Products))
	return nil
}

// Hook returns a store create hook that populates the embedded catalogue.
func Hook(cost int) store.CreateHook {
	return func(ctx context.Context, s *store.Store) error {
		c, err := Default()
		if err != nil {
			return err
		}
		return Populate(ctx, s, c, cost)
	}
}

package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of storefront operations.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// UserID is the user cart and wishlist operations act for. Defaults to 1.
	UserID int64 `yaml:"user_id,omitempty"`

	// RunID is an optional fixed run id. If empty, each run gets a random one.
	RunID string `yaml:"run_id,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions check the final cart and wishlist.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation.
type Step struct {
	// Op names the operation (see the Op constants).
	Op string `yaml:"op"`

	// Args contains the operation arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect, if set, is compared with the operation's outcome.
	// If nil, the operation is expected to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is "ok" or "error". Empty means "ok".
	Outcome string `yaml:"outcome,omitempty"`

	// Result contains expected result fields.
	// This is a subset match - only specified fields are compared.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion checks the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "cart_total": Value is the expected total, e.g. "0.90"
	// - "cart_count": Count is the expected number of lines
	// - "wishlist_has": In tells whether ProductID is expected on the wishlist
	Type string `yaml:"type"`

	Value     string `yaml:"value,omitempty"`
	Count     *int   `yaml:"count,omitempty"`
	ProductID int64  `yaml:"product_id,omitempty"`
	In        *bool  `yaml:"in,omitempty"`
}

// Operation names.
const (
	OpLogin              = "login"
	OpCartAdd            = "cart_add"
	OpCartRemove         = "cart_remove"
	OpWishlistAdd        = "wishlist_add"
	OpWishlistRemove     = "wishlist_remove"
	OpProductsByCategory = "products_by_category"
	OpCart               = "cart"
	OpWishlistHas        = "wishlist_has"
)

// requiredArgs lists the arguments each operation needs.
var requiredArgs = map[string][]string{
	OpLogin:              {"username", "password"},
	OpCartAdd:            {"product_id"},
	OpCartRemove:         {"product_id"},
	OpWishlistAdd:        {"product_id"},
	OpWishlistRemove:     {"product_id"},
	OpProductsByCategory: {"category_id"},
	OpCart:               {},
	OpWishlistHas:        {"product_id"},
}

// Assertion type constants.
const (
	AssertCartTotal   = "cart_total"
	AssertCartCount   = "cart_count"
	AssertWishlistHas = "wishlist_has"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.UserID == 0 {
		scenario.UserID = 1
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.UserID < 0 {
		return fmt.Errorf("user_id must be positive")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	if step.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}

	required, ok := requiredArgs[step.Op]
	if !ok {
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	for _, name := range required {
		if _, ok := step.Args[name]; !ok {
			return fmt.Errorf("steps[%d]: %s requires arg %q", index, step.Op, name)
		}
	}

	if step.Expect != nil {
		switch step.Expect.Outcome {
		case "", OutcomeOK, OutcomeError:
		default:
			return fmt.Errorf("steps[%d].expect: outcome must be %q or %q", index, OutcomeOK, OutcomeError)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCartTotal:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for cart_total", index)
		}
	case AssertCartCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for cart_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for cart_count", index)
		}
	case AssertWishlistHas:
		if a.ProductID <= 0 {
			return fmt.Errorf("assertions[%d]: product_id is required for wishlist_has", index)
		}
		if a.In == nil {
			return fmt.Errorf("assertions[%d]: in is required for wishlist_has", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// Package harness runs scripted storefront scenarios against a fresh,
// seeded store and records what each step observed.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario checks"
//	user_id: 1            # optional, defaults to 1
//	run_id: demo-run      # optional fixed run id for golden traces
//	steps:
//	  - op: login
//	    args: { username: user123, password: password123 }
//	    expect:
//	      result: { ok: true }
//	  - op: cart_add
//	    args: { product_id: 2 }
//	  - op: cart
//	    expect:
//	      result: { count: 1, total: "0.90" }
//	assertions:
//	  - type: cart_total
//	    value: "0.90"
//	  - type: cart_count
//	    count: 1
//	  - type: wishlist_has
//	    product_id: 7
//	    in: false
//
// # Operations
//
//   - login: checks username and password; result {ok, message}
//   - cart_add, cart_remove: change the cart of user_id
//   - wishlist_add, wishlist_remove: change the wishlist of user_id
//   - products_by_category: result {count, product_ids}
//   - cart: result {count, total, items}
//   - wishlist_has: result {in}
//
// An expect clause names the outcome ("ok" unless given) and a subset of
// result fields to compare.
//
// # Assertion Types
//
//   - cart_total: the final cart total, formatted with two decimals
//   - cart_count: the final number of cart lines
//   - wishlist_has: whether product_id is on the final wishlist
//
// # Deterministic Testing
//
// Every run uses an in-memory database seeded with the demo catalogue, a
// step clock for shopping list timestamps, and sequence numbers counted per
// run, so a scenario with a fixed run_id produces a byte-identical trace
// that can be compared to a golden file.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/demo_cart.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness

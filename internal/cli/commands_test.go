package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/repository"
	"github.com/roach88/storefront/internal/store"
)

// decodeData unmarshals the data payload of a JSON response.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created and seeded")
	assert.FileExists(t, filepath.Join(dir, "supermarket_app_db"))

	out, err = executeCommand(t, dir, "--format", "json", "init")
	require.NoError(t, err)
	var res InitResult
	decodeData(t, out, &res)
	assert.False(t, res.Created, "second init must find the existing database")
	assert.Equal(t, filepath.Join(dir, "supermarket_app_db"), res.Path)
}

func TestInitCommand_DBNameFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STOREFRONT_DB_NAME", "shop.db")

	_, err := executeCommand(t, dir, "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "shop.db"))
}

func TestInitCommand_InvalidConfig(t *testing.T) {
	cfgDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "storefront.yaml"), []byte("user_id: -3\n"), 0o644))

	_, err := executeCommand(t, t.TempDir(), "--config", cfgDir, "init")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "user_id")
}

func TestLoginCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, dir, "login", "user123", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as user123 (user 1)\n", out)
}

func TestLoginCommand_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "user123", "nope"},
		{"unknown user", "ghost", "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, t.TempDir(), "login", tt.username, tt.password)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Equal(t, repository.LoginFailedMessage+"\n", out)
		})
	}
}

func TestLoginCommand_RejectedJSON(t *testing.T) {
	out, err := executeCommand(t, t.TempDir(), "--format", "json", "login", "user123", "nope")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeLogin, resp.Error.Code)
	assert.Equal(t, repository.LoginFailedMessage, resp.Error.Message)
}

func TestCategoriesCommand(t *testing.T) {
	out, err := executeCommand(t, t.TempDir(), "--format", "json", "categories")
	require.NoError(t, err)

	var cats []store.Category
	decodeData(t, out, &cats)
	ids := make([]int64, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	assert.Equal(t, []int64{3, 1, 5, 7, 8, 6, 4, 2}, ids)
}

func TestProductsCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, dir, "--format", "json", "products")
	require.NoError(t, err)
	var all []store.Product
	decodeData(t, out, &all)
	assert.Len(t, all, 23)

	out, err = executeCommand(t, dir, "--format", "json", "products", "--category", "1")
	require.NoError(t, err)
	var dairy []store.Product
	decodeData(t, out, &dairy)
	require.Len(t, dairy, 4)
	for _, p := range dairy {
		assert.Equal(t, int64(1), p.CategoryID)
	}

	out, err = executeCommand(t, dir, "products", "--id", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Γιαούρτι Στραγγιστό")
	assert.Contains(t, out, "0.90€")
	assert.Contains(t, out, "[offer]")
}

func TestProductsCommand_NotFound(t *testing.T) {
	out, err := executeCommand(t, t.TempDir(), "products", "--id", "999")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]: product 999 not found")
}

func TestProductsCommand_ExclusiveFlags(t *testing.T) {
	_, err := executeCommand(t, t.TempDir(), "products", "--id", "1", "--category", "1")
	require.Error(t, err)
}

func TestCartCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, dir, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty")
	assert.Contains(t, out, "Total: 0.00€")

	_, err = executeCommand(t, dir, "cart", "add", "1")
	require.NoError(t, err)
	_, err = executeCommand(t, dir, "cart", "add", "2")
	require.NoError(t, err)

	out, err = executeCommand(t, dir, "--format", "json", "cart", "add", "2")
	require.NoError(t, err)
	var view CartView
	decodeData(t, out, &view)
	require.Len(t, view.Items, 2, "adding a product twice keeps one line")
	assert.Equal(t, "2.40", view.Total)

	out, err = executeCommand(t, dir, "--format", "json", "cart", "remove", "1")
	require.NoError(t, err)
	decodeData(t, out, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].ProductID)
	assert.Equal(t, 1, view.Items[0].Quantity)
	assert.Equal(t, "0.90", view.Items[0].Subtotal)
	assert.Equal(t, "0.90", view.Total)
}

func TestCartCommands_PerUser(t *testing.T) {
	dir := t.TempDir()

	_, err := executeCommand(t, dir, "cart", "add", "3")
	require.NoError(t, err)

	// User 2 does not exist, so its list cannot be created.
	out, err := executeCommand(t, dir, "--user-id", "2", "cart", "add", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E004")
}

func TestCartAdd_UnknownProduct(t *testing.T) {
	out, err := executeCommand(t, t.TempDir(), "cart", "add", "999")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]: cart add failed")
}

func TestCartAdd_InvalidID(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-4"} {
		t.Run(arg, func(t *testing.T) {
			_, err := executeCommand(t, t.TempDir(), "cart", "add", "--", arg)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "invalid product id")
		})
	}
}

func TestCartWatch(t *testing.T) {
	dir := t.TempDir()
	_, err := executeCommand(t, dir, "cart", "add", "1")
	require.NoError(t, err)

	out, err := executeCommand(t, dir, "--format", "json", "cart", "watch", "--count", "1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	var view CartView
	decodeData(t, lines[0], &view)
	assert.Equal(t, "1.50", view.Total)
}

func TestCartWatch_NegativeCount(t *testing.T) {
	_, err := executeCommand(t, t.TempDir(), "cart", "watch", "--count", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestWishlistCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, dir, "wishlist", "has", "7")
	require.NoError(t, err)
	assert.Equal(t, "Product 7 is not on the wishlist\n", out)

	out, err = executeCommand(t, dir, "wishlist", "add", "7")
	require.NoError(t, err)
	assert.Equal(t, "Product 7 is on the wishlist\n", out)

	_, err = executeCommand(t, dir, "wishlist", "add", "7")
	require.NoError(t, err, "adding twice is a no-op")

	out, err = executeCommand(t, dir, "--format", "json", "wishlist", "has", "7")
	require.NoError(t, err)
	var res WishlistResult
	decodeData(t, out, &res)
	assert.True(t, res.InList)

	out, err = executeCommand(t, dir, "wishlist", "remove", "7")
	require.NoError(t, err)
	assert.Equal(t, "Product 7 is not on the wishlist\n", out)
}

func TestWishlistAdd_UnknownProduct(t *testing.T) {
	_, err := executeCommand(t, t.TempDir(), "wishlist", "add", "999")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

package account

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/trade-account/cmd/cli/config"
	"github.com/crucial707/trade-account/cmd/cli/output"
	"github.com/crucial707/trade-account/cmd/cli/root"
)

// userView mirrors the API's user payload (the hash is never sent).
type userView struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Balance  float64 `json:"balance"`
}

// ==========================
// CLI Command Init
// ==========================
func init() {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your trading account",
		Long: `Register, log in, and inspect your simulated trading account.
Stores the JWT token locally for future commands.`,
	}

	accountCmd.AddCommand(
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		profileCmd(),
		balanceCmd(),
		depositCmd(),
	)
	root.GetRoot().AddCommand(accountCmd)
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long:  "Register a new account; it starts with the default simulated balance.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" || password == "" {
				return fmt.Errorf("--username, --email and --password are required")
			}

			var out struct {
				Message string `json:"message"`
				ID      string `json:"id"`
			}
			payload := map[string]string{"username": username, "email": email, "password": password}
			if err := postJSON("/api/auth/register", "", payload, &out); err != nil {
				return err
			}

			fmt.Printf("%s (id: %s)\n", out.Message, out.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email address (used to log in)")
	cmd.Flags().StringVar(&password, "password", "", "Password for the new account")

	return cmd
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Trade Account API",
		Long:  "Authenticate and store a JWT token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}

			var out struct {
				Token string   `json:"token"`
				User  userView `json:"user"`
			}
			payload := map[string]string{"email": email, "password": password}
			if err := postJSON("/api/auth/login", "", payload, &out); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if out.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(out.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Login successful. Balance: %.2f\n", out.User.Balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")

	return cmd
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out the current user",
		Long:  "Remove the locally saved JWT token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// ==========================
// Profile
// ==========================
func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}

			var user userView
			if err := getJSON("/api/user/profile", token, &user); err != nil {
				return err
			}

			output.RenderTable(
				[]string{"ID", "Username", "Email", "Balance"},
				[][]interface{}{{user.ID, user.Username, user.Email, fmt.Sprintf("%.2f", user.Balance)}},
			)
			return nil
		},
	}
}

// ==========================
// Balance
// ==========================
func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}

			var out struct {
				Balance float64 `json:"balance"`
			}
			if err := getJSON("/api/user/balance", token, &out); err != nil {
				return err
			}

			output.RenderTable(
				[]string{"Balance"},
				[][]interface{}{{fmt.Sprintf("%.2f", out.Balance)}},
			)
			return nil
		},
	}
}

// ==========================
// Deposit
// ==========================
func depositCmd() *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Credit simulated funds to the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return fmt.Errorf("--amount must be positive")
			}

			token, err := requireToken()
			if err != nil {
				return err
			}

			var out struct {
				Balance float64 `json:"balance"`
			}
			payload := map[string]float64{"amount": amount}
			if err := postJSON("/api/user/update-balance", token, payload, &out); err != nil {
				return err
			}

			fmt.Printf("Deposited %.2f. New balance: %.2f\n", amount, out.Balance)
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount of simulated money to deposit")

	return cmd
}

func requireToken() (string, error) {
	token, err := config.LoadToken()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("not logged in; run 'tradeacct account login' first")
	}
	return token, nil
}

func postJSON(path, token string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return doJSON(req, token, out)
}

func getJSON(path, token string, out interface{}) error {
	req, err := http.NewRequest("GET", config.APIURL()+path, nil)
	if err != nil {
		return err
	}
	return doJSON(req, token, out)
}

func doJSON(req *http.Request, token string, out interface{}) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}

	return nil
}

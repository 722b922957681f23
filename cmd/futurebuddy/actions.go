package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/onefuture/futurebuddy/internal/action"
)

func actionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Inspect and resolve staged actions on a running server",
	}
	cmd.PersistentFlags().String("server", "http://127.0.0.1:8787", "Gateway base URL")
	cmd.PersistentFlags().String("token", os.Getenv("FUTUREBUDDY_TOKEN"), "Bearer token (defaults to $FUTUREBUDDY_TOKEN)")
	cmd.AddCommand(actionsListCmd(), actionsReviewCmd())
	return cmd
}

// gatewayClient is a thin HTTP client for the action endpoints.
type gatewayClient struct {
	base  string
	token string
	http  *http.Client
}

func newGatewayClient(cmd *cobra.Command) *gatewayClient {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")
	return &gatewayClient{
		base:  strings.TrimRight(server, "/"),
		token: token,
		http:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *gatewayClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *gatewayClient) pending() ([]action.Action, error) {
	var actions []action.Action
	err := c.do(http.MethodGet, "/api/actions/pending", nil, &actions)
	return actions, err
}

func (c *gatewayClient) list(status string, limit int) ([]action.Action, error) {
	path := fmt.Sprintf("/api/actions?limit=%d", limit)
	if status != "" {
		path += "&status=" + status
	}
	var actions []action.Action
	err := c.do(http.MethodGet, path, nil, &actions)
	return actions, err
}

func (c *gatewayClient) resolve(id string, approved bool) (action.Action, error) {
	var act action.Action
	err := c.do(http.MethodPost, "/api/actions/"+id+"/resolve", map[string]bool{"approved": approved}, &act)
	return act, err
}

func actionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, _ := cmd.Flags().GetString("status")
			limit, _ := cmd.Flags().GetInt("limit")

			actions, err := newGatewayClient(cmd).list(status, limit)
			if err != nil {
				return err
			}
			if len(actions) == 0 {
				fmt.Println("No actions.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIER\tSTATUS\tCOMMAND")
			for _, act := range actions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", act.ID, act.Tier, act.Status, truncate(act.Command, 60))
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("status", "", "Filter by status (pending, approved, denied, executed, failed)")
	cmd.Flags().Int("limit", 20, "Maximum number of actions to show")
	return cmd
}

func actionsReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Interactively approve or deny pending actions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newGatewayClient(cmd)

			pending, err := client.pending()
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Println("No pending actions.")
				return nil
			}

			for i, act := range pending {
				fmt.Printf("\n[%d/%d] %s\n", i+1, len(pending), act.ID)

				var approve bool
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("[%s] %s", strings.ToUpper(string(act.Tier)), act.Description)).
						Description(fmt.Sprintf("%s/%s\n%s", act.Domain, act.Intent, act.Command)).
						Affirmative("Approve").
						Negative("Deny").
						Value(&approve),
				))
				if err := form.Run(); err != nil {
					return err
				}

				resolved, err := client.resolve(act.ID, approve)
				if err != nil {
					fmt.Printf("  resolve failed: %v\n", err)
					continue
				}

				switch resolved.Status {
				case action.StatusExecuted:
					fmt.Printf("  executed: %s\n", truncate(resolved.Result, 200))
				case action.StatusFailed:
					fmt.Printf("  failed: %s\n", resolved.Error)
				case action.StatusDenied:
					fmt.Println("  denied")
				default:
					fmt.Printf("  status: %s\n", resolved.Status)
				}
			}
			return nil
		},
	}
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

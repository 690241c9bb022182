// AngelaMos | 2026
// policy.go

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/projectboard/internal/policy"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the role policy",
	}
	cmd.AddCommand(policyMatrixCmd())
	cmd.AddCommand(policyCheckCmd())
	return cmd
}

func policyMatrixCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the role by action table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())

			header := table.Row{"Action"}
			for _, r := range policy.Roles {
				header = append(header, r)
			}
			tw.AppendHeader(header)

			for _, a := range policy.Actions {
				row := table.Row{a}
				for _, r := range policy.Roles {
					row = append(row, mark(policy.Authorize(&policy.Actor{ID: "matrix", Role: r}, a, policy.Resource{}) == nil))
				}
				tw.AppendRow(row)
			}

			tw.AppendSeparator()
			row := table.Row{"assigns tasks to"}
			for _, r := range policy.Roles {
				row = append(row, joinRoles(policy.AssignableRoles(r)))
			}
			tw.AppendRow(row)

			if markdown {
				tw.RenderMarkdown()
			} else {
				tw.Render()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "render as a markdown table")
	return cmd
}

func policyCheckCmd() *cobra.Command {
	var role, action, assignee string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate one action for a role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := policy.ParseRole(role)
			if err != nil {
				return err
			}

			res := policy.Resource{}
			if assignee != "" {
				if res.AssigneeRole, err = policy.ParseRole(assignee); err != nil {
					return fmt.Errorf("assignee: %w", err)
				}
			}

			err = policy.Authorize(&policy.Actor{ID: "check", Role: r}, policy.Action(action), res)
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "allow: %s may %s\n", r, action)
				return nil
			case errors.Is(err, policy.ErrInvalidAssignee):
				fmt.Fprintf(cmd.OutOrStdout(), "deny: %s may not assign %s for %s\n", r, res.AssigneeRole, action)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "deny: %s may not %s\n", r, action)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "actor role")
	cmd.Flags().StringVar(&action, "action", "", "action name, see policy matrix")
	cmd.Flags().StringVar(&assignee, "assignee-role", "", "role of the assignee, if any")
	_ = cmd.MarkFlagRequired("role")   //nolint:errcheck // flag is defined above
	_ = cmd.MarkFlagRequired("action") //nolint:errcheck // flag is defined above
	return cmd
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}

func joinRoles(roles []policy.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/spf13/cobra"
)

// errDenied makes `check` exit non-zero without printing an error
var errDenied = errors.New("denied")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rbacctl",
		Short: "Inspect the Planifika admin role and permission table",
		Long: `rbacctl prints the permission catalog and the role table compiled into
the admin service, and evaluates single authorization checks offline.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMatrixCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newRolesCmd())
	root.AddCommand(newPermissionsCmd())
	return root
}

func newMatrixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Print the permission by role matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeMatrix(cmd.OutOrStdout())
		},
	}
}

func writeMatrix(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	roles := auth.AllRoles()

	header := []string{"PERMISSION"}
	for _, r := range roles {
		header = append(header, strings.ToUpper(r.String()))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, p := range auth.AllPermissions() {
		row := []string{p.String()}
		for _, r := range roles {
			mark := "-"
			if auth.HasPermission(&auth.Principal{Role: r}, p) {
				mark = "x"
			}
			row = append(row, mark)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func newCheckCmd() *cobra.Command {
	var requiredRole string

	cmd := &cobra.Command{
		Use:   "check <role> [permission]",
		Short: "Evaluate a requirement for a role",
		Long: `check evaluates the same requirement the service guards apply. The role
requirement, when given with --require-role, is checked before the
permission. Exits 1 when the check is denied.`,
		Example: `  rbacctl check admin_org project:delete
  rbacctl check manager --require-role super_admin`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := auth.ParseRole(args[0])
			if err != nil {
				return err
			}

			var req auth.Requirement
			if len(args) == 2 {
				if req.Permission, err = auth.ParsePermission(args[1]); err != nil {
					return err
				}
			}
			if requiredRole != "" {
				if req.Role, err = auth.ParseRole(requiredRole); err != nil {
					return err
				}
			}

			decision := req.Evaluate(&auth.Principal{Role: role})
			if decision.Allowed {
				fmt.Fprintln(cmd.OutOrStdout(), "allowed")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "denied (%s)\n", decision.Reason)
			return errDenied
		},
	}

	cmd.Flags().StringVar(&requiredRole, "require-role", "", "Role the caller must hold exactly")
	return cmd
}

type roleRow struct {
	Role        auth.Role         `json:"role"`
	Name        string            `json:"name"`
	Seniority   int               `json:"seniority"`
	Permissions []auth.Permission `json:"permissions"`
}

func newRolesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List roles from most to least senior",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]roleRow, 0, len(auth.AllRoles()))
			for _, r := range auth.AllRoles() {
				rows = append(rows, roleRow{
					Role:        r,
					Name:        r.DisplayName(),
					Seniority:   r.Seniority(),
					Permissions: auth.PermissionsFor(r),
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ROLE\tNAME\tSENIORITY\tPERMISSIONS")
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", row.Role, row.Name, row.Seniority, len(row.Permissions))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the role table as JSON")
	return cmd
}

func newPermissionsCmd() *cobra.Command {
	var resource string

	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "List the permission catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := auth.PermissionsByResource()
			resources := auth.Resources()
			if resource != "" {
				if _, ok := groups[resource]; !ok {
					return fmt.Errorf("unknown resource %q (known: %s)", resource, strings.Join(resources, ", "))
				}
				resources = []string{resource}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PERMISSION\tDESCRIPTION")
			for _, r := range resources {
				for _, p := range groups[r] {
					fmt.Fprintf(tw, "%s\t%s\n", p, auth.Describe(p))
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&resource, "resource", "", "Only list permissions of this resource")
	return cmd
}

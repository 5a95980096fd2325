package app

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/daemon"
)

func init() { //nolint: gochecknoinits
	checkCmd.Flags().StringVar(&checkFlags.tenant, "tenant", "", "Tenant id")
	checkCmd.Flags().StringVar(&checkFlags.user, "user", "", "User id")
	checkCmd.Flags().BoolVar(&checkFlags.anyOf, "any", false, "Require one of the permissions instead of all")
	checkCmd.Flags().StringVar(&checkFlags.category, "category", "", "Check a category action instead of permissions")
	checkCmd.Flags().StringVar(&checkFlags.form, "form", "", "Check access to a form instead of permissions")

	_ = checkCmd.MarkFlagRequired("tenant")
	_ = checkCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(checkCmd)
}

var (
	checkFlags struct {
		tenant   string
		user     string
		anyOf    bool
		category string
		form     string
	}

	errCheckArgs = errors.New("expected permission codes, or one action with --category")

	checkCmd = &cobra.Command{
		Use:   "check [permission...]",
		Short: "Print the authorization decision for a user",
		Example: `  genzi-rms-authz check --tenant shop-1 --user u1 pos:refund
  genzi-rms-authz check --tenant shop-1 --user u1 --any product:update product:delete
  genzi-rms-authz check --tenant shop-1 --user u1 --category 5f3c... write
  genzi-rms-authz check --tenant shop-1 --user u1 --form product-edit`,
		PreRunE: loadConfig,
		RunE:    runCheck,
	}
)

func runCheck(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(cmd.Context(), &cfg)
	if err != nil {
		return err
	}

	defer d.Close()

	ctx := cmd.Context()
	engine := d.Engine()
	tenantID, userID := checkFlags.tenant, checkFlags.user

	var decision authz.Decision

	switch {
	case checkFlags.form != "":
		decision, err = engine.Forms().HasFormAccess(ctx, tenantID, userID, checkFlags.form)
	case checkFlags.category != "":
		if len(args) != 1 {
			return errCheckArgs
		}

		decision, err = engine.Categories().CheckPermission(ctx, tenantID, userID, checkFlags.category,
			authz.CategoryAction(args[0]))
	case len(args) == 0:
		return errCheckArgs
	case checkFlags.anyOf:
		decision, err = engine.HasAnyPermission(ctx, tenantID, userID, args...)
	default:
		decision, err = engine.HasAllPermissions(ctx, tenantID, userID, args...)
	}

	if err != nil {
		return err
	}

	verdict := "denied"
	if decision.Allowed {
		verdict = "allowed"
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", verdict, decision.Reason)

	return err
}

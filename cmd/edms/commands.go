package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadwiabd/insight-edms/internal/archive"
	"github.com/nadwiabd/insight-edms/internal/bootstrap"
	"github.com/nadwiabd/insight-edms/internal/config"
	"github.com/nadwiabd/insight-edms/internal/permission"
	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/api"
)

type userFlags struct {
	email     string
	password  string
	superuser bool
	staff     bool
}

var (
	ErrUnknownPermission = errors.New("unknown permission")
	ErrAmbiguousObject   = errors.New("only one of --workflow or --state")
	ErrArchiveKind       = errors.New("kind must be workflow or state")
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and create the auto admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), cmd.ErrOrStderr(),
				func(cfg *config.Config, st *store.Store) error {
					boot := bootstrap.New(st, cfg, bootstrap.WithAnnouncer(
						func(username, password string) {
							fmt.Fprintln(cmd.OutOrStdout(),
								adminBanner(username, password))
						},
					))
					boot.Register()

					applied, err := st.Migrate(cmd.Context())
					if err != nil {
						return err
					}
					if len(applied) == 0 {
						printSuccess(cmd.OutOrStdout(), "No migrations to apply")
						return nil
					}
					printSuccess(cmd.OutOrStdout(), "Applied migrations: %s",
						strings.Join(applied, ", "))
					return nil
				},
			)
		},
	}
}

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var flags userFlags
	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), cmd.ErrOrStderr(),
				func(_ *config.Config, st *store.Store) error {
					password := flags.password
					generated := password == ""
					if generated {
						password = config.RandomPassword()
					}
					u := &api.User{
						Username:    args[0],
						Email:       flags.email,
						IsActive:    true,
						IsSuperuser: flags.superuser,
						IsStaff:     flags.staff,
					}
					if err := st.CreateUser(cmd.Context(), u, password); err != nil {
						return err
					}
					printSuccess(cmd.OutOrStdout(), "Created user %s (id %s)",
						styleValue.Render(u.Username), u.ID)
					if generated {
						fmt.Fprintln(cmd.OutOrStdout(),
							"  Password: "+styleValue.Render(password))
					}
					return nil
				},
			)
		},
	}
	createCmd.Flags().StringVar(&flags.email, "email", "", "email address")
	createCmd.Flags().StringVar(&flags.password, "password", "",
		"password (generated when empty)")
	createCmd.Flags().BoolVar(&flags.superuser, "superuser", false,
		"grant every permission")
	createCmd.Flags().BoolVar(&flags.staff, "staff", false,
		"mark the account as staff")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), cmd.ErrOrStderr(),
				func(_ *config.Config, st *store.Store) error {
					users, err := st.ListUsers(cmd.Context())
					if err != nil {
						return err
					}
					rows := make([][]string, len(users))
					for i, u := range users {
						rows[i] = []string{
							u.ID.String(), u.Username, u.Email,
							yesNo(u.IsSuperuser), yesNo(u.IsActive),
						}
					}
					printTable(cmd.OutOrStdout(), []string{
						"ID", "Username", "Email", "Superuser", "Active",
					}, rows)
					return nil
				},
			)
		},
	}

	userCmd.AddCommand(createCmd, listCmd)
	return userCmd
}

type grantTarget struct {
	workflow int64
	state    int64
}

func newGrantCmd() *cobra.Command {
	var target grantTarget
	cmd := &cobra.Command{
		Use:   "grant <username> <permission>",
		Short: "Grant a permission, or access to a single object",
		Long: `Grants a permission to a user. With --workflow or --state the
permission is granted on that object only.

Examples:
  edms grant alice workflows.workflow_setup_view
  edms grant bob workflows.workflow_setup_delete --workflow 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrant(cmd, args, target, true)
		},
	}
	target.bind(cmd)
	return cmd
}

func newRevokeCmd() *cobra.Command {
	var target grantTarget
	cmd := &cobra.Command{
		Use:   "revoke <username> <permission>",
		Short: "Revoke a permission, or access to a single object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrant(cmd, args, target, false)
		},
	}
	target.bind(cmd)
	return cmd
}

func (g *grantTarget) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&g.workflow, "workflow", 0, "workflow id")
	cmd.Flags().Int64Var(&g.state, "state", 0, "state id")
}

func runGrant(
	cmd *cobra.Command, args []string, target grantTarget, grant bool,
) error {
	perm, ok := permissions().Get(api.PermissionKey(args[1]))
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPermission, args[1])
	}
	if target.workflow != 0 && target.state != 0 {
		return ErrAmbiguousObject
	}

	return withStore(cmd.Context(), cmd.ErrOrStderr(),
		func(_ *config.Config, st *store.Store) error {
			ctx := cmd.Context()
			u, err := st.GetUserByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			var objectKey string
			switch {
			case target.workflow != 0:
				wf, err := st.GetWorkflow(ctx, api.WorkflowID(target.workflow))
				if err != nil {
					return err
				}
				objectKey = wf.AccessKey()
			case target.state != 0:
				s, err := st.GetState(ctx, api.StateID(target.state))
				if err != nil {
					return err
				}
				objectKey = s.AccessKey()
			}

			switch {
			case objectKey != "" && grant:
				err = st.GrantAccess(ctx, perm.Key(), objectKey, u.ID)
			case objectKey != "":
				err = st.RevokeAccess(ctx, perm.Key(), objectKey, u.ID)
			case grant:
				err = st.GrantPermission(ctx, u.ID, perm.Key())
			default:
				err = st.RevokePermission(ctx, u.ID, perm.Key())
			}
			if err != nil {
				return err
			}

			verb := "Granted"
			if !grant {
				verb = "Revoked"
			}
			scope := "everywhere"
			if objectKey != "" {
				scope = "on " + objectKey
			}
			printSuccess(cmd.OutOrStdout(), "%s %s to %s %s", verb,
				styleValue.Render(string(perm.Key())),
				styleValue.Render(u.Username), scope)
			return nil
		},
	)
}

func newPermissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permissions",
		Short: "List the known permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			perms := permissions().List()
			rows := make([][]string, len(perms))
			for i, p := range perms {
				rows[i] = []string{string(p.Key()), p.Label}
			}
			printTable(cmd.OutOrStdout(), []string{"Permission", "Label"}, rows)
			return nil
		},
	}
}

func newArchiveCmd() *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect tombstones of deleted objects",
	}
	listCmd := &cobra.Command{
		Use:   "list <workflow|state>",
		Short: "List deleted objects, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := api.ObjectKind(args[0])
			if kind != api.KindWorkflow && kind != api.KindState {
				return fmt.Errorf("%w: %s", ErrArchiveKind, args[0])
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), cfg)

			bucketURL := cfg.ArchiveBucketURL
			if bucketURL == "" {
				tmp, err := bootstrap.TemporaryDirectory(cfg.TemporaryDirectory)
				if err != nil {
					return err
				}
				if bucketURL, err = archive.LocalBucketURL(tmp); err != nil {
					return err
				}
			}
			ar, err := archive.Open(cmd.Context(), bucketURL, cfg.ArchivePrefix)
			if err != nil {
				return err
			}
			defer func() { _ = ar.Close() }()

			recs, err := ar.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			rows := make([][]string, len(recs))
			for i, r := range recs {
				rows[i] = []string{
					strconv.FormatInt(r.ID, 10), r.Label, r.DeletedBy,
					r.DeletedAt.Format("2006-01-02 15:04:05"),
				}
			}
			printTable(cmd.OutOrStdout(),
				[]string{"ID", "Label", "Deleted by", "Deleted at"}, rows)
			return nil
		},
	}
	archiveCmd.AddCommand(listCmd)
	return archiveCmd
}

func permissions() *permission.Registry {
	r := permission.NewRegistry()
	setup.RegisterPermissions(r)
	return r
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

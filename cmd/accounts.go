package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"ride-booking-api/auth"
	"ride-booking-api/models"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newCreatePrimeAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-prime-admin",
		Short: "Creates the single, verified prime admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			s, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			if len(password) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}

			hash, err := auth.NewPasswords(cfg.BcryptCost).Hash(password)
			if err != nil {
				return err
			}
			prime := &models.User{
				Email:        email,
				PasswordHash: &hash,
				FirstName:    firstName,
				LastName:     lastName,
				Role:         models.RolePrimeAdmin,
				IsVerified:   true,
			}
			if err := s.CreateAccount(cmd.Context(), prime); err != nil {
				return fmt.Errorf("failed to create prime admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ prime admin %s created with id %d\n", prime.Email, prime.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Email address of the prime admin")
	cmd.Flags().String("password", "", "Password of the prime admin")
	cmd.Flags().String("first-name", "Prime", "First name")
	cmd.Flags().String("last-name", "Admin", "Last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRemoveAdminsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-admins",
		Short: "Deletes every admin account; the prime admin is kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			s, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				admins, err := s.ListUsers(cmd.Context(), models.RoleAdmin)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "⚠️  %d admin accounts would be deleted, re-run with --yes to proceed\n", len(admins))
				return nil
			}
			n, err := s.DeleteAllAdmins(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ deleted %d admin accounts\n", n)
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Confirms the deletion")
	return cmd
}

func newListAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list-accounts",
		Aliases: []string{"ls"},
		Short:   "Lists accounts, optionally filtered by role",
		RunE: func(cmd *cobra.Command, args []string) error {
			var role models.UserRole
			if raw, _ := cmd.Flags().GetString("role"); raw != "" {
				parsed, err := models.ParseRole(raw)
				if err != nil {
					return err
				}
				role = parsed
			}
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			s, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			users, err := s.ListUsers(cmd.Context(), role)
			if err != nil {
				return err
			}
			return printAccounts(cmd, users)
		},
	}
	cmd.Flags().String("role", "", "Only list accounts with this role")
	return cmd
}

func printAccounts(cmd *cobra.Command, users []models.User) error {
	out := cmd.OutOrStdout()
	switch outputFormat(cmd.Flags()) {
	case "json":
		o, err := json.MarshalIndent(users, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(o))
	default:
		var tableData bytes.Buffer
		table := tablewriter.NewWriter(&tableData)
		table.Header([]string{"id", "email", "name", "role", "verified", "credits"})
		for _, u := range users {
			table.Append([]string{
				strconv.FormatInt(u.ID, 10),
				u.Email,
				u.FirstName + " " + u.LastName,
				string(u.Role),
				strconv.FormatBool(u.IsVerified),
				strconv.Itoa(u.Credits),
			})
		}
		table.Render()
		fmt.Fprint(out, tableData.String())
	}
	return nil
}

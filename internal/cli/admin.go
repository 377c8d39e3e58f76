package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"voxarena/db"
	"voxarena/models"
	"voxarena/utils"

	"github.com/spf13/cobra"
)

var (
	flagAdminEmail    string
	flagAdminPassword string
	flagAdminName     string
	flagAdminRole     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage CMS accounts",
}

var adminAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an admin or editor account",
	Args:  cobra.NoArgs,
	RunE:  runAdminAdd,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminAddCmd)
	adminAddCmd.Flags().StringVar(&flagAdminEmail, "email", "", "Account email (required)")
	adminAddCmd.Flags().StringVar(&flagAdminPassword, "password", "", "Account password, at least 8 characters (required)")
	adminAddCmd.Flags().StringVar(&flagAdminName, "name", "", "Display name (defaults to the email's local part)")
	adminAddCmd.Flags().StringVar(&flagAdminRole, "role", models.AdminRoleAdmin, "Role: admin or editor")
	_ = adminAddCmd.MarkFlagRequired("email")
	_ = adminAddCmd.MarkFlagRequired("password")
}

func runAdminAdd(cmd *cobra.Command, args []string) error {
	email := strings.TrimSpace(strings.ToLower(flagAdminEmail))
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email %q", flagAdminEmail)
	}
	if len(flagAdminPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if flagAdminRole != models.AdminRoleAdmin && flagAdminRole != models.AdminRoleEditor {
		return fmt.Errorf("role must be %q or %q", models.AdminRoleAdmin, models.AdminRoleEditor)
	}
	name := flagAdminName
	if name == "" {
		name = utils.ExtractNameFromEmail(email)
	}

	hashed, err := utils.HashPassword(flagAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	now := time.Now()
	admin := &models.Admin{
		Email:     email,
		Password:  hashed,
		Role:      flagAdminRole,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.NewAdminRepository(e.database).Create(cmd.Context(), admin); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return fmt.Errorf("admin with email %s already exists", email)
		}
		return err
	}

	printf(cmd, "Admin created\n  ID: %s\n  Email: %s\n  Name: %s\n  Role: %s\n", admin.ID.Hex(), admin.Email, admin.Name, admin.Role)
	return nil
}

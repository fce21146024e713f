// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/pkg/types"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage portal accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	Long: `Create adds an account directly to the database. It is the way to
bootstrap the first administrator.`,
	RunE: runUserCreate,
}

var userRoleCmd = &cobra.Command{
	Use:   "role",
	Short: "Change an account's role",
	RunE:  runUserRole,
}

func init() {
	userCreateCmd.Flags().String("email", "", "account email (required)")
	userCreateCmd.Flags().String("name", "", "full name (required)")
	userCreateCmd.Flags().String("password", "", "initial password (required)")
	userCreateCmd.Flags().String("role", string(types.RoleResearcher), "RESEARCHER or ADMIN")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("password")

	userRoleCmd.Flags().String("email", "", "account email (required)")
	userRoleCmd.Flags().String("role", "", "RESEARCHER or ADMIN (required)")
	_ = userRoleCmd.MarkFlagRequired("email")
	_ = userRoleCmd.MarkFlagRequired("role")

	userCmd.AddCommand(userCreateCmd, userRoleCmd)
	rootCmd.AddCommand(userCmd)
}

func parseRole(s string) (types.Role, error) {
	r := types.Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q (want RESEARCHER or ADMIN)", s)
	}
	return r, nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")
	roleFlag, _ := cmd.Flags().GetString("role")

	role, err := parseRole(roleFlag)
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.auth.CreateUser(cmd.Context(), auth.RegisterInput{
		Email:    email,
		Password: password,
		FullName: name,
	}, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", u.Role, u.Email, u.ID)
	return nil
}

func runUserRole(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	roleFlag, _ := cmd.Flags().GetString("role")

	role, err := parseRole(roleFlag)
	if err != nil {
		return err
	}
	normalized, ok := auth.NormalizeEmail(email)
	if !ok {
		return fmt.Errorf("invalid email %q", email)
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.store.GetUserByEmail(cmd.Context(), normalized)
	if err != nil {
		return err
	}
	if err := a.store.SetRole(cmd.Context(), u.ID, role); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, role)
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard statistics",
	Long: `Stats prints the global dashboard, or one researcher's dashboard when
--email is given. Output is YAML unless --json is set.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().String("email", "", "researcher email (default: global dashboard)")
	statsCmd.Flags().Bool("json", false, "print JSON instead of YAML")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var d types.Dashboard
	if email == "" {
		d, err = a.stats.Global(cmd.Context())
	} else {
		normalized, _ := auth.NormalizeEmail(email)
		u, lookupErr := a.store.GetUserByEmail(cmd.Context(), normalized)
		if lookupErr != nil {
			return lookupErr
		}
		d, err = a.stats.ForResearcher(cmd.Context(), u.ID)
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

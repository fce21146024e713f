// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/cv"
)

var cvCmd = &cobra.Command{
	Use:   "cv",
	Short: "Work with researcher CVs",
}

var cvExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a researcher's CV document",
	Long: `Export assembles the CV document for one researcher (profile, CV
sections, published research, activities and their summary) and writes it
as JSON or YAML to stdout or --out.`,
	RunE: runCVExport,
}

func init() {
	cvExportCmd.Flags().String("email", "", "researcher email (required)")
	cvExportCmd.Flags().String("format", cv.FormatYAML, "output format: json or yaml")
	cvExportCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	_ = cvExportCmd.MarkFlagRequired("email")

	cvCmd.AddCommand(cvExportCmd)
	rootCmd.AddCommand(cvCmd)
}

func runCVExport(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	formatFlag, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	format, err := cv.ParseFormat(formatFlag)
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
	doc, err := a.cv.Build(cmd.Context(), u.ID)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	if err := cv.Export(doc, format, w); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s CV for %s to %s\n", format, u.Email, out)
	}
	return nil
}

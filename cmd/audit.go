package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/breachcase/breachwatch/internal/audit"
)

var auditThreshold float64

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report data-quality issues in the breach corpus",
	Long:  "Scans stored breaches for suspected duplicate records, missing fields, and breaches without a recorded source.",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := audit.NewAuditor(st, auditThreshold).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Render())
		return nil
	},
}

func init() {
	auditCmd.Flags().Float64Var(&auditThreshold, "threshold", 0.85, "company-name similarity above which records are flagged as duplicates")
	rootCmd.AddCommand(auditCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fhirtools/fhirtools/engine"
	"github.com/fhirtools/fhirtools/internal/jsonmodel"
	"github.com/fhirtools/fhirtools/validator"
)

func newValidateCmd() *cobra.Command {
	var profiles []string
	var igDir string

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a FHIR resource against one or more profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if igDir == "" {
				return fmt.Errorf("--ig is required")
			}
			eng, err := engine.New(igDir)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			root, err := jsonmodel.Parse(data)
			if err != nil {
				return err
			}
			results, err := eng.Validate(root, profiles...)
			if err != nil {
				return err
			}
			printResults(results)
			if !results.IsValid() {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&profiles, "profile", nil, "profile URL to validate against (repeatable; defaults to the resource's own type)")
	cmd.Flags().StringVar(&igDir, "ig", "", "directory of XML conformance resources to load (required)")
	return cmd
}

func printResults(results *validator.Results) {
	if len(results.Issues) == 0 {
		fmt.Println("no issues found")
		return
	}
	for _, issue := range results.Issues {
		fmt.Println(issue.String())
	}
}

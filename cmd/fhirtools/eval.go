package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fhirtools/fhirtools/engine"
	"github.com/fhirtools/fhirtools/internal/jsonmodel"
	"github.com/fhirtools/fhirtools/model"
)

func newEvalCmd() *cobra.Command {
	var igDir string

	cmd := &cobra.Command{
		Use:   "eval [file] [expression]",
		Short: "Evaluate a FHIRPath expression against a FHIR resource",
		Args:  cobra.ExactArgs(2),
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
			result, err := eng.Evaluate(root, args[1])
			if err != nil {
				return err
			}
			printCollection(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&igDir, "ig", "", "directory of XML conformance resources to load (required)")
	return cmd
}

func printCollection(c model.Collection) {
	if len(c) == 0 {
		fmt.Println("(empty)")
		return
	}
	for i, el := range c {
		s, err := el.AsString()
		if err != nil {
			fmt.Printf("[%d] <%s>\n", i, el.Type())
			continue
		}
		fmt.Printf("[%d] %s\n", i, s)
	}
}

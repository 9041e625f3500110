// Command fhirtools is a cobra CLI driving the repository/fhirpath/validator
// stack against real resource files (spec.md §4.7, §6.3 [EXPANSION]).
// Grounded on robertoAraneda-gofhir/cmd/gofhir/main.go's command tree shape:
// a root command with Use/Short/Long plus one newXCmd() per subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fhirtools",
		Short: "FHIRPath evaluation and conformance validation toolkit",
		Long: `fhirtools evaluates FHIRPath expressions and validates FHIR resources
against StructureDefinitions loaded from an implementation guide directory.`,
	}

	root.AddCommand(newValidateCmd())
	root.AddCommand(newEvalCmd())
	return root
}

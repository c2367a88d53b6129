package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nebulab/shopify-toolkit/internal/schema"
)

var (
	schemaSDLFile string
	schemaTypes   []string
	schemaPackage string
	schemaOut     string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Work with Admin API schema definitions",
}

var schemaGenerateCmd = &cobra.Command{
	Use:   "generate --sdl <schema.graphql>",
	Short: "Generate Go types from an Admin API SDL file",
	Long: `Generate Go structs and enum constants from a GraphQL SDL document.

Examples:
  shopify-toolkit schema generate --sdl admin.graphql -o types.go
  shopify-toolkit schema generate --sdl admin.graphql --types Product,Collection`,
	RunE: runSchemaGenerate,
}

func init() {
	schemaGenerateCmd.Flags().StringVar(&schemaSDLFile, "sdl", "", "SDL file to generate from (required)")
	schemaGenerateCmd.Flags().StringSliceVar(&schemaTypes, "types", nil, "object types to generate (default: all)")
	schemaGenerateCmd.Flags().StringVar(&schemaPackage, "package", "schema", "package name of the generated file")
	schemaGenerateCmd.Flags().StringVarP(&schemaOut, "out", "o", "", "output file (default: stdout)")
	schemaGenerateCmd.MarkFlagRequired("sdl")

	schemaCmd.AddCommand(schemaGenerateCmd)
}

func runSchemaGenerate(cmd *cobra.Command, args []string) error {
	sdl, err := os.ReadFile(schemaSDLFile)
	if err != nil {
		return fmt.Errorf("read sdl file: %w", err)
	}

	source, err := schema.Generate(sdl, schema.Options{
		Package: schemaPackage,
		Types:   schemaTypes,
	})
	if err != nil {
		return err
	}

	if schemaOut == "" {
		_, err = os.Stdout.Write(source)
		return err
	}
	if err := os.WriteFile(schemaOut, source, 0644); err != nil {
		return fmt.Errorf("write generated file: %w", err)
	}
	fmt.Printf("Wrote %s\n", schemaOut)
	return nil
}

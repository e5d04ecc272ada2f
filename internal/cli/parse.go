package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/location"
	"github.com/jhoicas/aviation-inventory/internal/domain/scan"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/locations"
)

var parseCatalog string

var parseCmd = &cobra.Command{
	Use:   "parse <texto>...",
	Short: "Muestra cómo se interpreta un texto escaneado",
	Long: `Interpreta cada argumento como lo haría la estación: URL de parte (/scan/{id}),
URL de ubicación (/location/{código}) o texto literal. Para ubicaciones indica además
la categoría según el catálogo.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := locations.Load(parseCatalog)
		if err != nil {
			exitError("%v", err)
		}
		printParsed(cmd.OutOrStdout(), catalog, args)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseCatalog, "catalog", "", "catálogo de ubicaciones en YAML (vacío = por defecto)")
}

func printParsed(out io.Writer, catalog *location.Catalog, args []string) {
	cyan := color.New(color.FgCyan)
	for _, raw := range args {
		code := scan.Parse(raw)
		cyan.Fprintf(out, "%-8s", code.Kind)
		fmt.Fprintf(out, " %q", code.Value)
		if code.Kind != scan.KindPart {
			norm := location.Normalize(code.Value)
			if cat := catalog.Classify(norm); norm != "" && cat != entity.CategoryUnclassified {
				fmt.Fprintf(out, "  ubicación %s (%s)", norm, strings.ToLower(string(cat)))
			}
		}
		fmt.Fprintln(out)
	}
}

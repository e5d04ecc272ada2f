// Package cli implementa los comandos de scanctl.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scanctl",
	Short: "Estación de traslados por doble escaneo",
	Long: `scanctl conduce el flujo de doble escaneo (parte → destino → confirmación)
contra el backend REST de inventario e imprime la etiqueta de la parte trasladada.`,
	SilenceUsage: true,
}

// Execute ejecuta el comando raíz.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(stationCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(tokenCmd)
}

// exitError imprime el error y termina.
func exitError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

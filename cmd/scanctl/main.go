// Command scanctl estación de escaneo en terminal: un lector de código de barras en
// modo teclado escribe el texto decodificado en stdin.
package main

import (
	"os"

	"github.com/jhoicas/aviation-inventory/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/aviation-inventory/pkg/config"
	"github.com/jhoicas/aviation-inventory/pkg/jwt"
)

var (
	tokenActorID   string
	tokenActorName string
	tokenRole      string
	tokenMinutes   int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Emite un Bearer token de operador firmado con JWT_SECRET",
	Long: `Emite un token para entornos de desarrollo y estaciones fijas. El nombre del
operador viaja en el token y queda registrado como actor de cada traslado.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			exitError("%v", err)
		}
		minutes := tokenMinutes
		if minutes <= 0 {
			minutes = cfg.JWT.Expiration
		}
		tok, err := jwt.Generate(cfg.JWT.Secret, tokenActorID, tokenActorName, strings.ToLower(tokenRole), cfg.JWT.Issuer, minutes)
		if err != nil {
			exitError("%v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenActorID, "actor-id", "", "ID del operador")
	tokenCmd.Flags().StringVar(&tokenActorName, "actor-name", "", "nombre del operador")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "bodega", "admin | tecnico | inspector | bodega")
	tokenCmd.Flags().IntVar(&tokenMinutes, "minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	_ = tokenCmd.MarkFlagRequired("actor-id")
	_ = tokenCmd.MarkFlagRequired("actor-name")
}

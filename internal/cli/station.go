package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jhoicas/aviation-inventory/internal/application/label"
	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
	"github.com/jhoicas/aviation-inventory/internal/domain"
	"github.com/jhoicas/aviation-inventory/internal/domain/entity"
	"github.com/jhoicas/aviation-inventory/internal/domain/location"
	"github.com/jhoicas/aviation-inventory/internal/domain/movement"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/backend"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/locations"
	infrapdf "github.com/jhoicas/aviation-inventory/internal/infrastructure/pdf"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/printer"
	"github.com/jhoicas/aviation-inventory/pkg/config"
	"github.com/jhoicas/aviation-inventory/pkg/logger"
)

var (
	stationActorID   string
	stationActorName string
	stationBackend   string
	stationToken     string
	stationNoPrint   bool
	stationVerbose   bool
)

const stationHelp = `Lee líneas de stdin. Cada línea es un escaneo (parte o destino según el paso)
o un comando:

  :confirm     confirmar el traslado al destino validado
  :override    forzar el traslado de material rechazado al destino rechazado
  :dest CÓDIGO elegir destino sin escanear (selección rápida)
  :back        volver a elegir destino
  :cancel      descartar el traslado en curso
  :reset       empezar un traslado nuevo tras un éxito
  :reprint     reimprimir la etiqueta del último traslado
  :locations   listar destinos conocidos
  :quit        salir`

var stationCmd = &cobra.Command{
	Use:   "station",
	Short: "Inicia la estación de escaneo",
	Long:  stationHelp,
	Run:   runStation,
}

func init() {
	stationCmd.Flags().StringVar(&stationActorID, "actor-id", "", "ID del operador")
	stationCmd.Flags().StringVar(&stationActorName, "actor-name", "", "nombre del operador (queda en el historial)")
	stationCmd.Flags().StringVar(&stationBackend, "backend", "", "URL del backend (por defecto BACKEND_URL)")
	stationCmd.Flags().StringVar(&stationToken, "token", "", "Bearer token del backend (por defecto BACKEND_TOKEN)")
	stationCmd.Flags().BoolVar(&stationNoPrint, "no-print", false, "no imprimir etiquetas")
	stationCmd.Flags().BoolVarP(&stationVerbose, "verbose", "v", false, "log detallado en stderr")
	_ = stationCmd.MarkFlagRequired("actor-id")
	_ = stationCmd.MarkFlagRequired("actor-name")
}

func runStation(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}
	level := "warn"
	if stationVerbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Output: cmd.ErrOrStderr()})

	baseURL, token := cfg.Backend.BaseURL, cfg.Backend.Token
	if stationBackend != "" {
		baseURL = stationBackend
	}
	if stationToken != "" {
		token = stationToken
	}
	client := backend.NewClient(baseURL, token, cfg.Backend.Timeout)

	catalog, err := locations.Load(cfg.Locations.CatalogPath)
	if err != nil {
		exitError("%v", err)
	}

	var lp scanflow.LabelPrinter
	if !stationNoPrint {
		spool, err := printer.NewSpool(cfg.Label.SpoolDir)
		if err != nil {
			exitError("%v", err)
		}
		lp = label.NewTrigger(
			infrapdf.NewLabelRenderer(cfg.Scan.PublicBaseURL, nil),
			spool, spool, nil,
			label.Config{AssetTimeout: cfg.Label.AssetTimeout, SettleDelay: cfg.Label.SettleDelay, Locale: cfg.Label.Locale},
			log.Component("label"),
		)
	}

	actor := entity.Actor{ID: stationActorID, Name: stationActorName}
	m := scanflow.NewMachine(uuid.NewString(), actor, scanflow.Deps{
		Inventory:      client,
		Gateway:        client,
		Validator:      location.NewValidator(catalog),
		Builder:        movement.NewBuilder(),
		Printer:        lp,
		Logger:         log.Component("station"),
		PersistTimeout: cfg.Scan.PersistTimeout,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Estación de %s contra %s (:help para comandos)\n", actor.Name, baseURL)
	if err := newStation(m, catalog, out).run(cmd.Context(), cmd.InOrStdin()); err != nil {
		exitError("leer entrada: %v", err)
	}
}

// station bucle de lectura sobre una máquina de escaneo.
type station struct {
	m       *scanflow.Machine
	catalog *location.Catalog
	out     io.Writer

	ok, warn, bad, info *color.Color
}

func newStation(m *scanflow.Machine, catalog *location.Catalog, out io.Writer) *station {
	return &station{
		m:       m,
		catalog: catalog,
		out:     out,
		ok:      color.New(color.FgGreen, color.Bold),
		warn:    color.New(color.FgYellow),
		bad:     color.New(color.FgRed),
		info:    color.New(color.FgCyan),
	}
}

func (s *station) run(ctx context.Context, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sc := bufio.NewScanner(in)
	s.prompt()
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && s.handle(ctx, line) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		s.prompt()
	}
	return sc.Err()
}

// handle procesa una línea; devuelve true para salir.
func (s *station) handle(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	var (
		sess scanflow.Session
		err  error
	)
	switch strings.ToLower(name) {
	case ":quit", ":q":
		return true
	case ":help", ":h":
		fmt.Fprintln(s.out, stationHelp)
		return false
	case ":locations":
		s.locations()
		return false
	case ":confirm":
		sess, err = s.m.Confirm(ctx)
	case ":override":
		sess, err = s.m.Override(ctx)
	case ":dest":
		sess, err = s.m.SelectDestination(ctx, arg)
	case ":back":
		sess, err = s.m.Back()
	case ":cancel":
		sess, err = s.m.Cancel()
	case ":reset":
		sess, err = s.m.Reset()
	case ":reprint":
		sess, err = s.m.Reprint(ctx)
	default:
		if strings.HasPrefix(line, ":") {
			s.bad.Fprintf(s.out, "comando desconocido %s (:help)\n", name)
			return false
		}
		sess, err = s.scan(ctx, line)
	}
	s.report(sess, err)
	return false
}

// scan tras un éxito, escanear otra parte abre un traslado nuevo.
func (s *station) scan(ctx context.Context, raw string) (scanflow.Session, error) {
	if s.m.Snapshot().Step == scanflow.StepSuccess {
		if _, err := s.m.Reset(); err != nil {
			return s.m.Snapshot(), err
		}
	}
	return s.m.HandleScan(ctx, raw)
}

func (s *station) report(sess scanflow.Session, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionBusy):
		s.warn.Fprintln(s.out, "guardando el traslado anterior; espere")
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		s.warn.Fprintf(s.out, "no disponible en %s\n", sess.Step)
		return
	case sess.LastError != nil:
		c := s.warn
		if sess.LastError.Kind == scanflow.KindError {
			c = s.bad
		}
		c.Fprintf(s.out, "[%s] %s\n", sess.LastError.Code, sess.LastError.Message)
		if sess.OverrideOffered() {
			s.info.Fprintf(s.out, "  :override para forzar el traslado a %s\n", sess.PendingOverride)
		}
	case err != nil:
		s.bad.Fprintf(s.out, "error: %v\n", err)
	}

	switch sess.Step {
	case scanflow.StepPartIdentified:
		if sess.LastError == nil {
			p := sess.Part
			s.info.Fprintf(s.out, "%s  %s  P/N %s  S/N %s  [%s] en %s\n", p.ID, p.Info.PartName, p.Info.PN, p.Info.SN, p.TagColor, p.Location)
		}
	case scanflow.StepLocationScanned:
		if sess.LastError == nil {
			s.info.Fprintf(s.out, "destino %s (%s)\n", sess.TargetLocation, strings.ToLower(string(sess.TargetCategory)))
		}
	case scanflow.StepSuccess:
		if ev := sess.LastEvent; ev != nil && err == nil {
			suffix := ""
			if ev.Override {
				suffix = " (forzado)"
			}
			s.ok.Fprintf(s.out, "✔ %s: %s → %s%s\n", sess.Part.ID, ev.PreviousLocation, ev.NewLocation, suffix)
		}
		if n := sess.PrintNotice; n != nil {
			c := s.warn
			if n.Kind == scanflow.KindError {
				c = s.bad
			}
			c.Fprintf(s.out, "[%s] %s\n", n.Code, n.Message)
		}
	}
}

func (s *station) prompt() {
	sess := s.m.Snapshot()
	switch sess.Step {
	case scanflow.StepIdle:
		fmt.Fprint(s.out, "parte> ")
	case scanflow.StepPartIdentified:
		fmt.Fprintf(s.out, "destino para %s [%s]> ", sess.Part.ID, sess.Part.TagColor)
	case scanflow.StepLocationScanned:
		fmt.Fprintf(s.out, "¿trasladar a %s? (:confirm / :back)> ", sess.TargetLocation)
	case scanflow.StepSuccess:
		fmt.Fprint(s.out, "siguiente parte (:reprint)> ")
	default:
		fmt.Fprint(s.out, "guardando...> ")
	}
}

func (s *station) locations() {
	for _, cat := range []entity.LocationCategory{entity.CategoryQuarantine, entity.CategoryStorage, entity.CategoryHangar} {
		codes := make([]string, 0)
		for _, l := range s.catalog.ByCategory(cat) {
			codes = append(codes, l.Code)
		}
		fmt.Fprintf(s.out, "%-11s %s\n", cat, strings.Join(codes, ", "))
	}
}

// tienda es el cliente de terminal de la heladería: catálogo para visitantes y pantallas
// de gestión según el rol del usuario que inicia sesión.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jhoicas/heladeria/internal/application/auth"
	"github.com/jhoicas/heladeria/internal/application/listing"
	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/infrastructure/supabase"
	"github.com/jhoicas/heladeria/internal/interfaces/tui"
	"github.com/jhoicas/heladeria/pkg/config"
	"github.com/jhoicas/heladeria/pkg/logger"
)

var (
	// Flags globales
	logFile     string
	sessionFile string
	noAltScreen bool
)

var rootCmd = &cobra.Command{
	Use:   "tienda",
	Short: "Heladería El Buen Sabor: tienda de terminal",
	Long: `Abre la tienda interactiva. Sin sesión muestra el catálogo y el inicio de sesión;
con sesión monta las pantallas que habilita el rol del usuario.`,
	SilenceUsage: true,
	RunE:         runStore,
}

var sessionCmd = &cobra.Command{
	Use:   "sesion",
	Short: "Muestra la sesión guardada y el rol resuelto",
	RunE:  showSession,
}

var logoutCmd = &cobra.Command{
	Use:   "salir",
	Short: "Cierra la sesión guardada",
	RunE:  logout,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Archivo de log (por defecto LOG_FILE o tienda.log)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Archivo de sesión (por defecto SESSION_FILE)")
	rootCmd.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "Dibujar en la pantalla normal de la terminal")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(logoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app dependencias armadas a partir de la configuración.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	closeLog func()
	auth     *supabase.Auth
	data     *supabase.Data
	users    *usecase.UserUseCase
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	if sessionFile != "" {
		cfg.Session.File = sessionFile
	}
	path := logFile
	if path == "" {
		path = cfg.App.LogFile
	}
	if path == "" {
		path = "tienda.log"
	}
	// La interfaz ocupa la terminal: el log va siempre a archivo.
	log, closer, err := logger.NewFile(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}, path)
	if err != nil {
		return nil, fmt.Errorf("abrir log: %w", err)
	}

	client, err := supabase.NewClient(cfg.Supabase, log)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	sbAuth := supabase.NewAuth(client, supabase.NewFileStore(cfg.Session.File))
	data := supabase.NewData(client, sbAuth)
	return &app{
		cfg:      cfg,
		log:      log,
		closeLog: func() { _ = closer.Close() },
		auth:     sbAuth,
		data:     data,
		users:    usecase.NewUserUseCase(data, sbAuth),
	}, nil
}

func (a *app) close() {
	a.auth.Close()
	a.closeLog()
}

func runStore(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.log.Info().Str("backend", a.cfg.Supabase.URL).Msg("iniciando tienda")
	a.auth.StartAutoRefresh(ctx)

	resolver := auth.NewResolver(a.auth, a.users, a.log)
	resolver.Start(ctx)
	defer resolver.Close()

	products := usecase.NewProductUseCase(a.data)
	deps := tui.Deps{
		Session:     resolver,
		Ingredients: listing.NewIngredientController(usecase.NewIngredientUseCase(a.data)),
		Users:       listing.NewUserController(a.users),
		Products:    listing.NewProductController(products, a.cfg.UI.NotificationTTL),
		Reports:     usecase.NewProfitabilityUseCase(products, nil),
		Log:         a.log,
	}
	var opts []tea.ProgramOption
	if !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if err := tui.Run(ctx, deps, opts...); err != nil {
		a.log.Error().Err(err).Msg("interfaz finalizada con error")
		return err
	}
	a.log.Info().Msg("tienda cerrada")
	return nil
}

func showSession(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	resolver := auth.NewResolver(a.auth, a.users, a.log)
	defer resolver.Close()

	done := make(chan auth.State, 1)
	stop := resolver.OnChange(func(s auth.State) {
		if s.Role.Status != auth.RoleResolving {
			select {
			case done <- s:
			default:
			}
		}
	})
	defer stop()

	st := resolver.Start(ctx)
	if st.Role.Status == auth.RoleResolving {
		select {
		case st = <-done:
		case <-ctx.Done():
			return fmt.Errorf("resolver rol: %w", ctx.Err())
		}
	}

	out := cmd.OutOrStdout()
	if !st.SessionPresent() {
		fmt.Fprintln(out, "Sin sesión (visitante).")
		return nil
	}
	fmt.Fprintf(out, "Usuario: %s\nRol:     %s\nVence:   %s\n",
		st.Email(), st.Role.Role.Label(), st.Session.ExpiresAt.Local().Format("02/01/2006 15:04"))
	if st.ProvisionErr != nil {
		fmt.Fprintf(out, "Aviso:   no se pudo crear el perfil (%v)\n", st.ProvisionErr)
	}
	return nil
}

func logout(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if a.auth.CurrentSession() == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No hay sesión guardada.")
		return nil
	}
	if err := a.auth.SignOut(cmd.Context()); err != nil {
		return fmt.Errorf("cerrar sesión: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada.")
	return nil
}

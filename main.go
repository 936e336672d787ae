// Sublyadmin — administrative console service for the Sublymus hosting platform.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/sublymus/sublyadmin/internal/backend"
	"github.com/sublymus/sublyadmin/internal/config"
	"github.com/sublymus/sublyadmin/internal/control"
	"github.com/sublymus/sublyadmin/internal/fleet"
	"github.com/sublymus/sublyadmin/internal/poller"
	"github.com/sublymus/sublyadmin/internal/probe"
	"github.com/sublymus/sublyadmin/internal/server"
)

const asciiLogo = `
 ███████╗██╗   ██╗██████╗ ██╗  ██╗   ██╗ █████╗ ██████╗ ███╗   ███╗██╗███╗   ██╗
 ██╔════╝██║   ██║██╔══██╗██║  ╚██╗ ██╔╝██╔══██╗██╔══██╗████╗ ████║██║████╗  ██║
 ███████╗██║   ██║██████╔╝██║   ╚████╔╝ ███████║██║  ██║██╔████╔██║██║██╔██╗ ██║
 ╚════██║██║   ██║██╔══██╗██║    ╚██╔╝  ██╔══██║██║  ██║██║╚██╔╝██║██║██║╚██╗██║
 ███████║╚██████╔╝██████╔╝███████╗██║   ██║  ██║██████╔╝██║ ╚═╝ ██║██║██║ ╚████║
 ╚══════╝ ╚═════╝ ╚═════╝ ╚══════╝╚═╝   ╚═╝  ╚═╝╚═════╝ ╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝
`

const version = "v0.1.0"

func printBanner(mode string) {
	fmt.Print(asciiLogo + "\n")
	fmt.Printf("  ► Sublyadmin %s  |  Mode: %s\n\n", version, mode)
}

func main() {
	root := &cobra.Command{
		Use:   "sublyadmin",
		Short: "Sublyadmin — Sublymus platform administration console",
		Long: `Sublyadmin is the administration console service for the Sublymus
multi-tenant hosting platform: it monitors and controls the deployed
service fleet (apps, themes, per-store APIs) and serves the catalog
views the admin frontend renders.`,
		SilenceUsage: true,
	}

	// ── server subcommand ─────────────────────────────────────────────────────
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the console API server and the fleet monitoring engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner("SERVER")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if err := server.InitDB(cfg); err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			if err := server.SeedAdmin(cfg.AdminEmail, cfg.AdminPass); err != nil {
				return fmt.Errorf("seeding admin account: %w", err)
			}
			server.SetJWTSecret(cfg.JWTSecret)

			// Monitoring engine: one store, one poller, one dispatcher.
			store, p, dispatcher := buildEngine(cfg)
			p.Start()
			defer p.Stop()

			gin.SetMode(gin.ReleaseMode)
			engine := gin.New()
			engine.Use(gin.Recovery(), server.CORSMiddleware())
			server.RegisterRoutes(engine, &server.Monitoring{
				Store:      store,
				Poller:     p,
				Dispatcher: dispatcher,
			})

			addr := cfg.ListenAddr()
			fmt.Printf("  ✓ Console API      → http://%s\n", addr)
			fmt.Printf("  ✓ Platform backend → %s\n", cfg.BackendURL)
			fmt.Printf("  ✓ Poll interval    → %s\n", cfg.PollInterval())
			fmt.Printf("  ✓ Default login    → %s / %s\n\n", cfg.AdminEmail, cfg.AdminPass)

			srv := &http.Server{Addr: addr, Handler: engine}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt) // os.Interrupt = SIGINT; works on all platforms

			select {
			case err := <-errCh:
				return err
			case <-quit:
				fmt.Println("\n  → Shutting down gracefully…")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
				return nil
			}
		},
	}

	// ── status subcommand ─────────────────────────────────────────────────────
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Fetch one fleet snapshot and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			kind, _ := cmd.Flags().GetString("type")
			search, _ := cmd.Flags().GetString("search")

			store, p, _ := buildEngine(cfg)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := p.FetchOnce(ctx); err != nil {
				return fmt.Errorf("fetching snapshot: %w", err)
			}

			printFleet(store.View(), fleet.Filter{Kind: fleet.Kind(kind), Search: search})
			return nil
		},
	}
	statusCmd.Flags().String("type", "all", "Filter by service type: all, app, theme or store")
	statusCmd.Flags().String("search", "", "Filter by name substring (case-insensitive)")

	// ── version subcommand ────────────────────────────────────────────────────
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print sublyadmin version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Sublyadmin %s\n", version)
		},
	}

	root.AddCommand(serverCmd, statusCmd, versionCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildEngine wires the monitoring core from config: snapshot store,
// poller over the platform backend, and action dispatcher. The backend
// client is constructed here and passed down explicitly.
func buildEngine(cfg *config.Config) (*fleet.Store, *poller.Poller, *control.Dispatcher) {
	client := backend.New(cfg.BackendURL, cfg.BackendToken)
	store := fleet.NewStore(cfg.HistoryWindow)

	var hostProbe poller.HostProber
	if cfg.LocalHostProbe {
		hostProbe = probe.New()
	}

	p := poller.New(store, client, hostProbe, cfg.PollInterval())
	dispatcher := control.New(client, p)
	return store, p, dispatcher
}

// printFleet renders one projected fleet view as a table.
func printFleet(view fleet.View, filter fleet.Filter) {
	if host := view.Host; host != nil {
		fmt.Printf("Host: %s %s  |  cpu %.0f%%  mem %.0f%%  disk %.0f%%  temp %.0f°C  |  up %s\n\n",
			host.OS.Distro, host.OS.Release,
			host.Current.Metric(fleet.MetricCPU),
			host.Current.Metric(fleet.MetricMemory),
			host.Current.Metric(fleet.MetricDisk),
			host.Current.Metric(fleet.MetricTemp),
			(time.Duration(host.Uptime) * time.Second).String(),
		)
	}

	services := fleet.Project(view, filter)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tSTATUS\tCPU\tMEM (MB)\tREPLICAS")
	for _, svc := range services {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%.1f\t%.0f\n",
			svc.Name, svc.Type, svc.Status,
			svc.Current.Metric(fleet.MetricCPU),
			svc.Current.Metric(fleet.MetricMemory)/1024/1024,
			svc.Current.Metric(fleet.MetricReplicas),
		)
	}
	w.Flush()
	fmt.Printf("\n%d service(s)\n", len(services))
}

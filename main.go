// Command knights-tour starts the Knight's Tour game server.
//
// It supports four commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" opens the terminal UI for a local single-player game
//  4. "validate" checks every preset in the config directory
//
// Flags control host/port, config directory, log level and optional ngrok
// tunneling for easy external access during development. Every flag can also
// be set through the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/knights-tour-game/api"
	"github.com/wricardo/knights-tour-game/game/config"
	"github.com/wricardo/knights-tour-game/game/engine"
	"github.com/wricardo/knights-tour-game/game/service"
	"github.com/wricardo/knights-tour-game/game/session"
	"github.com/wricardo/knights-tour-game/internal/logging"
	"github.com/wricardo/knights-tour-game/internal/tui"
	"github.com/wricardo/knights-tour-game/transport/mcp"
	"github.com/wricardo/knights-tour-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Knight's Tour Game Server"
)

const (
	sessionCleanupInterval = time.Hour
	sessionMaxAge          = 24 * time.Hour
	shutdownTimeout        = 10 * time.Second
	externalAPIURL         = "http://localhost:8080"
)

// appConfig holds the resolved global flags
type appConfig struct {
	Host         string
	Port         int
	ConfigDir    string
	LogLevel     string
	NgrokEnabled bool
	NgrokAuth    string
	NgrokDomain  string
}

func (c appConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	if err := logging.Setup(os.Getenv("LOG_LEVEL"), os.Stderr); err != nil {
		_ = logging.Setup(logging.DefaultLevel, os.Stderr)
		log.Warn().Err(err).Msg("Falling back to default log level")
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("Error loading .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "knights-tour",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing board presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   logging.DefaultLevel,
				Usage:   "Log level (trace, debug, info, warn, error, disabled)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run the HTTP server with API, WebSocket and MCP endpoint",
				Action:  serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server backed by an external or internal HTTP API",
				Action:  mcpAction,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "size",
						Usage: "Board size (3-10); 0 uses the preset size",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "Preset to play",
					},
				},
				Action: playAction,
			},
			{
				Name:   "validate",
				Usage:  "Validate every preset in the config directory",
				Action: validateAction,
			},
		},
	}
}

// loadAppConfig reads the global flags and applies the log level
func loadAppConfig(cmd *cli.Command) (appConfig, error) {
	cfg := appConfig{
		Host:         cmd.String("host"),
		Port:         cmd.Int("port"),
		ConfigDir:    cmd.String("config-dir"),
		LogLevel:     cmd.String("log-level"),
		NgrokEnabled: cmd.Bool("ngrok"),
		NgrokAuth:    cmd.String("ngrok-auth"),
		NgrokDomain:  cmd.String("ngrok-domain"),
	}
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadAppConfig(cmd)
	if err != nil {
		return err
	}
	log.Info().Str("version", Version).Msgf("Starting %s", AppName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runHTTPServer(ctx, cfg)
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadAppConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runStdioMCP(ctx, cfg)
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	// Any log line would corrupt the alt screen
	if err := logging.Setup("disabled", io.Discard); err != nil {
		return err
	}

	gameConfig, err := loadPlayConfig(cmd.String("config-dir"), cmd.String("config"))
	if err != nil {
		return err
	}
	return tui.Run(gameConfig, cmd.Int("size"))
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadAppConfig(cmd)
	if err != nil {
		return err
	}
	return runValidate(os.Stdout, cfg.ConfigDir)
}

// services bundles everything the HTTP server needs
type services struct {
	game     service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
}

// initializeServices wires the config and session managers, the WebSocket hub
// and the game service. Run clocks and the hub stop when ctx is cancelled.
func initializeServices(ctx context.Context, configDir string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager,
		service.WithObserver(hub),
		service.WithClockContext(ctx),
	)

	log.Info().
		Str("config_dir", configDir).
		Int("presets", configManager.Count()).
		Msg("Services initialized")

	return &services{
		game:     gameService,
		sessions: sessionManager,
		hub:      hub,
	}, nil
}

// newRouter mounts the API at the root and the MCP endpoint at /mcp
func newRouter(svc *services, baseURL string) http.Handler {
	router := http.NewServeMux()
	router.Handle("/", api.NewServer(svc.game, svc.hub))
	router.Handle("/mcp", mcp.NewClient(baseURL))
	return router
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully
func runHTTPServer(ctx context.Context, cfg appConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := initializeServices(ctx, cfg.ConfigDir)
	if err != nil {
		return err
	}
	defer svc.sessions.StopAll()

	addr := cfg.addr()
	handler := newRouter(svc, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svc.sessions, sessionCleanupInterval, sessionMaxAge)
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg, handler)
		}()
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("Server stopped")

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// runNgrokTunnel exposes handler through an ngrok HTTP endpoint until ctx is
// cancelled
func runNgrokTunnel(ctx context.Context, cfg appConfig, handler http.Handler) {
	if cfg.NgrokAuth == "" {
		log.Warn().Msg("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info().Msg("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Info().Str("domain", cfg.NgrokDomain).Msg("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().Str("url", url).Msg("🚀 Ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", url)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", url)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", url)

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Ngrok server error")
	}
	log.Info().Msg("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(maxAge)
		}
	}
}

// externalAPIAvailable reports whether a game server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// localhost:8080; otherwise it starts an internal API on a random loopback
// port and targets that.
func runStdioMCP(ctx context.Context, cfg appConfig) error {
	baseURL := externalAPIURL
	log.Info().Str("url", baseURL).Msg("Checking for external API server")

	if externalAPIAvailable(baseURL) {
		log.Info().Msg("External API server found, using it for MCP")
	} else {
		log.Info().Msg("No external API server found, starting internal HTTP server")

		internalURL, shutdown, err := startInternalServer(ctx, cfg.ConfigDir)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")
	return mcp.NewClient(baseURL).ServeStdio()
}

// startInternalServer serves the API on 127.0.0.1 with an OS-assigned port.
// The returned function shuts it down.
func startInternalServer(ctx context.Context, configDir string) (string, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	svc, err := initializeServices(ctx, configDir)
	if err != nil {
		cancel()
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		cancel()
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Internal HTTP server error")
		}
	}()
	log.Info().Str("url", baseURL).Msg("Internal HTTP server started")

	shutdown := func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
		svc.sessions.StopAll()
	}
	return baseURL, shutdown, nil
}

// loadPlayConfig resolves the preset for the terminal UI. Without a preset
// name the config directory's default is used, or the built-in default when
// the directory does not exist.
func loadPlayConfig(configDir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(configDir)
	if err != nil {
		if name != "" {
			return nil, err
		}
		return engine.DefaultConfig(), nil
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}

// runValidate prints a report for every preset in dir and fails if any is
// invalid
func runValidate(w io.Writer, dir string) error {
	results, err := config.ValidateDir(dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Validating presets in %s\n", dir)
	fmt.Fprintln(w, strings.Repeat("=", 50))

	invalid := 0
	for _, result := range results {
		fmt.Fprintf(w, "\n📄 %s\n", result.File)
		if result.Valid {
			fmt.Fprintln(w, "   ✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintf(w, "   • %s\n", info)
			}
			continue
		}

		invalid++
		fmt.Fprintln(w, "   ❌ INVALID")
		for _, msg := range result.Errors {
			fmt.Fprintf(w, "   • %s\n", msg)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Summary: %d valid, %d invalid\n", len(results)-invalid, invalid)

	if invalid > 0 {
		return fmt.Errorf("%d invalid preset(s)", invalid)
	}
	return nil
}

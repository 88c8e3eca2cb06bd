// Package cli implements the chime command-line interface: an event pipe on
// stdin plus subcommands for direct playback, theme management, mute state,
// and playback analytics.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"chime.click/internal/audio"
	"chime.click/internal/config"
	"chime.click/internal/events"
	"chime.click/internal/feedback"
	"chime.click/internal/fetch"
	"chime.click/internal/player"
	"chime.click/internal/theme"
	"chime.click/internal/tracking"
)

const Version = "0.4.0"

type ctxKey int

const cliContextKey ctxKey = 0

// CLI represents the command-line interface
type CLI struct {
	rootCmd          *cobra.Command
	configManager    *config.Manager
	themeCtx         *theme.Context
	backendFactory   audio.BackendFactory
	registry         *audio.DecoderRegistry
	fetcher          fetch.Fetcher
	terminalDetector TerminalDetector
	trackingDB       *sql.DB // Optional tracking database

	mu      sync.Mutex
	loaders map[string]*player.Loader // Resource -> loader cache
}

// NewCLI creates a new CLI instance
func NewCLI() *CLI {
	slog.Debug("creating new CLI instance")

	rootCmd := &cobra.Command{
		Use:   "chime",
		Short: "UI sound feedback utility",
		Long:  "Chime reads interaction events from stdin and plays themed feedback sounds, with caching, shuffle, and per-event fallback chains.",
		RunE:  runEventPipeE,
	}

	rootCmd.AddCommand(newPlayCommand())
	rootCmd.AddCommand(newThemesCommand())
	rootCmd.AddCommand(newMuteCommand())
	rootCmd.AddCommand(newAnalyzeCommand())

	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("volume", "", "Set volume (0.0 to 1.0)")
	rootCmd.PersistentFlags().String("pan", "", "Set stereo pan (-1.0 to 1.0)")
	rootCmd.PersistentFlags().String("theme", "", "Set sound theme to use")
	rootCmd.PersistentFlags().Bool("silent", false, "Silent mode - no audio playback")

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
	rootCmd.Flags().Bool("daemon-child", false, "Internal: run as detached playback worker")
	rootCmd.Flags().String("event-input-file", "", "Internal: read events from file instead of stdin")
	rootCmd.Flags().MarkHidden("daemon-child")
	rootCmd.Flags().MarkHidden("event-input-file")

	return &CLI{
		rootCmd: rootCmd,
		loaders: make(map[string]*player.Loader),
	}
}

func contextWithCLI(cli *CLI) context.Context {
	return context.WithValue(context.Background(), cliContextKey, cli)
}

func cliFromContext(ctx context.Context) *CLI {
	if cli, ok := ctx.Value(cliContextKey).(*CLI); ok {
		return cli
	}
	return nil
}

// Run executes the CLI with the given arguments and I/O streams
func (c *CLI) Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	slog.Debug("CLI run started", "args", args)

	// Version flag short-circuits before any system initialization
	if len(args) > 1 && (args[1] == "--version" || args[1] == "-v") {
		fmt.Fprintf(stdout, "chime version %s\nUI sound feedback utility\n", Version)
		return 0
	}

	c.initializeSystems()

	defer func() {
		c.closeLoaders()
		if c.trackingDB != nil {
			if err := c.trackingDB.Close(); err != nil {
				slog.Error("error closing tracking database", "error", err)
			}
		}
	}()

	c.rootCmd.SetArgs(args[1:]) // Skip program name
	c.rootCmd.SetIn(stdin)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)

	c.rootCmd.SetContext(contextWithCLI(c))

	if err := c.rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		return 1
	}

	return 0
}

// initializeSystems lazily initializes CLI components when actually needed
func (c *CLI) initializeSystems() {
	if c.configManager == nil {
		c.configManager = config.NewManager()
	}
	if c.backendFactory == nil {
		c.backendFactory = audio.NewBackendFactory()
	}
	if c.registry == nil {
		c.registry = audio.NewDefaultRegistry()
	}
	if c.fetcher == nil {
		c.fetcher = fetch.NewRouter()
	}
	if c.terminalDetector == nil {
		c.terminalDetector = &DefaultTerminalDetector{}
	}
}

// handleVersionFlag checks and handles the version flag
// Returns true if version was handled and processing should stop
func handleVersionFlag(cmd *cobra.Command) bool {
	version, _ := cmd.Flags().GetBool("version")
	if version {
		cmd.Printf("chime version %s\nUI sound feedback utility\n", Version)
		return true
	}
	return false
}

// loadAndValidateConfig loads configuration from flags and files, applies
// overrides, and validates
func loadAndValidateConfig(cmd *cobra.Command, cli *CLI) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	volumeStr, _ := cmd.Flags().GetString("volume")
	panStr, _ := cmd.Flags().GetString("pan")
	themeFlag, _ := cmd.Flags().GetString("theme")
	silent, _ := cmd.Flags().GetBool("silent")

	// Validate numeric flags early
	if volumeStr != "" {
		vol, err := strconv.ParseFloat(volumeStr, 64)
		if err != nil {
			cmd.PrintErrf("Error: invalid volume value '%s': %v\n", volumeStr, err)
			slog.Error("invalid volume value", "value", volumeStr, "error", err)
			return nil, fmt.Errorf("invalid volume value '%s': %w", volumeStr, err)
		}
		if vol < 0.0 || vol > 1.0 {
			cmd.PrintErrf("Error: volume must be between 0.0 and 1.0, got %f\n", vol)
			slog.Error("volume out of range", "value", vol)
			return nil, fmt.Errorf("volume must be between 0.0 and 1.0, got %f", vol)
		}
	}

	if panStr != "" {
		pan, err := strconv.ParseFloat(panStr, 64)
		if err != nil {
			cmd.PrintErrf("Error: invalid pan value '%s': %v\n", panStr, err)
			slog.Error("invalid pan value", "value", panStr, "error", err)
			return nil, fmt.Errorf("invalid pan value '%s': %w", panStr, err)
		}
		if pan < -1.0 || pan > 1.0 {
			cmd.PrintErrf("Error: pan must be between -1.0 and 1.0, got %f\n", pan)
			slog.Error("pan out of range", "value", pan)
			return nil, fmt.Errorf("pan must be between -1.0 and 1.0, got %f", pan)
		}
	}

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = cli.configManager.LoadFromFile(configFile)
		if err != nil {
			slog.Warn("config file not found, using defaults", "file", configFile, "error", err)
			cfg = cli.configManager.GetDefaultConfig()
		}
	} else {
		cfg, err = cli.configManager.LoadConfig()
		if err != nil {
			cmd.PrintErrf("Error loading config: %v\n", err)
			slog.Error("config load failed", "error", err)
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	cfg = cli.configManager.ApplyEnvironmentOverrides(cfg)

	if volumeStr != "" {
		vol, _ := strconv.ParseFloat(volumeStr, 64)
		cfg.Volume = vol
		slog.Debug("volume override applied", "value", vol)
	}

	if panStr != "" {
		pan, _ := strconv.ParseFloat(panStr, 64)
		cfg.Pan = pan
		slog.Debug("pan override applied", "value", pan)
	}

	if themeFlag != "" {
		cfg.DefaultTheme = themeFlag
		slog.Debug("theme override applied", "value", themeFlag)
	}

	if silent {
		cfg.Enabled = false
		slog.Debug("silent mode enabled")
	}

	err = cli.configManager.ValidateConfig(cfg)
	if err != nil {
		cmd.PrintErrf("Error: invalid configuration: %v\n", err)
		slog.Error("config validation failed", "error", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initializeThemeSystem builds the theme resolver and context from config
func initializeThemeSystem(cli *CLI, cfg *config.Config) error {
	slog.Debug("initializing theme system",
		"theme", cfg.DefaultTheme,
		"extra_paths", len(cfg.ThemePaths))

	fs := afero.NewOsFs()
	basePaths := theme.SearchPaths(cfg.DefaultTheme, cfg.ThemePaths)

	mapper, err := theme.CreateMapper(fs, cfg.DefaultTheme, basePaths)
	if err != nil {
		slog.Warn("theme unavailable, using empty mapper", "theme", cfg.DefaultTheme, "error", err)
		mapper = theme.NewDirectoryMapper("fallback", []string{})
	}

	resolver := theme.NewResolver(mapper, fs)
	cli.themeCtx = theme.NewContext(cfg.DefaultTheme, resolver)
	cli.themeCtx.SetMuted(cfg.Muted || !cfg.Enabled)

	slog.Debug("theme system initialized",
		"theme", cfg.DefaultTheme,
		"mapper", mapper.Name(),
		"mapper_type", mapper.Type(),
		"muted", cli.themeCtx.Muted())

	return nil
}

// runEventPipeE handles the default behavior of reading interaction events
// from stdin (or an event input file for detached workers)
func runEventPipeE(cmd *cobra.Command, args []string) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		slog.Error("CLI instance not found in context")
		return fmt.Errorf("CLI instance not found in context")
	}

	if handleVersionFlag(cmd) {
		return nil
	}

	cfg, err := loadAndValidateConfig(cmd, cli)
	if err != nil {
		return err
	}

	setupLogging(cfg, cmd.ErrOrStderr())

	// Detached workers read the spooled event file; everyone else reads stdin
	input := cmd.InOrStdin()
	inputFile, _ := cmd.Flags().GetString("event-input-file")
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			slog.Error("failed to open event input file", "path", inputFile, "error", err)
			return fmt.Errorf("failed to open event input file: %w", err)
		}
		defer f.Close()
		defer os.Remove(inputFile)
		input = f
	} else {
		cli.warnIfInteractive(cmd)
	}

	inputData, err := io.ReadAll(input)
	if err != nil {
		cmd.PrintErrf("Error reading events: %v\n", err)
		slog.Error("event input read failed", "error", err)
		return fmt.Errorf("error reading events: %w", err)
	}

	if len(inputData) == 0 {
		slog.Info("no input data received - configuration test mode")
		return nil
	}

	// Hand playback to a detached worker so the caller returns immediately
	if shouldDetachEventProcessing(cmd, cfg, inputData) {
		return spawnDetachedEventWorker(cmd, inputData)
	}

	cli.initializeTracking()

	if err := initializeThemeSystem(cli, cfg); err != nil {
		return err
	}

	return cli.processEventStream(inputData, cfg, cmd.ErrOrStderr())
}

// warnIfInteractive tells a user who ran the event pipe by hand that it is
// waiting on stdin. The normal caller is a UI toolkit or an automation pipe,
// so a live terminal on stdin almost always means a forgotten pipe.
func (c *CLI) warnIfInteractive(cmd *cobra.Command) {
	stdin, ok := cmd.InOrStdin().(*os.File)
	if !ok || stdin != os.Stdin {
		return
	}
	if !c.isInteractiveTerminal(int(stdin.Fd())) {
		return
	}

	cmd.PrintErrln("Reading interaction events from the terminal; pipe newline-delimited JSON events on stdin, or press Ctrl+D to finish.")
	slog.Info("interactive terminal detected on event pipe stdin")
}

// processEventStream parses newline-delimited JSON events and triggers a
// sound for each
func (c *CLI) processEventStream(inputData []byte, cfg *config.Config, stderr io.Writer) error {
	parser := events.NewParser()
	mapper := events.NewSoundMapper()

	scanner := bufio.NewScanner(bytes.NewReader(inputData))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		lineNo++

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		event, err := parser.Parse(line)
		if err != nil {
			fmt.Fprintf(stderr, "Error parsing event on line %d: %v\n", lineNo, err)
			slog.Error("event parsing failed", "line", lineNo, "error", err)
			continue
		}

		c.processEvent(event, mapper, cfg)
	}

	if err := scanner.Err(); err != nil {
		slog.Error("event stream scan failed", "error", err)
		return fmt.Errorf("error reading event stream: %w", err)
	}

	// Wait for in-flight playback before returning
	c.closeLoaders()
	return nil
}

// processEvent maps one interaction event to a sound and triggers playback
func (c *CLI) processEvent(event *events.InteractionEvent, mapper *events.SoundMapper, cfg *config.Config) {
	slog.Debug("processing interaction event",
		"event", event.Event,
		"element", event.Element,
		"hint", event.Hint)

	result := mapper.MapSound(event)

	checker := c.newSoundChecker(event.Session, cfg)
	resource, found := checker.Resolve(event, result.AllPaths)
	if !found {
		slog.Warn("no sound found for event",
			"event", event.Event,
			"element", event.Element,
			"paths_tried", result.TotalPaths)
		return
	}

	slog.Info("sound resolved",
		"event", event.Event,
		"resource", resource,
		"fallback_level", result.FallbackLevel)

	loader := c.loaderFor(resource, cfg)
	c.dispatchFeedback(event, loader)
}

// dispatchFeedback runs the trigger through the handler composition layer,
// with the post-playback debug log standing in as the downstream handler an
// embedding UI would install
func (c *CLI) dispatchFeedback(event *events.InteractionEvent, loader feedback.Triggerer) {
	ev := feedback.Event{
		Kind:    event.Event,
		Element: event.Element,
		Hint:    event.Hint,
	}

	delegate := func(e feedback.Event) {
		slog.Debug("event handler chain complete",
			"kind", e.Kind,
			"element", e.Element)
	}

	var handler feedback.Handler
	switch event.Kind() {
	case events.Click:
		handler = feedback.NewWrapper(loader, nil).OnClick(delegate)
	case events.PointerEnter:
		handler = feedback.NewWrapper(nil, loader).OnPointerEnter(delegate)
	default:
		handler = feedback.Compose(func(feedback.Event) { loader.Trigger() }, delegate)
	}

	if handler != nil {
		handler(ev)
	}
}

// newSoundChecker builds a checker with tracking hooks for one event
func (c *CLI) newSoundChecker(sessionID string, cfg *config.Config) *tracking.SoundChecker {
	resolver := c.themeCtx
	if sessionID == "" {
		sessionID = "default"
	}

	if c.trackingDB != nil {
		dbHook := tracking.NewDBHook(c.trackingDB, sessionID, cfg.DefaultTheme, cfg.AudioBackend)
		dbHook.SetMuted(c.themeCtx.Muted())
		return tracking.NewSoundChecker(resolverAdapter{resolver}, tracking.WithHook(dbHook.GetHook()))
	}

	nopHook := tracking.NewNopHook()
	return tracking.NewSoundChecker(resolverAdapter{resolver}, tracking.WithHook(nopHook.GetHook()))
}

// resolverAdapter exposes the theme context's active resolver to tracking
type resolverAdapter struct {
	ctx *theme.Context
}

func (r resolverAdapter) ResolveSound(relativePath string) (string, error) {
	sounds := r.ctx.Sounds(relativePath)
	if len(sounds) > 0 {
		return sounds[0], nil
	}
	return "", &theme.NotFoundError{RelativePath: relativePath, ThemeName: r.ctx.ThemeKey()}
}

// loaderFor returns a cached loader for the resource, creating one on first
// use
func (c *CLI) loaderFor(resource string, cfg *config.Config) *player.Loader {
	c.mu.Lock()
	defer c.mu.Unlock()

	if loader, ok := c.loaders[resource]; ok {
		return loader
	}

	loader := player.New(
		[]string{resource},
		c.fetcher,
		c.registry,
		c.backendFactory,
		c.themeCtx,
		player.WithVolume(cfg.Volume),
		player.WithPan(cfg.Pan),
		player.WithBackendType(cfg.AudioBackend),
		player.WithLazyLoad(true),
	)
	c.loaders[resource] = loader

	slog.Debug("created loader", "resource", resource, "cached_loaders", len(c.loaders))
	return loader
}

// closeLoaders closes all cached loaders, waiting for in-flight playback
func (c *CLI) closeLoaders() {
	c.mu.Lock()
	loaders := c.loaders
	c.loaders = make(map[string]*player.Loader)
	c.mu.Unlock()

	for resource, loader := range loaders {
		if err := loader.Close(); err != nil {
			slog.Error("error closing loader", "resource", resource, "error", err)
		}
	}
}

// setupLogging configures slog with file logging when enabled
func setupLogging(cfg *config.Config, stderrWriter io.Writer) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var writers []io.Writer
	writers = append(writers, stderrWriter)

	if cfg.FileLogging != nil && cfg.FileLogging.Enabled {
		configManager := config.NewManager()
		logFilePath := configManager.ResolveLogFilePath(cfg.FileLogging.Filename)

		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			slog.Error("failed to create log directory", "path", logDir, "error", err)
			// Continue without file logging rather than failing
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   logFilePath,
				MaxSize:    cfg.FileLogging.MaxSizeMB,
				MaxBackups: cfg.FileLogging.MaxBackups,
				MaxAge:     cfg.FileLogging.MaxAgeDays,
				Compress:   cfg.FileLogging.Compress,
			}
			writers = append(writers, fileWriter)
			slog.Debug("file logging enabled", "path", logFilePath)
		}
	}

	multiWriter := io.MultiWriter(writers...)

	handler := slog.NewTextHandler(multiWriter, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))

	slog.Debug("logging setup completed",
		"level", level.String(),
		"writers", len(writers),
		"file_enabled", cfg.FileLogging != nil && cfg.FileLogging.Enabled)
}

// initializeTracking initializes the tracking database if enabled in
// configuration
func (c *CLI) initializeTracking() {
	if c.trackingDB != nil {
		return // Already initialized
	}

	cfg, err := c.configManager.LoadConfig()
	if err != nil {
		slog.Debug("failed to load config for tracking initialization, using defaults", "error", err)
		cfg = c.configManager.GetDefaultConfig()
	}

	cfg = c.configManager.ApplyEnvironmentOverrides(cfg)

	if cfg.SoundTracking == nil || !cfg.SoundTracking.Enabled {
		slog.Debug("sound tracking disabled, skipping database initialization")
		return
	}

	var dbPath string
	if cfg.SoundTracking.DatabasePath != "" {
		dbPath = cfg.SoundTracking.DatabasePath
		slog.Debug("using custom database path from config", "path", dbPath)
	} else {
		dbPath, err = tracking.GetDatabasePath()
		if err != nil {
			slog.Error("failed to get database path, continuing without tracking", "error", err)
			return // Graceful degradation
		}
		slog.Debug("using default XDG database path", "path", dbPath)
	}

	db, err := tracking.NewDatabase(dbPath)
	if err != nil {
		slog.Error("failed to initialize tracking database, continuing without tracking",
			"path", dbPath, "error", err)
		return // Graceful degradation - continue without tracking
	}

	c.trackingDB = db
	slog.Info("tracking database initialized", "path", dbPath)
}

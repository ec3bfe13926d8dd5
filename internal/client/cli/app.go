package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/clouddrive/internal/client/client"
	"github.com/dmitrijs2005/clouddrive/internal/client/config"
	"github.com/dmitrijs2005/clouddrive/internal/client/credentials"
	"github.com/dmitrijs2005/clouddrive/internal/client/router"
	"github.com/dmitrijs2005/clouddrive/internal/client/services"
	"github.com/dmitrijs2005/clouddrive/internal/filex"
	"github.com/dmitrijs2005/clouddrive/internal/logging"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	router      *router.Router
	authService services.AuthService
	fileService services.FileService
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp wires the client against the terminal.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)
	return newApp(ctx, c, logger, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := credentials.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err.Error())
		return nil, err
	}
	store := credentials.NewSQLiteStore(db)

	a := &App{
		config: c,
		logger: logger,
		db:     db,
		reader: bufio.NewReader(in),
		out:    out,
	}

	a.router = router.NewDefault(a, router.WithLogger(logger), router.WithObserver(a.onRouteChange))

	api, err := client.NewSessionPipeline(c.ServerBaseURL, store, a.router, router.PathLogin, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	notifier := services.NotifierFunc(func(ctx context.Context, message string) {
		fmt.Fprintln(a.out, "!", message)
	})

	a.authService = services.NewAuthService(api, store, logger)
	a.fileService = services.NewFileService(api, filex.NewDiskSaver(c.DownloadDir), notifier, logger)
	return a, nil
}

// IsAuthenticated lets the router read the session through the auth service.
func (a *App) IsAuthenticated(ctx context.Context) bool {
	return a.authService.IsAuthenticated(ctx)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.authService.IsAuthenticated(ctx)
}

func (a *App) onRouteChange(ctx context.Context, from, to router.Route) {
	fmt.Fprintf(a.out, "[%s]\n", to.Name)
}

func (a *App) status() string {
	return a.router.Current().Path
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run restores the session, enters the start view and runs the REPL until
// the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(ctx, "failed to close database", "error", err.Error())
		}
	}()

	fmt.Fprintln(a.out, "Welcome to Cloud Drive CLI (type 'help' for commands)")
	a.authService.Init(ctx)

	if _, err := a.router.Navigate(ctx, router.PathRoot); err != nil {
		a.logger.Error(ctx, "navigation failed", "error", err.Error())
	}

	runREPL(ctx, a, a.status, a.reader, a.out)
}

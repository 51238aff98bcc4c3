package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"bookkeeper/internal/auth"
	"bookkeeper/internal/backup"
	"bookkeeper/internal/budget"
	"bookkeeper/internal/config"
	"bookkeeper/internal/ledger"
	"bookkeeper/internal/logging"
	"bookkeeper/internal/models"
	"bookkeeper/internal/report"
	"bookkeeper/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env carries the services one invocation works with. The database is opened
// lazily so commands that do not touch it never create a file.
type env struct {
	cfg    *config.Config
	log    *logrus.Logger
	stdin  io.Reader
	stdout io.Writer

	db      *storage.DB
	auth    *auth.Authenticator
	ledger  *ledger.Ledger
	tracker *budget.Tracker
	reports *report.Engine
	backups *backup.Manager
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		return err
	}

	e := &env{cfg: cfg, log: logger, stdin: stdin, stdout: stdout}
	defer e.close()

	app := newApp(e)
	app.Reader = stdin
	app.Writer = stdout
	app.ErrWriter = stderr

	return app.RunContext(context.Background(), append([]string{"ledger"}, args...))
}

func newApp(e *env) *cli.App {
	return &cli.App{
		Name:  "ledger",
		Usage: "personal income, expense and budget bookkeeping",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "path to database file", Value: e.cfg.DBPath},
			&cli.StringFlag{Name: "backup-dir", Usage: "directory for database backups", Value: e.cfg.BackupDir},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "username"},
			&cli.StringFlag{Name: "password", Usage: "password (optional, will prompt if omitted)"},
		},
		Commands: []*cli.Command{
			registerCommand(e),
			categoriesCommand(e),
			txCommand(e),
			budgetCommand(e),
			reportCommand(e),
			backupCommand(e),
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// open connects the store and wires the services on first use.
func (e *env) open(c *cli.Context) error {
	if e.db != nil {
		return nil
	}

	db, err := storage.NewDB(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	e.db = db
	e.auth = auth.NewAuthenticator(db, e.log)
	e.ledger = ledger.New(db, e.log)
	e.tracker = budget.NewTracker(db, e.ledger, e.log)
	e.reports = report.NewEngine(e.ledger, e.tracker, e.log)
	return nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

// credentials returns --user and --password, prompting for the password when omitted.
func (e *env) credentials(c *cli.Context) (string, string, error) {
	username := c.String("user")
	if username == "" {
		return "", "", errors.New("missing required flag: user")
	}

	password := c.String("password")
	if password == "" {
		fmt.Fprint(e.stdout, "Password: ")
		var err error
		password, err = readPassword(e.stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(e.stdout)
	}

	if strings.TrimSpace(password) == "" {
		return "", "", errors.New("password cannot be empty")
	}
	return username, password, nil
}

// session opens the store and logs the user in.
func (e *env) session(c *cli.Context) (models.Session, error) {
	username, password, err := e.credentials(c)
	if err != nil {
		return models.Session{}, err
	}
	if err := e.open(c); err != nil {
		return models.Session{}, err
	}
	return e.auth.Authenticate(c.Context, username, password)
}

func (e *env) backupManager(c *cli.Context) (*backup.Manager, error) {
	if e.backups != nil {
		return e.backups, nil
	}
	if err := e.open(c); err != nil {
		return nil, err
	}
	m, err := backup.NewManager(e.db, c.String("backup-dir"), e.log)
	if err != nil {
		return nil, err
	}
	e.backups = m
	return m, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/taskgate/internal/apiclient"
	"github.com/florianilch/taskgate/internal/app"
	"github.com/florianilch/taskgate/internal/credential"
	"github.com/florianilch/taskgate/internal/notify"
	"github.com/florianilch/taskgate/internal/observability"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and store the auth token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "account name (prompted if omitted)",
			},
		},
		Action: loginAction,
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "discard the stored auth token",
		Action: logoutAction,
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "report whether an auth token is stored",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "check the token against the backend",
			},
		},
		Action: statusAction,
	}
}

// sessionEnv is what the session commands share: config, session, client and
// a terminal toast display.
type sessionEnv struct {
	cfg      *app.Config
	session  *credential.Session
	client   *apiclient.Client
	notifier *notify.Notifier
}

func newSessionEnv(ctx context.Context, cmd *cli.Command) (*sessionEnv, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Terminal commands only surface warnings; results go through toasts
	if _, err := observability.Instrument(ctx, max(cfg.LogLevel, slog.LevelWarn), string(cfg.LogFormat), observability.ExporterNone); err != nil {
		return nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}

	notifier := notify.New(notify.Writer(writer(cmd)))
	session, client, err := app.NewClient(cfg, apiclient.WithUnauthorizedHandler(func(context.Context) {
		_ = notifier.Show(notify.Warn, "Session expired", "run `taskgate login` to sign in again")
	}))
	if err != nil {
		return nil, err
	}

	return &sessionEnv{cfg: cfg, session: session, client: client, notifier: notifier}, nil
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	env, err := newSessionEnv(ctx, cmd)
	if err != nil {
		return err
	}
	if !env.cfg.Auth.Writable() {
		return fmt.Errorf("%s token storage is read-only; set %s instead", env.cfg.Auth.Storage, credential.EnvKey)
	}

	in := reader(cmd)
	out := writer(cmd)
	lines := bufio.NewReader(in)

	username := strings.TrimSpace(cmd.String("username"))
	if username == "" {
		_, _ = fmt.Fprint(out, "Username: ")
		if username, err = readLine(lines); err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
	}

	password, err := readPassword(in, lines, out)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	if err := env.client.Login(ctx, apiclient.Credentials{Username: username, Password: password}); err != nil {
		_ = env.notifier.Show(notify.Error, "Sign in failed", describeCLI(err))
		return err
	}

	return env.notifier.Show(notify.Success, "Signed in", "as "+username)
}

func logoutAction(ctx context.Context, cmd *cli.Command) error {
	env, err := newSessionEnv(ctx, cmd)
	if err != nil {
		return err
	}
	if !env.cfg.Auth.Writable() {
		return fmt.Errorf("%s token storage is read-only; unset %s instead", env.cfg.Auth.Storage, credential.EnvKey)
	}

	if err := env.client.Logout(ctx); err != nil {
		return err
	}
	return env.notifier.Show(notify.Info, "Signed out", "")
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	env, err := newSessionEnv(ctx, cmd)
	if err != nil {
		return err
	}

	_, ok, err := env.session.Token(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return env.notifier.Show(notify.Info, "Signed out", "storage: "+string(env.cfg.Auth.Storage))
	}

	if cmd.Bool("verify") {
		// A 401 evicts the token and the unauthorized hook reports it
		_, err := env.client.ListTasks(ctx)
		switch apiclient.Classify(err) {
		case apiclient.OutcomeUnauthorized:
			return nil
		case apiclient.OutcomeFailure:
			_ = env.notifier.Show(notify.Error, "Backend check failed", describeCLI(err))
			return err
		}
	}

	return env.notifier.Show(notify.Success, "Signed in", "storage: "+string(env.cfg.Auth.Storage))
}

func describeCLI(err error) string {
	var respErr *apiclient.ResponseError
	if errors.As(err, &respErr) && respErr.Detail() != "" {
		return respErr.Detail()
	}
	return err.Error()
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal and falls back to a plain
// line for pipes.
func readPassword(in io.Reader, lines *bufio.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(out, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out)
		return string(b), err
	}
	line, err := lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

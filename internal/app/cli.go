package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/hitoshi/manabi/internal/api"
	"github.com/hitoshi/manabi/internal/config"
	"github.com/hitoshi/manabi/internal/form"
	"github.com/hitoshi/manabi/internal/guard"
	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/session"
)

// sessionStore はCLIコマンドが使うセッション操作。
type sessionStore interface {
	Snapshot() session.Snapshot
	Set(ctx context.Context, identity model.Identity, token string) error
	Clear(ctx context.Context) error
}

// signInAPI はloginコマンドが使うバックエンドのエンドポイント。
type signInAPI interface {
	SignIn(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
}

// terminal は対話的な入力を扱う。
type terminal struct {
	in           *bufio.Reader
	out          io.Writer
	readPassword func() (string, error)
}

// newTerminal はinが端末の場合はエコーなしでパスワードを読み取るterminalを返す。
// 端末でない場合（パイプなど）は1行をそのまま読み取る。
func newTerminal(in io.Reader, out io.Writer) *terminal {
	t := &terminal{in: bufio.NewReader(in), out: out}
	t.readPassword = t.readLine

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.readPassword = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return "", fmt.Errorf("failed to read password: %w", err)
			}
			return string(b), nil
		}
	}
	return t
}

func (t *terminal) prompt(label string) (string, error) {
	fmt.Fprint(t.out, label)
	return t.readLine()
}

// readLine は改行を除いた1行を返す。前後の空白はそのまま残す。
func (t *terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runSessionCommand はlogin/logout/whoamiを実行する。
func runSessionCommand(ctx context.Context, cfg *config.Config, log *slog.Logger, cmd Command, s Streams, args []string) error {
	st, store, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	switch cmd {
	case CommandLogin:
		return login(ctx, store, newAPIClient(cfg, store, log), newTerminal(s.In, s.Out), args)
	case CommandLogout:
		return logout(ctx, store, s.Out)
	default:
		return whoami(store.Snapshot(), s.Out, time.Now())
	}
}

// login はメールアドレスとパスワードでサインインし、セッションを保存する。
// メールアドレスが引数で渡されなかった場合はプロンプトで尋ねる。
func login(ctx context.Context, store sessionStore, backend signInAPI, t *terminal, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		var err error
		if email, err = t.prompt("Email: "); err != nil {
			return err
		}
	}

	fmt.Fprint(t.out, "Password: ")
	password, err := t.readPassword()
	if err != nil {
		return err
	}

	f := form.LoginFromValues(url.Values{"email": {email}, "password": {password}})
	if err := form.Validate(f); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	resp, err := backend.SignIn(ctx, api.Credentials{Email: f.Email, Password: f.Password})
	if err != nil {
		return fmt.Errorf("sign in failed: %s", api.Message(err, "Unable to reach the server. Please try again later."))
	}

	if err := store.Set(ctx, *resp.User, resp.Token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(t.out, "Signed in as %s (%s).\n", resp.User.DisplayName(), resp.User.Role)
	fmt.Fprintf(t.out, "Home: %s\n", guard.HomePath(resp.User.Role))
	return nil
}

// logout は保存済みのセッションを破棄する。
func logout(ctx context.Context, store sessionStore, out io.Writer) error {
	if !store.Snapshot().IsAuthenticated() {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Fprintln(out, "Signed out.")
	return nil
}

// whoami は保存済みのセッションを表示する。
func whoami(snap session.Snapshot, out io.Writer, now time.Time) error {
	if !snap.IsAuthenticated() {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}

	if u := snap.Identity; u != nil {
		fmt.Fprintf(out, "Name:  %s\n", u.DisplayName())
		fmt.Fprintf(out, "Email: %s\n", u.Email)
		fmt.Fprintf(out, "Role:  %s\n", u.Role)
	}
	fmt.Fprintf(out, "Home:  %s\n", guard.HomePath(snap.Role()))

	if claims, ok := session.ParseClaims(snap.Token); ok && claims.ExpiresAt != nil {
		status := ""
		if claims.Expired(now) {
			status = " (expired)"
		}
		fmt.Fprintf(out, "Token expires: %s%s\n", claims.ExpiresAt.Format(time.RFC3339), status)
	}
	return nil
}

package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/config"
)

type loginCommander struct {
	email      string
	signup     bool
	token      bool
	backendURL string
	anonKey    string
}

const loginLongDesc string = `Sign in with an email and password.

Reads the password from stdin when piped, otherwise prompts with hidden
input. With --token, stdin holds an existing session token instead.`

const loginShortDesc string = "Sign in"

func newLoginCmd() *cobra.Command {
	cmder := &loginCommander{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: loginShortDesc,
		Long:  loginLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.email, "email", "e", "", "Account email")
	cmd.Flags().BoolVar(&cmder.signup, "signup", false, "Create a new account")
	cmd.Flags().BoolVar(&cmder.token, "token", false, "Read a session token from stdin instead of a password")
	config.AddStringFlag(cmd, config.Registry, config.FlagBackendURL, &cmder.backendURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAnonKey, &cmder.anonKey)

	return cmd
}

func (c *loginCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd, config.FlagBackendURL, config.FlagAnonKey)
	if err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	if c.token {
		return c.storeToken(ws, in, out)
	}

	email := strings.TrimSpace(c.email)
	if email == "" {
		fmt.Fprint(out, "Email: ")
		email, err = readLine(in)
		if err != nil {
			return err
		}
	}

	password, err := readSecret(cmd.InOrStdin(), in, out, "Password: ")
	if err != nil {
		return err
	}

	flow, verb := auth.Login, "Signed in"
	if c.signup {
		flow, verb = auth.SignUp, "Account created"
	}

	tokens, err := flow(cmd.Context(), ws.Backend, email, password)
	if err != nil {
		return err
	}

	if tokens.AccessToken == "" {
		cliui.Notice(out, "Check your email", "Confirm your address, then run 'quire auth login'.", false)
		return nil
	}

	if err := ws.Credentials.SetSession(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return err
	}

	cliui.Notice(out, verb, email, false)
	return nil
}

func (c *loginCommander) storeToken(ws *workspace.Workspace, in *bufio.Reader, out io.Writer) error {
	token, err := readLine(in)
	if err != nil {
		return err
	}

	user, err := ws.Verifier.Verify(token)
	if err != nil {
		return err
	}

	if err := ws.Credentials.SetSession(token, ""); err != nil {
		return err
	}

	cliui.Notice(out, "Signed in", displayName(user), false)
	return nil
}

func displayName(u *auth.User) string {
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no input received on stdin")
	}
	return line, nil
}

// readSecret reads from the buffered reader when stdin is not a terminal,
// otherwise prompts with hidden input.
func readSecret(stdin io.Reader, in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readLine(in)
	}

	fmt.Fprint(out, prompt)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out) // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(secret), nil
}

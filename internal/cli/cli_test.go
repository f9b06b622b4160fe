package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	dir string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	return cliEnv{dir: t.TempDir()}
}

func (e cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))

	base := []string{
		"--config", filepath.Join(e.dir, "config.yaml"),
		"--db", filepath.Join(e.dir, "wirefeed.db"),
		"--log-file", filepath.Join(e.dir, "wirefeed.log"),
	}
	cmd.SetArgs(append(base, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := e.run(t, "", args...)
	require.NoError(t, err, "wirefeed %s", strings.Join(args, " "))
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "register", "--email", " Kim@Example.com ", "--password", "hunter2")
	require.Contains(t, out, "registered kim@example.com")

	out = env.mustRun(t, "login", "-e", "kim@example.com", "-p", "hunter2")
	require.Contains(t, out, "authenticated as kim@example.com")

	_, err := env.run(t, "", "login", "-e", "kim@example.com", "-p", "wrong")
	require.EqualError(t, err, "invalid email or password")

	_, err = env.run(t, "", "register", "-e", "kim@example.com", "-p", "again")
	require.EqualError(t, err, "user already exists: kim@example.com")

	// rejected before the password prompt, so empty stdin is fine
	_, err = env.run(t, "", "register", "-e", "KIM@example.com")
	require.EqualError(t, err, "user already exists: kim@example.com")
}

func TestPasswordPromptReadsStdin(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "s3cret\n", "register", "-e", "lee@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "registered lee@example.com")

	out, err = env.run(t, "s3cret\n", "login", "-e", "lee@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "authenticated as lee@example.com")
}

func TestChannelsPostHistoryAndFeed(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "register", "-e", "max@example.com", "-p", "pw")

	out := env.mustRun(t, "channels", "list")
	require.Contains(t, out, "DiscountNews")
	require.Contains(t, out, "Latest discount news and offers")

	out = env.mustRun(t, "channels", "create", "gophers", "-d", "all things Go")
	require.Contains(t, out, "created channel gophers")

	out = env.mustRun(t, "channels", "subscribe", "gophers", "-e", "max@example.com", "-p", "pw")
	require.Contains(t, out, "subscribed gophers")

	env.mustRun(t, "post", "gophers", "first", "post", "-e", "max@example.com", "-p", "pw")
	env.mustRun(t, "post", "DiscountNews", "not in feed", "-e", "max@example.com", "-p", "pw")
	env.mustRun(t, "post", "gophers", "second", "-e", "max@example.com", "-p", "pw")

	out = env.mustRun(t, "history", "gophers")
	first, second := strings.Index(out, "first post"), strings.Index(out, "second")
	require.True(t, first >= 0 && second >= 0, "history output: %s", out)
	require.Less(t, second, first, "history must list newest first")
	require.Contains(t, out, "max@example.com")

	out = env.mustRun(t, "history", "gophers", "-n", "1")
	require.Contains(t, out, "second")
	require.NotContains(t, out, "first post")

	out = env.mustRun(t, "feed", "-e", "max@example.com", "-p", "pw")
	require.Contains(t, out, "#gophers")
	require.NotContains(t, out, "not in feed")

	out = env.mustRun(t, "channels", "unsubscribe", "gophers", "-e", "max@example.com", "-p", "pw")
	require.Contains(t, out, "unsubscribed gophers")

	out = env.mustRun(t, "feed", "-e", "max@example.com", "-p", "pw")
	require.Contains(t, out, "No messages yet.")
}

func TestPostValidationErrors(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "register", "-e", "ned@example.com", "-p", "pw")

	_, err := env.run(t, "", "post", "DiscountNews", strings.Repeat("x", 201), "-e", "ned@example.com", "-p", "pw")
	require.EqualError(t, err, "message content should contain at most 200 characters, current length: 201")

	_, err = env.run(t, "", "post", "DiscountNews", "   ", "-e", "ned@example.com", "-p", "pw")
	require.ErrorContains(t, err, "message content cannot be empty")

	_, err = env.run(t, "", "post", "nowhere", "hi", "-e", "ned@example.com", "-p", "pw")
	require.EqualError(t, err, `channel "nowhere" not found`)
}

func TestInvalidConfigOverride(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "", "--log-level", "loud", "channels", "list")
	require.ErrorContains(t, err, "invalid config")
}

func TestPromptPasswordFromReader(t *testing.T) {
	var prompt bytes.Buffer
	pw, err := promptPassword(strings.NewReader("pa ss\r\n"), &prompt)
	require.NoError(t, err)
	require.Equal(t, "pa ss", pw)
	require.Equal(t, "Password: ", prompt.String())

	_, err = promptPassword(strings.NewReader(""), &prompt)
	require.Error(t, err)
}

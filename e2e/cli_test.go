package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/blackjack-go/internal/api"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/factory"
	"github.com/mcoot/blackjack-go/internal/services/auth"
)

const adminKey = "e2e-admin"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "bjgame-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/bjgame")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// withTokenFile returns a runner for a second player sharing the binary
func (r *cliRunner) withTokenFile(path string) *cliRunner {
	return &cliRunner{binaryPath: r.binaryPath, serverURL: r.serverURL, tokenFile: path}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "BJGAME_TOKEN=", "BJGAME_ADMIN_KEY=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the real application on a free port
func startTestServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	hash, err := auth.HashAdminKey(adminKey)
	require.NoError(t, err)
	authCfg := auth.DefaultConfig()
	authCfg.AdminKeyHash = hash

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{
		AuthConfig: authCfg,
		Logger:     logger,
		CardDir:    t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, app.Load(context.Background()))

	server := api.NewServer(app.Router(), api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()
	t.Cleanup(func() {
		app.HubManager.CloseAll()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		_ = app.Close()
	})

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

func TestCLI_HealthCheck(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "ok", decode[response.Health](t, output).Status)
}

func TestCLI_FullGame(t *testing.T) {
	serverURL := startTestServer(t)
	alice := newCLIRunner(t, serverURL)
	bob := alice.withTokenFile(filepath.Join(t.TempDir(), "token-bob"))

	output, err := alice.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	aliceID := decode[response.AuthResponse](t, output).Player.ID

	output, err = bob.run("player", "guest", "--name", "Bob")
	require.NoError(t, err, "output: %s", output)

	output, err = alice.run("game", "start")
	require.NoError(t, err, "output: %s", output)
	game := decode[response.Game](t, output)
	assert.Equal(t, aliceID, game.Owner)
	assert.Len(t, game.Player.Cards, 2)
	assert.Len(t, game.Dealer.Cards, 1)
	assert.Equal(t, 1, game.HiddenCards)

	// Bob can watch but not play
	output, err = bob.run("game", "get", aliceID)
	require.NoError(t, err, "output: %s", output)
	_, err = bob.run("game", "stand", aliceID)
	require.Error(t, err)

	output, err = alice.run("game", "stand")
	require.NoError(t, err, "output: %s", output)
	action := decode[response.Action](t, output)
	assert.True(t, action.Applied)
	assert.Equal(t, "finished", action.Game.State)
	assert.Contains(t, []string{"win", "lose", "draw"}, action.Game.Outcome)
	assert.Zero(t, action.Game.HiddenCards)

	output, err = alice.run("history")
	require.NoError(t, err, "output: %s", output)
	h := decode[response.History](t, output)
	assert.Equal(t, 1, h.Wins+h.Losses+h.Draws)
	assert.Equal(t, action.Game.Outcome, h.LastResult)
}

func TestCLI_Channels(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	_, err := cli.run("channels", "allow", "general")
	require.Error(t, err)

	output, err := cli.run("--admin-key", adminKey, "channels", "allow", "general")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, []string{"general"}, decode[response.Channels](t, output).Channels)

	output, err = cli.run("channels", "check", "random")
	require.NoError(t, err, "output: %s", output)
	assert.False(t, decode[response.ChannelAllowed](t, output).Allowed)
}

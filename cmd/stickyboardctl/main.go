// Command stickyboardctl is the operator CLI: migrations, dev tokens,
// and quick API calls against a running server.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dbfs "github.com/dawnhq/stickyboard/db"
	"github.com/dawnhq/stickyboard/internal/auth"
	"github.com/dawnhq/stickyboard/internal/config"
	"github.com/dawnhq/stickyboard/internal/db"
	"github.com/dawnhq/stickyboard/internal/logger"
	"github.com/dawnhq/stickyboard/internal/version"
	"github.com/dawnhq/stickyboard/pkg/tracker"
)

type cliOptions struct {
	configPath  string
	apiBaseURL  string
	token       string
	timeout     time.Duration
	showVersion bool
}

const usage = `usage: stickyboardctl [flags] <command> [args]

commands:
  migrate <up|down|version|force N>   run database migrations
  token -sub <subject> [-company ID]  mint a dev JWT with the configured secret
  me                                  show the profile behind -token
  boards                              list boards visible to -token
  active <boardID>                    show the live roster of a board
  cursor <boardID>                    stream "x y" lines from stdin as cursor moves
`

func main() {
	opts, args := parseFlags()
	if opts.showVersion {
		fmt.Printf("stickyboardctl %s\n", version.Info())
		return
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	if strings.TrimSpace(opts.apiBaseURL) == "" {
		opts.apiBaseURL = defaultAPIBaseURL(cfg.Server.Addr)
	}
	opts.apiBaseURL = strings.TrimRight(strings.TrimSpace(opts.apiBaseURL), "/")

	ctx := context.Background()
	command, rest := args[0], args[1:]

	var cmdErr error
	switch command {
	case "migrate":
		if len(rest) == 0 {
			cmdErr = fmt.Errorf("migrate requires a subcommand (up, down, version, force)")
			break
		}
		var migrations fs.FS
		migrations, cmdErr = dbfs.Migrations()
		if cmdErr != nil {
			break
		}
		cmdErr = db.RunMigrate(logger.L, cfg.Postgres, migrations, rest[0], rest[1:])
	case "token":
		cmdErr = runToken(cfg, rest)
	case "me":
		cmdErr = runMe(ctx, opts)
	case "boards":
		cmdErr = runBoards(ctx, opts)
	case "active":
		cmdErr = runActive(ctx, opts, rest)
	case "cursor":
		cmdErr = runCursor(ctx, opts, rest)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if cmdErr != nil {
		logger.Error(command+" failed", slog.Any("error", cmdErr))
		os.Exit(1)
	}
}

func parseFlags() (cliOptions, []string) {
	var opts cliOptions
	defaultConfig := os.Getenv("CONFIG_PATH")
	if strings.TrimSpace(defaultConfig) == "" {
		defaultConfig = config.DefaultConfigPath
	}

	flag.StringVar(&opts.configPath, "config", defaultConfig, "Path to config.toml")
	flag.StringVar(&opts.apiBaseURL, "api-url", "", "API server base URL (e.g. http://127.0.0.1:8080)")
	flag.StringVar(&opts.token, "token", os.Getenv("STICKYBOARD_TOKEN"), "Bearer token for API commands")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version information")
	flag.Parse()

	return opts, flag.Args()
}

func defaultAPIBaseURL(addr string) string {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, ":") {
		return "http://127.0.0.1" + trimmed
	}
	return "http://" + trimmed
}

func runToken(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	sub := fs.String("sub", "", "Token subject (tokenIdentifier)")
	company := fs.String("company", "", "company_id claim")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*sub) == "" {
		return fmt.Errorf("-sub is required")
	}
	secret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if value := os.Getenv("JWT_SECRET"); value != "" {
		secret = value
	}
	if secret == "" {
		return fmt.Errorf("jwt secret is required (config or JWT_SECRET)")
	}

	now := time.Now()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   *sub,
			Issuer:    cfg.Auth.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Auth.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
		CompanyID: *company,
	}
	token, err := auth.Sign(claims, secret)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// apiClient posts token-in-body JSON requests the way the web client does.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(opts cliOptions) (*apiClient, error) {
	if opts.apiBaseURL == "" {
		return nil, fmt.Errorf("api url is required (flag -api-url or server.addr in config)")
	}
	if strings.TrimSpace(opts.token) == "" {
		return nil, fmt.Errorf("token is required (flag -token or STICKYBOARD_TOKEN)")
	}
	return &apiClient{
		baseURL: opts.apiBaseURL,
		token:   opts.token,
		http:    &http.Client{Timeout: opts.timeout},
	}, nil
}

func (c *apiClient) post(ctx context.Context, path string, payload map[string]any, out any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["token"] = c.token
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s: %s", path, resp.Status, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// UpdatePresence implements tracker.Sender.
func (c *apiClient) UpdatePresence(ctx context.Context, boardID string, pos tracker.CursorPosition, heartbeat bool) error {
	return c.post(ctx, "/api/presence/update", map[string]any{
		"boardId":        boardID,
		"cursorPosition": pos,
		"isHeartbeat":    heartbeat,
	}, nil)
}

// RemovePresence implements tracker.Sender.
func (c *apiClient) RemovePresence(ctx context.Context, boardID string) error {
	return c.post(ctx, "/api/presence/remove", map[string]any{"boardId": boardID}, nil)
}

func runMe(ctx context.Context, opts cliOptions) error {
	client, err := newAPIClient(opts)
	if err != nil {
		return err
	}
	var me json.RawMessage
	if err := client.post(ctx, "/api/users/me", nil, &me); err != nil {
		return err
	}
	return printJSON(me)
}

func runBoards(ctx context.Context, opts cliOptions) error {
	client, err := newAPIClient(opts)
	if err != nil {
		return err
	}
	var boards json.RawMessage
	if err := client.post(ctx, "/api/boards/list", nil, &boards); err != nil {
		return err
	}
	return printJSON(boards)
}

func runActive(ctx context.Context, opts cliOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("active requires a board id")
	}
	client, err := newAPIClient(opts)
	if err != nil {
		return err
	}
	var roster json.RawMessage
	if err := client.post(ctx, "/api/presence/active", map[string]any{"boardId": args[0]}, &roster); err != nil {
		return err
	}
	return printJSON(roster)
}

// runCursor reads "x y" lines from stdin and reports them through the
// debounced tracker until EOF.
func runCursor(ctx context.Context, opts cliOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("cursor requires a board id")
	}
	client, err := newAPIClient(opts)
	if err != nil {
		return err
	}
	tr := tracker.New(logger.L, client, args[0], tracker.Options{})

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		x, errX := strconv.ParseFloat(fields[0], 64)
		y, errY := strconv.ParseFloat(fields[1], 64)
		if errX != nil || errY != nil {
			continue
		}
		tr.Track(tracker.CursorPosition{X: x, Y: y})
	}
	if err := tr.Close(ctx); err != nil {
		return err
	}
	return scanner.Err()
}

func printJSON(raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	fmt.Println(buf.String())
	return nil
}

// Command djchat is an interactive console for the Hang the DJ demo
// backend: streaming chat with the evaluator agent, the live intake
// interview, and the matchmaking simulation endpoints.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hangthedj/htdj-go/internal/dotenv"
	"github.com/hangthedj/htdj-go/pkg/transcript"
	"github.com/hangthedj/htdj-go/pkg/types"
	htdj "github.com/hangthedj/htdj-go/sdk"
)

const (
	defaultTimeout         = 90 * time.Second
	defaultPipelineTimeout = 10 * time.Minute
)

type chatConfig struct {
	BaseURL string
	EnvFile string
	Timeout time.Duration
	Verbose bool
}

func parseChatFlags(args []string) (chatConfig, error) {
	cfg := chatConfig{}
	fs := flag.NewFlagSet("djchat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "base-url", "", "demo backend base URL (default HTDJ_BASE_URL)")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "dotenv file loaded before HTDJ_* variables are read")
	fs.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "per-call timeout for non-streaming requests (e.g. 90s)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return chatConfig{}, err
	}
	return cfg, nil
}

// resolveChatConfig fills unset flags from the environment. It runs after
// the env file has loaded, so a flag always wins over HTDJ_* variables.
func resolveChatConfig(cfg chatConfig, getenv func(string) string) (chatConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = strings.TrimSpace(getenv("HTDJ_BASE_URL"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = htdj.DefaultBaseURL
	}
	if err := validateChatConfig(cfg); err != nil {
		return chatConfig{}, err
	}
	return cfg, nil
}

func parseChatConfig(args []string, getenv func(string) string) (chatConfig, error) {
	cfg, err := parseChatFlags(args)
	if err != nil {
		return chatConfig{}, err
	}
	return resolveChatConfig(cfg, getenv)
}

func validateChatConfig(cfg chatConfig) error {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return errors.New("base-url must not be empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
		return errors.New("base-url must be a valid absolute URL")
	}
	if parsed.User != nil {
		return errors.New("base-url must not include credentials")
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	return nil
}

func buildLogger(cfg chatConfig, errOut io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
}

func formatSummary(summary *types.IntakeSummary) string {
	if summary == nil {
		return "(no summary)"
	}
	var b strings.Builder
	b.WriteString("Preferences:\n")
	for _, p := range summary.Preferences {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	b.WriteString("Dealbreakers:\n")
	for _, d := range summary.Dealbreakers {
		fmt.Fprintf(&b, "  - %s\n", d)
	}
	fmt.Fprintf(&b, "Dating thesis: %s", summary.DatingThesis)
	return b.String()
}

func formatExchange(exchange *types.DateExchange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scene: %s\n\n", exchange.Scene)
	for _, turn := range exchange.Transcript {
		fmt.Fprintf(&b, "%s: %s\n", turn.Name, turn.Text)
	}
	if len(exchange.EvaluatorNotes) > 0 {
		b.WriteString("\nEvaluator notes:\n")
		for _, note := range exchange.EvaluatorNotes {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}
	if exchange.Score != nil {
		fmt.Fprintf(&b, "\nScore: A=%d B=%d compatibility=%d",
			exchange.Score.ScoreA, exchange.Score.ScoreB, exchange.Score.Compatibility)
	}
	return strings.TrimRight(b.String(), "\n")
}

type console struct {
	client  *htdj.Client
	cfg     chatConfig
	scanner *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
}

func (c *console) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func (c *console) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/users":
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()
		users, err := c.client.Matchmaking.Users(callCtx)
		if err != nil {
			fmt.Fprintf(c.errOut, "users error: %v\n", err)
			return true
		}
		for _, u := range users {
			fmt.Fprintf(c.out, "%s  %s — %s\n", u.UserID, u.DisplayName, u.Bio)
		}

	case "/intake":
		if len(args) != 1 {
			fmt.Fprintln(c.errOut, "usage: /intake <user_id>")
			return true
		}
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()
		resp, err := c.client.Intake.Summarize(callCtx, args[0])
		if err != nil {
			fmt.Fprintf(c.errOut, "intake error: %v\n", err)
			return true
		}
		fmt.Fprintln(c.out, formatSummary(&resp.Summary))

	case "/live":
		if len(args) != 1 {
			fmt.Fprintln(c.errOut, "usage: /live <user_id>")
			return true
		}
		c.runLiveInterview(ctx, args[0])

	case "/date":
		if len(args) != 2 {
			fmt.Fprintln(c.errOut, "usage: /date <user_a> <user_b>")
			return true
		}
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()
		exchange, err := c.client.Matchmaking.DateExchange(callCtx, args[0], args[1])
		if err != nil {
			fmt.Fprintf(c.errOut, "date exchange error: %v\n", err)
			return true
		}
		fmt.Fprintln(c.out, formatExchange(exchange))

	case "/report":
		if len(args) != 2 {
			fmt.Fprintln(c.errOut, "usage: /report <user_a> <user_b>")
			return true
		}
		callCtx, cancel := c.callCtx(ctx)
		defer cancel()
		report, err := c.client.Matchmaking.Report(callCtx, args[0], args[1])
		if err != nil {
			fmt.Fprintf(c.errOut, "report error: %v\n", err)
			return true
		}
		fmt.Fprintln(c.out, report.Report)

	case "/pipeline":
		if len(args) != 2 {
			fmt.Fprintln(c.errOut, "usage: /pipeline <user_a> <user_b>")
			return true
		}
		callCtx, cancel := context.WithTimeout(ctx, defaultPipelineTimeout)
		defer cancel()
		result, err := c.client.Matchmaking.Pipeline(callCtx, args[0], args[1])
		if err != nil {
			fmt.Fprintf(c.errOut, "pipeline error: %v\n", err)
			return true
		}
		for i := range result.Dates {
			fmt.Fprintf(c.out, "--- date %d ---\n%s\n\n", i+1, formatExchange(&result.Dates[i]))
		}
		fmt.Fprintln(c.out, result.FinalReport)

	case "/status":
		fmt.Fprintf(c.out, "stream status: %s, transcript entries: %d\n",
			c.client.Chat.Status(), len(c.client.Chat.Transcript()))

	case "/reset":
		if c.client.Chat.Reset() {
			fmt.Fprintln(c.out, "cleared")
		} else {
			fmt.Fprintln(c.errOut, "nothing to reset (stream still active or never started)")
		}

	default:
		return false
	}
	return true
}

// runLiveInterview walks the bounded question/answer protocol to completion.
// A failed submission keeps the session on the same step, so the user is
// simply asked again.
func (c *console) runLiveInterview(ctx context.Context, userID string) {
	startCtx, cancel := c.callCtx(ctx)
	session, err := c.client.Intake.StartLive(startCtx, userID)
	cancel()
	if err != nil {
		fmt.Fprintf(c.errOut, "live intake start error: %v\n", err)
		return
	}

	for !session.Complete() {
		fmt.Fprintf(c.out, "[%d/%d] %s\n? ", session.StepIndex()+1, types.TotalIntakeSteps, session.Question())
		if !c.scanner.Scan() {
			fmt.Fprintln(c.errOut, "interview abandoned")
			return
		}
		answer := strings.TrimSpace(c.scanner.Text())
		if answer == "" {
			continue
		}

		submitCtx, cancel := c.callCtx(ctx)
		resp, err := session.Submit(submitCtx, answer)
		cancel()
		if err != nil {
			fmt.Fprintf(c.errOut, "answer error (session unchanged, try again): %v\n", err)
			continue
		}
		if resp.IsComplete {
			fmt.Fprintln(c.out, "\nInterview complete.")
			fmt.Fprintln(c.out, formatSummary(session.Summary()))
			return
		}
	}
}

func (c *console) streamChatTurn(ctx context.Context, userText string) {
	if status := c.client.Chat.Status(); status == transcript.StatusDone || status == transcript.StatusError {
		c.client.Chat.Reset()
	}

	stream, err := c.client.Chat.Stream(ctx, userText)
	if err != nil {
		fmt.Fprintf(c.errOut, "chat stream error: %v\n", err)
		c.client.Chat.Reset()
		return
	}

	for entry := range stream.Entries() {
		fmt.Fprintf(c.out, "%s: %s\n", entry.Speaker, entry.Text)
	}
	if err := stream.Wait(); err != nil {
		fmt.Fprintf(c.errOut, "stream terminated: %v\n", err)
	}
	_ = stream.Close()
}

func runConsole(ctx context.Context, cfg chatConfig, in io.Reader, out io.Writer, errOut io.Writer) error {
	if err := validateChatConfig(cfg); err != nil {
		return err
	}
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	client := htdj.NewClient(
		htdj.WithBaseURL(cfg.BaseURL),
		htdj.WithLogger(buildLogger(cfg, errOut)),
	)

	fmt.Fprintf(out, "djchat connected to %s\n", cfg.BaseURL)
	fmt.Fprintln(out, "Commands: /users /intake <u> /live <u> /date <a> <b> /report <a> <b> /pipeline <a> <b> /status /reset /quit")
	fmt.Fprintln(out, "Anything else is sent to the evaluator agent as a streamed chat turn.")

	c := &console{
		client:  client,
		cfg:     cfg,
		scanner: bufio.NewScanner(in),
		out:     out,
		errOut:  errOut,
	}

	for {
		fmt.Fprint(out, "> ")
		if !c.scanner.Scan() {
			if err := c.scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}

		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/exit", "/quit":
			fmt.Fprintln(out, "bye")
			return nil
		}

		if strings.HasPrefix(line, "/") {
			if !c.handleCommand(ctx, line) {
				fmt.Fprintf(c.errOut, "unknown command: %s\n", line)
			}
			continue
		}

		c.streamChatTurn(ctx, line)
	}
}

func main() {
	flags, err := parseChatFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "djchat: %v\n", err)
		os.Exit(1)
	}
	if err := dotenv.Load(flags.EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "djchat: %v\n", err)
		os.Exit(1)
	}

	cfg, err := resolveChatConfig(flags, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "djchat: %v\n", err)
		os.Exit(1)
	}

	if err := runConsole(context.Background(), cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "djchat: %v\n", err)
		os.Exit(1)
	}
}

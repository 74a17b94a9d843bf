package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"memo/internal/bootstrap"
	"memo/internal/config"
	"memo/internal/repl"
	"memo/internal/tui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the command line and releases storage even when the
// command fails.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	c := &cli{stdin: stdin, stdout: stdout}
	root := c.rootCmd()
	root.SetArgs(args)
	defer c.close()
	return root.ExecuteContext(ctx)
}

// cli carries what every subcommand needs once config is loaded.
type cli struct {
	configPath string
	stdin      io.Reader
	stdout     io.Writer
	res        *bootstrap.BuildResult
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "memo",
		Short: "Smart memo assistant",
		Long: `memo files whatever you tell it as a todo or an idea, links ideas to
the todo they belong to, and answers questions about what is stored.

Run without arguments to start the interactive interface: the full-screen
TUI on a terminal, the line REPL otherwise.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.build(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.useTUI() {
				return tui.Run(cmd.Context(), c.res.Orch)
			}
			return c.runREPL(cmd.Context())
		},
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to config file (JSON, JSONC or YAML)")

	root.AddCommand(
		c.replCmd(),
		c.addCmd(),
		c.listCmd(),
		c.deleteCmd("delete-todo", "Delete a todo by id; its ideas become ungrouped"),
		c.deleteCmd("delete-idea", "Delete an idea by id"),
		c.clearCmd(),
		c.exportCmd(),
		c.mcpCmd(),
		c.initCmd(),
	)
	return root
}

func (c *cli) build(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	projectDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve cwd: %w", err)
	}
	res, err := bootstrap.Build(cmd.Context(), cfg, projectDir)
	if err != nil {
		return err
	}
	c.res = res
	return nil
}

func (c *cli) close() {
	if c.res != nil {
		_ = c.res.Close()
		c.res = nil
	}
}

func (c *cli) useTUI() bool {
	switch c.res.Config.UI.Mode {
	case "tui":
		return true
	case "repl":
		return false
	}
	return isTerminal(c.stdin) && isTerminal(c.stdout)
}

func (c *cli) runREPL(ctx context.Context) error {
	var in repl.LineInput
	if isTerminal(c.stdin) {
		var err error
		in, err = repl.NewLineInput(filepath.Join(c.res.Config.Storage.BaseDir, "repl.history"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "line editor unavailable, fallback to basic input: %v\n", err)
		}
	} else {
		in = repl.NewBasicLineInput(c.stdin, c.stdout)
	}
	defer in.Close()
	return repl.NewLoop(c.res, in, c.stdout).Run(ctx)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"memo/internal/config"
	"memo/internal/export"
	"memo/internal/mcpserver"
	"memo/internal/memory"
	"memo/internal/orchestrator"
	"memo/internal/repl"
)

func (c *cli) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the line-mode chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runREPL(cmd.Context())
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [text...]",
		Short: "Send one message and print the reply",
		Long: `Runs a single turn: the text is classified, stored when it is a todo or
an idea, and the assistant's reply is printed.

Example:
  memo add buy oat milk before Friday`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := c.res.Orch.Submit(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			orchestrator.RenderReply(cmd.OutOrStdout(), c.res.Orch.Lang(), reply)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show todos with their ideas, then ungrouped ideas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), orchestrator.FormatMemory(c.res.Orch.Lang(), c.res.Store.View()))
			return nil
		},
	}
}

func (c *cli) deleteCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			lang := c.res.Orch.Lang()
			var msg string
			if use == "delete-todo" {
				var todo memory.Todo
				todo, err = c.res.Store.DeleteTodo(id)
				msg = lang.T("memory.deleted_todo", todo.Title)
			} else {
				var idea memory.Idea
				idea, err = c.res.Store.DeleteIdea(id)
				msg = lang.T("memory.deleted_idea", idea.Text)
			}
			if errors.Is(err, memory.ErrNotFound) {
				return errors.New(lang.T("memory.not_found", id))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every todo and idea",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := c.res.Orch.Lang()
			if !yes {
				confirm := repl.ConfirmPrompt(repl.NewBasicLineInput(cmd.InOrStdin(), cmd.OutOrStdout()))
				ok, err := confirm(cmd.Context(), lang.T("memory.clear_confirm"))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), lang.T("memory.clear_aborted"))
					return nil
				}
			}
			c.res.Store.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), lang.T("memory.cleared"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all memos as Markdown, HTML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer file.Close()
				out = file
			}
			return export.Write(out, f, c.res.Orch.Lang(), c.res.Store)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "Export format: md, html or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve memo tools over MCP stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout exposing
memo_add, memo_list, memo_delete_todo and memo_delete_idea.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcpserver.Run(c.res.Orch, version)
		},
	}
}

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default ./.memo/config.json",
		Args:  cobra.NoArgs,
		// No store or provider is needed to write a template.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve cwd: %w", err)
			}
			path, created, err := config.InitProjectConfigScaffold(dir)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	}
}

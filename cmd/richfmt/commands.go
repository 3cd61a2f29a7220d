package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/richfmt/internal/format"
	"github.com/dshills/richfmt/internal/logging"
	"github.com/dshills/richfmt/internal/notify"
	"github.com/dshills/richfmt/internal/script"
	"github.com/dshills/richfmt/internal/watcher"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		output  string
		inPlace bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "apply <file> <action[=arg]>...",
		Short: "Run formatting actions and print the result",
		Long: `Run each action in order against the document and print the resulting
markup. An action takes an argument with name=arg, for example
a=https://example.com. Use - as the file to read stdin.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if inPlace && path == "-" {
				return fmt.Errorf("--in-place needs a file, not stdin")
			}
			markup, err := readSource(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			s, err := a.open(markup)
			if err != nil {
				return err
			}

			s.f.On(notify.Wildcard, func(ev notify.Event) {
				a.logger.Debug("command", "name", ev.Name, "param", ev.Param)
			})

			for _, step := range args[1:] {
				name, arg := parseStep(step)
				ok, err := s.f.Execute(name, arg...)
				if err != nil {
					return err
				}
				if !ok {
					if strict {
						return fmt.Errorf("action %q had no effect", name)
					}
					a.logger.Warn("action had no effect", "action", name)
				}
			}

			out, err := a.render(s)
			if err != nil {
				return err
			}
			if inPlace {
				output = path
			}
			return writeResult(cmd.OutOrStdout(), output, out)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to a file")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the input file")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when an action has no effect")
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "query <file> [name...]",
		Short: "Print the state of named queries",
		Long: `Print on, off or unknown for each named query. With no names every
query is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markup, err := readSource(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			s, err := a.open(markup)
			if err != nil {
				return err
			}

			names := args[1:]
			if len(names) == 0 {
				names = format.Queries()
			}
			states := make(map[string]string, len(names))
			for _, name := range names {
				st, err := s.f.Is(name)
				if err != nil {
					return err
				}
				states[name] = st.String()
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(states)
			}
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%s\n", name, states[name])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	return cmd
}

func newScriptCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "script <file> <script.lua>",
		Short: "Run a Lua script against a document",
		Long: `Run a Lua script with the richfmt table bound to the document, then
print the resulting markup. With --watch the script runs again whenever
the document or the script changes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docPath, scriptPath := args[0], args[1]
			if err := a.runScript(cmd, docPath, scriptPath); err != nil {
				if !watch {
					return err
				}
				a.logger.Error("script failed", "error", err)
			}
			if !watch {
				return nil
			}
			return a.watchScript(cmd, docPath, scriptPath)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run when the document or script changes")
	return cmd
}

func (a *app) runScript(cmd *cobra.Command, docPath, scriptPath string) error {
	markup, err := readSource(docPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	s, err := a.open(markup)
	if err != nil {
		return err
	}

	rt, err := script.New(s.f, s.doc,
		script.WithOutput(cmd.OutOrStdout()),
		script.WithLogger(logging.Component(a.logger, "script")),
	)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d := a.cfg.Script.Timeout.Std(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	if err := rt.RunFile(ctx, scriptPath); err != nil {
		return err
	}
	out, err := a.render(s)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), "", out)
}

func (a *app) watchScript(cmd *cobra.Command, docPath, scriptPath string) error {
	w, err := watcher.New(
		watcher.WithDebounce(a.cfg.Script.Debounce.Std()),
		watcher.WithLogger(logging.Component(a.logger, "watcher")),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, p := range []string{docPath, scriptPath} {
		if p == "-" {
			return fmt.Errorf("--watch needs files, not stdin")
		}
		if err := w.Watch(p); err != nil {
			return err
		}
	}
	a.logger.Info("watching", "document", docPath, "script", scriptPath)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			a.logger.Debug("change detected", "paths", ev.Paths, "at", ev.Time.Format(time.RFC3339))
			if err := a.runScript(cmd, docPath, scriptPath); err != nil {
				a.logger.Error("script failed", "error", err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "error", err)
		}
	}
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List action and query names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Actions:")
			for _, name := range format.Actions() {
				fmt.Fprintf(w, "  %s\n", name)
			}
			fmt.Fprintln(w, "Queries:")
			for _, name := range format.Queries() {
				fmt.Fprintf(w, "  %s\n", name)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "richfmt %s\n", version)
			fmt.Fprintf(w, "Commit: %s\n", commit)
			fmt.Fprintf(w, "Built: %s\n", date)
			return nil
		},
	}
}

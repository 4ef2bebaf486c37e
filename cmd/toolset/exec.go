package main

import (
	"context"
	"os"

	"github.com/Deduction-Dev/composio/callbacks"
	"github.com/Deduction-Dev/composio/encoding"
	"github.com/Deduction-Dev/composio/pkg/llmutils"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

type execFlags struct {
	args     string
	argsFile string
	validate bool
	verbose  bool
}

func newExecCmd(a *app) *cobra.Command {
	f := new(execFlags)
	cmd := &cobra.Command{
		Use:   "exec ACTION",
		Short: "Execute the platform action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExec(cmd.Context(), args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.args, "args", "", "arguments as JSON object")
	flags.StringVar(&f.argsFile, "args-file", "", "arguments file in JSON, YAML or TOML format")
	flags.BoolVar(&f.validate, "validate", false, "fetch the action schema and validate the arguments before the call")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "print the tool call transcript, requires --validate")
	return cmd
}

func (a *app) runExec(ctx context.Context, action string, f *execFlags) error {
	var args any = f.args
	if f.argsFile != "" {
		data, err := os.ReadFile(f.argsFile)
		if err != nil {
			return errors.WithStack(err)
		}
		m := map[string]any{}
		if err = encoding.Decode(encoding.FormatFromFile(f.argsFile), data, &m); err != nil {
			return errors.Mark(err, toolset.ErrInvalidArguments)
		}
		args = m
	}

	var (
		opts []toolset.Option
		pad  *callbacks.Scratchpad
	)
	if f.verbose {
		pad = callbacks.NewScratchpad(callbacks.ModeVerbose)
		opts = append(opts, toolset.WithCallback(callbacks.NewFanout(
			callbacks.NewPrinter(a.errOut, callbacks.ModeDefault),
			pad,
		)))
	}

	ts, err := a.toolset(opts...)
	if err != nil {
		return err
	}

	var res string
	if f.validate {
		res, err = a.callTool(ctx, ts, action, args, pad)
	} else {
		res, err = ts.ExecuteToolCall(ctx, toolset.ToolInvocation{Name: action, Arguments: args}, "")
	}
	if err != nil {
		return err
	}
	return a.write([]byte(llmutils.JSONIndent(res)))
}

// callTool fetches the action schema and calls the tool with validation
func (a *app) callTool(ctx context.Context, ts *toolset.Toolset, action string, args any, pad *callbacks.Scratchpad) (string, error) {
	list, err := ts.GetTools(ctx, &toolset.Filter{Actions: []string{action}})
	if err != nil {
		return "", err
	}
	tool, ok := list[action]
	if !ok {
		return "", errors.Newf("action %s not found", action)
	}

	params, err := toolset.NormalizeArguments(args)
	if err != nil {
		return "", errors.Wrapf(err, "action %s", action)
	}

	if pad != nil {
		pad.StartRun(tool.EntityID())
		defer func() {
			if _, transcript := pad.EndRun(tool.EntityID()); len(transcript) > 0 {
				_, _ = a.errOut.Write(transcript)
			}
		}()
	}
	return tool.Call(ctx, llmutils.ToJSON(params))
}

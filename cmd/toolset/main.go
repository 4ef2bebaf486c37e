// Command toolset lists platform actions as tools and executes them.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Deduction-Dev/composio/config"
	"github.com/Deduction-Dev/composio/encoding"
	"github.com/Deduction-Dev/composio/pkg/telemetry"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/Deduction-Dev/composio", "cmd")

// app holds the state of one CLI invocation
type app struct {
	out    io.Writer
	errOut io.Writer
	// opts are appended to the toolset options
	opts []toolset.Option

	cfgFile  string
	format   string
	template string
	entityID string
	debug    bool

	cfg      *config.Config
	pipeline *telemetry.Pipeline
	ts       *toolset.Toolset
}

func main() {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	if err := a.execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}

func (a *app) execute(args []string) error {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if a.pipeline != nil {
		_ = a.pipeline.Close()
		a.pipeline = nil
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "toolset",
		Short:         "toolset - platform actions as agent tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "cfg", os.Getenv("COMPOSIO_CONFIG"), "config file")
	flags.StringVarP(&a.format, "format", "o", encoding.FormatDefault, "output format: json|yaml|toml")
	flags.StringVar(&a.template, "template", "", "Go template for the output, overrides --format")
	flags.StringVar(&a.entityID, "entity", "", "acting entity, overrides the config")
	flags.BoolVarP(&a.debug, "debug", "D", false, "enable debug logs")

	root.AddCommand(
		newToolsCmd(a),
		newExecCmd(a),
		newFilterSchemaCmd(a),
		newEventsCmd(a),
	)
	return root
}

func (a *app) init() error {
	xlog.SetFormatter(xlog.NewStringFormatter(a.errOut))
	if a.debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}

	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return errors.WithMessagef(err, "failed to load config %q", a.cfgFile)
	}
	if a.entityID != "" {
		cfg.Toolset.EntityID = a.entityID
	}
	a.cfg = cfg

	a.pipeline, err = telemetry.New(&cfg.Telemetry)
	if err != nil {
		return err
	}
	return nil
}

// toolset is created on first use, so commands without remote calls
// do not require the API key
func (a *app) toolset(opts ...toolset.Option) (*toolset.Toolset, error) {
	if a.ts != nil {
		return a.ts, nil
	}
	opts = append([]toolset.Option{toolset.WithTelemetry(a.pipeline)}, opts...)
	opts = append(opts, a.opts...)
	ts, err := toolset.New(&a.cfg.Toolset, opts...)
	if err != nil {
		return nil, err
	}
	a.ts = ts
	logger.KV(xlog.DEBUG, "entity", ts.EntityID())
	return ts, nil
}

// print writes the value in the output format
func (a *app) print(v any) error {
	var (
		enc encoding.Encoder
		err error
	)
	if a.template != "" {
		enc, err = encoding.NewTemplateEncoder(a.template)
	} else {
		enc, err = encoding.NewEncoder(a.format, nil)
	}
	if err != nil {
		return err
	}

	bs, err := enc.Marshal(v)
	if err != nil {
		return err
	}
	return a.write(bs)
}

func (a *app) write(bs []byte) error {
	if len(bs) > 0 && bs[len(bs)-1] != '\n' {
		bs = append(bs, '\n')
	}
	_, err := a.out.Write(bs)
	return errors.WithStack(err)
}

package main

import (
	"os"
	"sort"

	"github.com/Deduction-Dev/composio/encoding"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

type toolInfo struct {
	Name        string         `json:"name" yaml:"name" toml:"name"`
	App         string         `json:"app,omitempty" yaml:"app,omitempty" toml:"app,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters,omitempty"`
}

type toolsList struct {
	Tools []toolInfo `json:"tools" yaml:"tools" toml:"tools"`
}

type toolsFlags struct {
	filter      toolset.Filter
	filterFile  string
	definitions bool
}

func newToolsCmd(a *app) *cobra.Command {
	f := new(toolsFlags)
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List platform actions as tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTools(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&f.filter.Actions, "actions", nil, "action names")
	flags.StringSliceVar(&f.filter.Apps, "apps", nil, "application names")
	flags.StringSliceVar(&f.filter.Tags, "tags", nil, "action tags")
	flags.StringVar(&f.filter.UseCase, "use-case", "", "natural language description of the task")
	flags.IntVar(&f.filter.UseCaseLimit, "limit", 0, "max number of actions matching the use case")
	flags.BoolVar(&f.filter.FilterByAvailableApps, "available", false, "only apps with an active connection")
	flags.StringVar(&f.filterFile, "filter", "", "filter file in JSON, YAML or TOML format, overrides the filter flags")
	flags.BoolVar(&f.definitions, "definitions", false, "print function definitions for LLM calls")
	return cmd
}

func (a *app) runTools(cmd *cobra.Command, f *toolsFlags) error {
	filter := &f.filter
	if f.filterFile != "" {
		var err error
		if filter, err = loadFilter(f.filterFile); err != nil {
			return err
		}
	}

	ts, err := a.toolset()
	if err != nil {
		return err
	}

	list, err := ts.GetTools(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if f.definitions {
		return a.print(toolset.Definitions(list))
	}

	res := toolsList{Tools: make([]toolInfo, 0, len(list))}
	for _, t := range list {
		res.Tools = append(res.Tools, toolInfo{
			Name:        t.Name(),
			App:         t.Action().AppName,
			Description: t.Description(),
			Parameters:  t.Schema().Root.Document(),
		})
	}
	sort.Slice(res.Tools, func(i, j int) bool { return res.Tools[i].Name < res.Tools[j].Name })
	return a.print(res)
}

// loadFilter reads the filter file, JSON is parsed strictly
func loadFilter(file string) (*toolset.Filter, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	format := encoding.FormatFromFile(file)
	if format == encoding.FormatJSON {
		return toolset.ParseFilter(data)
	}

	filter := new(toolset.Filter)
	if err = encoding.DecodeStrict(format, data, filter); err != nil {
		return nil, errors.Mark(err, toolset.ErrInvalidFilter)
	}
	if err = filter.Validate(); err != nil {
		return nil, err
	}
	return filter, nil
}

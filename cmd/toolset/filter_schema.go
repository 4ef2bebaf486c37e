package main

import (
	"github.com/Deduction-Dev/composio/encoding"
	yamlenc "github.com/Deduction-Dev/composio/encoding/yaml"
	"github.com/Deduction-Dev/composio/pkg/schema"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/spf13/cobra"
)

func newFilterSchemaCmd(a *app) *cobra.Command {
	var example bool
	cmd := &cobra.Command{
		Use:   "filter-schema",
		Short: "Print JSON schema of the tools filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !example {
				return a.write([]byte(schema.ToJSON(toolset.FilterSchema())))
			}

			var enc encoding.Exampler
			if a.format == encoding.FormatYAML {
				enc = yamlenc.NewEncoder(toolset.Filter{}).WithCommentStyle(yamlenc.LineComment)
			} else {
				e, err := encoding.NewEncoder(a.format, toolset.Filter{})
				if err != nil {
					return err
				}
				enc = e.(encoding.Exampler)
			}
			bs, err := enc.Example()
			if err != nil {
				return err
			}
			return a.write(bs)
		},
	}
	cmd.Flags().BoolVar(&example, "example", false, "print an example of the filter in the output format")
	return cmd
}

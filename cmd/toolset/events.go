package main

import (
	"github.com/Deduction-Dev/composio/store"
	"github.com/Deduction-Dev/composio/toolset"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

type eventsList struct {
	Events []*store.Event `json:"events" yaml:"events" toml:"events"`
}

type sourcesList struct {
	Sources []string `json:"sources" yaml:"sources" toml:"sources"`
}

func newEventsCmd(a *app) *cobra.Command {
	var (
		source  string
		reset   bool
		sources bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print telemetry events recorded in the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if sources {
				if a.pipeline.Store() == nil {
					return errors.New("telemetry store is not configured")
				}
				list, err := a.pipeline.Store().Sources(ctx)
				if err != nil {
					return err
				}
				return a.print(sourcesList{Sources: list})
			}

			events, err := a.pipeline.Events(ctx, source)
			if err != nil {
				return err
			}
			if events == nil {
				events = []*store.Event{}
			}
			if reset {
				if err = a.pipeline.Store().Reset(ctx, source); err != nil {
					return err
				}
			}
			return a.print(eventsList{Events: events})
		},
	}
	cmd.Flags().StringVar(&source, "source", toolset.SourceComponent, "source of the events")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete the events after printing")
	cmd.Flags().BoolVar(&sources, "sources", false, "print the sources with events")
	return cmd
}

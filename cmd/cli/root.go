package main

import (
	"fmt"
	"io"
	"strings"

	ouroboros "github.com/i5heu/ouroboros-records"
	"github.com/i5heu/ouroboros-records/internal/config"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	dataDir    string
	inMemory   bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ouroboros-records",
		Short:         "Versioned records and link indexes on a local ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "records.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", "", "data directory, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&opts.inMemory, "memory", false, "keep everything in memory")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newInitCmd(opts),
		newWhoAmICmd(opts),
		newAgentsCmd(opts),
		newHistoryCmd(opts),
		newVoteCmd(opts),
		newVotesCmd(opts),
		newSeedCmd(opts),
		newStatsCmd(opts),
	)
	return rootCmd
}

func (o *options) load() (config.File, error) {
	f, err := config.Load(o.configFile)
	if err != nil {
		return config.File{}, err
	}
	if o.dataDir != "" {
		f.Paths = []string{o.dataDir}
	}
	if o.inMemory {
		f.InMemory = true
	}
	if o.verbose {
		f.LogLevel = "debug"
	}
	return f, nil
}

func (o *options) open(cmd *cobra.Command) (*ouroboros.Records, error) {
	f, err := o.load()
	if err != nil {
		return nil, err
	}
	conf, err := f.Records()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	level, err := logrus.ParseLevel(f.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logLevel: %w", err)
	}
	logger.SetLevel(level)
	conf.Logger = logger

	return ouroboros.New(conf)
}

func newInitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.load()
			if err != nil {
				return err
			}
			if err := f.Save(opts.configFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.configFile)
			return nil
		},
	}
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "_No rows_")
		return err
	}

	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func short(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:16] + "..."
}

func formatFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/heiftile/pkg/ports"
)

var probedFormats = []ports.CompressionFormat{
	ports.FormatHEVC,
	ports.FormatAVC,
	ports.FormatAV1,
	ports.FormatJPEG,
}

func backendsCommand() *cli.Command {
	return &cli.Command{
		Name:   "backends",
		Usage:  l10n.T("List decoder backends and their priority per format"),
		Flags:  commonFlags(),
		Action: runBackends,
	}
}

func runBackends(c *cli.Context) error {
	_, _, selector, _, err := setup(c)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s", l10n.T("Name"))
	for _, f := range probedFormats {
		fmt.Fprintf(tw, "\t%s", f)
	}
	fmt.Fprintln(tw)

	for _, b := range selector.Backends() {
		fmt.Fprintf(tw, "%s\t%s", b.ID(), b.Name())
		for _, f := range probedFormats {
			fmt.Fprintf(tw, "\t%d", b.SupportsFormat(f))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, l10n.F("heiftile version %s", version))
			return nil
		},
	}
}

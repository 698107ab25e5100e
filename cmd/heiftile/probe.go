package main

import (
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/heiftile/pkg/adapters/tilesource"
	"github.com/user/heiftile/pkg/nalu"
	"github.com/user/heiftile/pkg/ports"
)

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Show the units and stream parameters of tiles"),
		ArgsUsage: "TILE...",
		Flags:     commonFlags(),
		Action:    runProbe,
	}
}

func runProbe(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New(l10n.T("At least one tile is required"))
	}

	_, _, selector, fs, err := setup(c)
	if err != nil {
		return err
	}
	source := tilesource.New(fs)
	w := c.App.Writer

	for _, path := range c.Args().Slice() {
		tile, err := source.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s, %d bytes\n", path, tile.Format, len(tile.Data))
		if tile.Width > 0 {
			fmt.Fprintf(w, "  %s: %dx%d\n", l10n.T("Container size"), tile.Width, tile.Height)
		}

		if backend, err := selector.Select(tile.Format); err == nil {
			fmt.Fprintf(w, "  %s: %s\n", l10n.T("Backend"), backend.ID())
		} else {
			fmt.Fprintf(w, "  %s: %s\n", l10n.T("Backend"), err)
		}

		if tile.Format != ports.FormatHEVC {
			continue
		}
		m, err := nalu.Parse(tile.Data)
		if err != nil {
			fmt.Fprintf(w, "  %s\n", err)
			continue
		}
		for _, u := range m.Units() {
			fmt.Fprintf(w, "  %-10s %6d bytes at %d\n", nalu.TypeName(u.Type), u.Length, u.Offset)
		}
		if !m.HasValidStructuralUnits() || !m.HasValidPicture() {
			fmt.Fprintf(w, "  %s\n", l10n.T("Incomplete access unit"))
		}
		info, err := m.StreamInfo()
		if err != nil {
			fmt.Fprintf(w, "  SPS: %s\n", err)
			continue
		}
		fmt.Fprintf(w, "  SPS: %dx%d, chroma_format_idc %d, %d-bit\n", info.Width, info.Height, info.ChromaFormat, info.BitDepth)
	}
	return nil
}

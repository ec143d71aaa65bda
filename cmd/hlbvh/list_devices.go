package main

import (
	"bytes"
	"fmt"

	"github.com/akmonengine/hlbvh/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListDevices prints the detected device capabilities.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	dev := device.Detect()
	strategy, _ := dev.Select(device.Auto)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Compute units", "Subgroup", "Local atomics", "Subgroup ops", "Scatter compaction", "Sort"})
	table.Append([]string{
		dev.Name,
		fmt.Sprintf("%d", dev.ComputeUnits),
		fmt.Sprintf("%d", dev.SubgroupSize),
		fmt.Sprintf("%t", dev.LocalAtomics),
		fmt.Sprintf("%t", dev.SubgroupOps),
		fmt.Sprintf("%t", dev.ScatterCompaction),
		strategy.String(),
	})
	table.Render()

	logger.Noticef("detected devices\n%s", buf.String())
	return nil
}

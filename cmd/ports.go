package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Long:  `Lists the MIDI output ports a midi preset can play through. Pass a port name to "run --midi-port".`,
	Run: func(cmd *cobra.Command, args []string) {
		defer gomidi.CloseDriver()
		outs := gomidi.GetOutPorts()
		if len(outs) == 0 {
			fmt.Println("no MIDI output ports found")
			return
		}
		for i, out := range outs {
			fmt.Printf("%2d: %s\n", i, out.String())
		}
	},
}

package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "handsynth",
	Short: "Play music with your hands",
	Long: `handsynth turns hand tracking landmarks into live music.

A tracker (typically a browser running a hand landmark model) POSTs
normalized hand positions to this process. The right hand's height picks
melody notes, the left hand's height picks chords, the distance between
the hands sets the volume, and pinching bends the sound.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

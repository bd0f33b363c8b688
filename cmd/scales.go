package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShaharFullStack/TheDemo/theory"
	"github.com/ShaharFullStack/TheDemo/voice"
)

var flagScaleRoot string

func init() {
	scalesCmd.Flags().StringVar(&flagScaleRoot, "root", "C", "root note to spell the scales from")
	rootCmd.AddCommand(scalesCmd)
}

var scalesCmd = &cobra.Command{
	Use:   "scales",
	Short: "List available scales, roots, and presets",
	Run: func(cmd *cobra.Command, args []string) {
		root := flagScaleRoot
		if _, ok := theory.ParsePitchClass(root); !ok {
			fmt.Printf("unknown root %q, using C\n\n", root)
			root = "C"
		}

		fmt.Printf("scales (from %s):\n", root)
		for _, name := range theory.ScaleNames() {
			s, _ := theory.LookupScale(name)
			notes := make([]string, len(s))
			for d := range s {
				n := theory.NoteForDegree(root, name, d, 4)
				notes[d] = theory.ResolveSpelling(n.PitchClass, root)
			}
			fmt.Printf("  %-16s %s\n", name, strings.Join(notes, " "))
		}

		fmt.Printf("\nroots:   %s\n", strings.Join(theory.RootNames(), " "))
		fmt.Printf("presets: %s\n", strings.Join(voice.PresetKeys(), " "))
	},
}

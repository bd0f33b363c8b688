package widgets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMeter(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("", RenderMeter(0.5, 0, '█', '░'))
	assert.Equal("██░░", RenderMeter(0.5, 4, '█', '░'))
	assert.Equal("████", RenderMeter(2.0, 4, '█', '░'))
	assert.Equal("░░░░", RenderMeter(-1, 4, '█', '░'))
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "keys", Keys: []KeyBinding{
			{Key: "q", Desc: "quit"},
			{Key: "m", Desc: "mute"},
		}},
	})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "keys", lines[0])
	assert.Contains(t, lines[1], "q")
	assert.Contains(t, lines[1], "quit")
	assert.Contains(t, lines[2], "mute")

	// untitled sections render bindings only
	out = RenderKeyHelp([]KeySection{
		{Keys: []KeyBinding{{Key: "p", Desc: "next preset"}}},
	})
	assert.Len(t, strings.Split(out, "\n"), 1)
}

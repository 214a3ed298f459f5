package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHeader(t *testing.T) {
	out := RenderHeader(HeaderInfo{
		Version: "v0.1.0",
		Tagline: "Store analytics setup",
		Store:   "s1",
		API:     "http://localhost:8000/api",
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "storelens v0.1.0", lines[0])
	assert.Equal(t, "Store analytics setup", lines[1])
	assert.Equal(t, "store s1 · http://localhost:8000/api", lines[2])
	assert.Equal(t, strings.Repeat("━", HeaderWidth), lines[3])
}

func TestRenderHeader_Minimal(t *testing.T) {
	out := RenderHeader(HeaderInfo{})

	assert.Equal(t, "storelens\n"+strings.Repeat("━", HeaderWidth)+"\n", out)
}

func TestRenderHeader_DividerFitsLongestLine(t *testing.T) {
	api := "https://analytics.example.com/api/v2/" + strings.Repeat("x", 40)
	out := RenderHeader(HeaderInfo{API: api})

	assert.Contains(t, out, strings.Repeat("━", len(api)))
}

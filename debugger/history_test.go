package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandHistoryIgnoresImmediateRepeat(t *testing.T) {
	h := NewCommandHistory(10)
	h.Add("step")
	h.Add("step")
	h.Add("continue")
	assert.Equal(t, []string{"step", "continue"}, h.All())
}

func TestCommandHistoryCapsAtMaxSize(t *testing.T) {
	h := NewCommandHistory(2)
	h.Add("a")
	h.Add("b")
	h.Add("c")
	assert.Equal(t, []string{"b", "c"}, h.All())
}

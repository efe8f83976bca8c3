package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mstrand/infodiet/internal/model"
)

func TestFromPages(t *testing.T) {
	assert.Equal(t, 0, FromPages(0))
	assert.Equal(t, 0, FromPages(-5))
	assert.Equal(t, 2, FromPages(1))
	assert.Equal(t, 600, FromPages(300))
}

func TestFromWords(t *testing.T) {
	assert.Equal(t, 0, FromWords(0))
	assert.Equal(t, 1, FromWords(225))
	assert.Equal(t, 2, FromWords(450))
	// 112/225 rounds down, 113/225 rounds up.
	assert.Equal(t, 0, FromWords(112))
	assert.Equal(t, 1, FromWords(113))
	assert.Equal(t, 40, FromWords(9000))
}

func TestWordCountFromHTML(t *testing.T) {
	assert.Equal(t, 0, WordCountFromHTML(""))
	assert.Equal(t, 3, WordCountFromHTML("plain text here"))
	assert.Equal(t, 4, WordCountFromHTML("<p>one <b>two</b> three</p><br/>four"))
	assert.Equal(t, 2, WordCountFromHTML(`<a href="https://example.org">a link</a>`))
}

func TestDefault(t *testing.T) {
	assert.Equal(t, 3, Default(model.Sprint))
	assert.Equal(t, 25, Default(model.Session))
	assert.Equal(t, 60, Default(model.Journey))
	assert.Equal(t, 15, Default(model.ContentType("UNKNOWN")))
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 0, Remaining(0, 0))
	assert.Equal(t, 0, Remaining(300, 300))
	assert.Equal(t, 0, Remaining(350, 300))
	assert.Equal(t, 600, Remaining(0, 300))
	assert.Equal(t, 100, Remaining(250, 300))
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, ProgressPercent(10, 0))
	assert.Equal(t, 0, ProgressPercent(0, 300))
	assert.Equal(t, 50, ProgressPercent(150, 300))
	assert.Equal(t, 100, ProgressPercent(300, 300))
	// Overshoot caps at 100.
	assert.Equal(t, 100, ProgressPercent(350, 300))
	assert.Equal(t, 1, ProgressPercent(2, 300))
}

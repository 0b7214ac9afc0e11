package splitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_CollapsesBlankRuns(t *testing.T) {
	text := "[**] one [**]\nline two\n\n\n\n[**] two [**]\n\n[**] three [**]\nsecond\n"

	entries := Collect(text)

	require.Len(t, entries, 3)
	assert.Equal(t, "[**] one [**]\nline two", entries[0])
	assert.Equal(t, "[**] two [**]", entries[1])
	assert.Equal(t, "[**] three [**]\nsecond", entries[2])
}

func TestSplit_WhitespaceOnlyLinesDelimit(t *testing.T) {
	text := "first\n   \t\nsecond\n \n \nthird"

	assert.Equal(t, []string{"first", "second", "third"}, Collect(text))
}

func TestSplit_TrimsSurroundingWhitespace(t *testing.T) {
	text := "\n\n   alpha\n  beta  \n\n\n"

	entries := Collect(text)

	require.Len(t, entries, 1)
	// 条目内部的行内容保持不变
	assert.Equal(t, "alpha\n  beta", entries[0])
}

func TestSplit_CRLF(t *testing.T) {
	text := "a1\r\na2\r\n\r\nb1\r\n"

	entries := Collect(text)

	require.Len(t, entries, 2)
	assert.Equal(t, "a1\r\na2", entries[0])
	assert.Equal(t, "b1", entries[1])
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Collect(""))
	assert.Empty(t, Collect("\n\n  \n"))
}

func TestSplit_NoDelimiter(t *testing.T) {
	text := "a\nb\nc"

	assert.Equal(t, []string{"a\nb\nc"}, Collect(text))
}

func TestSplit_StopsEarly(t *testing.T) {
	var got []string
	for entry := range Split("a\n\nb\n\nc") {
		got = append(got, entry)
		if len(got) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"a", "b"}, got)
}

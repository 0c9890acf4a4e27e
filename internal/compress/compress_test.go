package compress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_BelowThreshold(t *testing.T) {
	text := "небольшой текст"
	stored := Compress(text)

	assert.Equal(t, text, stored)
	assert.False(t, Compressed(stored))
}

func TestCompress_AboveThreshold(t *testing.T) {
	text := strings.Repeat("строка документа с повторяющимся содержимым\n", 10000)
	require.Greater(t, len(text), Threshold)

	stored := Compress(text)

	assert.True(t, Compressed(stored))
	assert.Less(t, len(stored), len(text))
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"small", "hello"},
		{"unicode", "документ с кириллицей и emoji 📄"},
		{"large", strings.Repeat("line of repeated document content\n", 20000)},
		{"large binaryish", strings.Repeat("\x00\x01\xff", 50000)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.text, Decompress(Compress(tc.text)))
		})
	}
}

func TestDecompress_PlainPassthrough(t *testing.T) {
	// Несжатое значение проходит без изменений
	assert.Equal(t, "plain stored text", Decompress("plain stored text"))
}

func TestDecompress_CorruptedFallsBack(t *testing.T) {
	// Битый base64 за префиксом возвращается как есть, без паники
	stored := "gz:%%%not-base64%%%"
	assert.Equal(t, stored, Decompress(stored))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 bytes", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2*1024*1024))
	assert.Equal(t, "1.0 GB", FormatSize(1024*1024*1024))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 75.0, Ratio(1000, 250), 0.001)
	assert.Equal(t, 0.0, Ratio(0, 100))
}

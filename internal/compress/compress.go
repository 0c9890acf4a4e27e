// Package compress сжимает крупные текстовые данные перед записью в базу.
// Сжатая форма помечается префиксом, поэтому хранимое значение всегда
// остаётся валидной строкой для текстовой колонки.
package compress

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

const (
	// Threshold минимальный размер в байтах, начиная с которого контент сжимается
	Threshold = 100 * 1024

	// prefix метка сжатой формы в текстовой колонке
	prefix = "gz:"
)

// Compress сжимает текст deflate-ом на максимальном уровне и кодирует в base64.
// Контент меньше порога возвращается как есть. Любая ошибка тоже возвращает
// вход без изменений: вызывающий код обязан принимать "сжатие не состоялось"
// как корректный исход.
func Compress(text string) string {
	if len(text) <= Threshold {
		return text
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return text
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return text
	}
	if err := w.Close(); err != nil {
		return text
	}

	return prefix + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Decompress точная инверсия Compress. Вход без префикса сжатой формы
// возвращается как есть; при ошибке декодирования — тоже.
func Decompress(stored string) string {
	if len(stored) <= len(prefix) || stored[:len(prefix)] != prefix {
		return stored
	}

	raw, err := base64.StdEncoding.DecodeString(stored[len(prefix):])
	if err != nil {
		return stored
	}

	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return stored
	}
	return string(out)
}

// Compressed сообщает, хранится ли значение в сжатой форме
func Compressed(stored string) bool {
	return len(stored) > len(prefix) && stored[:len(prefix)] == prefix
}

// FormatSize человекочитаемый размер с одним знаком после запятой.
// Только для отображения.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	case bytes < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
	}
}

// Ratio процент уменьшения размера после сжатия. Только для отображения.
func Ratio(originalSize, compressedSize int) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}

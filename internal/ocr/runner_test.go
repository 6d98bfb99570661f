package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStderrNotes(t *testing.T) {
	stderr := "Tesseract Open Source OCR Engine v5.3.0 with Leptonica\n" +
		"Estimating resolution as 312\n" +
		"Detected 14 diacritics\n" +
		"\n" +
		"Warning: Invalid resolution 0 dpi. Using 70 instead.\n" +
		"Empty page!!\n"
	assert.Equal(t, []string{"Empty page!!"}, stderrNotes([]byte(stderr)))
	assert.Nil(t, stderrNotes(nil))

	var long bytes.Buffer
	for i := 0; i < 20; i++ {
		long.WriteString("Image too small to scale!!\n")
	}
	long.WriteString("Line cannot be recognized!!\n")
	notes := stderrNotes(long.Bytes())
	require.Len(t, notes, maxNotes)
	assert.Equal(t, "Line cannot be recognized!!", notes[maxNotes-1])
}

func TestRunError(t *testing.T) {
	exit := errors.New("exit status 1")

	err := runError("tesseract", exit, []byte("Estimating resolution as 300\n"+
		"Error opening data file /usr/share/tessdata/hin.traineddata\n"+
		"Failed loading language 'hin'\n"))
	assert.ErrorIs(t, err, exit)
	assert.EqualError(t, err, "tesseract: exit status 1: Failed loading language 'hin'")

	err = runError("tesseract TSV", exit, []byte("Estimating resolution as 300\n"))
	assert.EqualError(t, err, "tesseract TSV: exit status 1")
}

func TestRecognizeTextReportsStderr(t *testing.T) {
	runner := &fakeRunner{fail: map[int]bool{0: true}}
	_, err := New(Config{}, quietLogger()).WithRunner(runner).
		RecognizeText(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.EqualError(t, err, "tesseract: exit status 1: boom")

	runner = &fakeRunner{fail: map[int]bool{0: true}}
	_, err = New(Config{}, quietLogger()).WithRunner(runner).
		WordBoxes(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.EqualError(t, err, "tesseract TSV: exit status 1: boom")
}

func TestExecRunnerLogsWarnings(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	var logs bytes.Buffer
	r := execRunner{logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	out, stderr, err := r.Run(context.Background(), sh, "-c",
		"echo 'Estimating resolution as 300' >&2; echo 'Empty page!!' >&2; echo words")
	require.NoError(t, err)
	assert.Equal(t, "words\n", string(out))
	assert.Contains(t, string(stderr), "Estimating resolution")
	assert.Contains(t, logs.String(), "tesseract warnings")
	assert.Contains(t, logs.String(), "Empty page!!")
	assert.NotContains(t, logs.String(), "Estimating resolution")

	logs.Reset()
	_, _, err = r.Run(context.Background(), sh, "-c", "echo 'Failed loading language' >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, logs.String(), "tesseract failed")
	assert.Contains(t, logs.String(), "Failed loading language")
}

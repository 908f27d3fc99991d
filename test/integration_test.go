//go:build integration

package test_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	testBinary string
	testModel  string
)

func TestMain(m *testing.M) {
	testBinary = os.Getenv("WHISPY_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "WHISPY_TEST_BIN not set; run: make test-integration")
		os.Exit(1)
	}
	testModel = os.Getenv("WHISPY_TEST_MODEL")

	if err := os.MkdirAll("data", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	silencePath := filepath.Join("data", "silence.wav")
	if err := generateSilenceWAV(silencePath, 16000, 1.0); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate silence.wav: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(silencePath)

	os.Exit(m.Run())
}

func generateSilenceWAV(path string, sampleRate int, durationS float64) error {
	const headerSize = 44
	numSamples := int(float64(sampleRate) * durationS)
	dataSize := numSamples * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func requireModel(t *testing.T) {
	t.Helper()
	if testModel == "" {
		t.Skip("WHISPY_TEST_MODEL not set")
	}
}

func requireSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join("data", "short.wav")
	if _, err := os.Stat(path); err != nil {
		t.Skip("data/short.wav not present")
	}
	return path
}

// runWhispy runs the binary in dir with a fresh log directory and returns it.
func runWhispy(t *testing.T, dir, stdin string, args ...string) (logDir string, out string) {
	t.Helper()
	logDir = t.TempDir()
	cmdArgs := append([]string{"-logpath", logDir}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+t.TempDir())

	b, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("whispy exited with error: %v\noutput: %s", err, b)
	}
	return logDir, string(b)
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func abs(t *testing.T, p string) string {
	t.Helper()
	a, err := filepath.Abs(p)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestUsageWithoutModel(t *testing.T) {
	cmd := exec.Command(testBinary)
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected non-zero exit, output: %s", out)
	}
	if !strings.Contains(string(out), "Usage: whispy") {
		t.Errorf("missing usage text: %s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := exec.Command(testBinary, "-version").CombinedOutput()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), "whispy ") {
		t.Errorf("got %q", out)
	}
}

func TestToggleCycleWritesTranscript(t *testing.T) {
	requireModel(t)
	sample := abs(t, requireSample(t))
	dir := t.TempDir()

	logDir, _ := runWhispy(t, dir, cmds("TOGGLE", "TOGGLE", "WAIT", "QUIT"),
		"-test", "-output", "file", testModel, sample)

	data, err := os.ReadFile(filepath.Join(dir, "transcript.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "[0 - ") {
		t.Errorf("transcript = %q", data)
	}
	if strings.TrimSpace(readLog(t, logDir, "transcribe_log.txt")) == "" {
		t.Error("transcribe_log.txt is empty, expected transcribed words")
	}
}

func TestTwoCycles(t *testing.T) {
	requireModel(t)
	sample := abs(t, requireSample(t))

	logDir, _ := runWhispy(t, t.TempDir(), cmds("TOGGLE", "TOGGLE", "WAIT", "TOGGLE", "TOGGLE", "WAIT", "QUIT"),
		"-test", "-output", "console", testModel, sample)

	diag := readLog(t, logDir, "diagnostics_log.txt")
	if n := strings.Count(diag, "segments="); n != 2 {
		t.Errorf("expected 2 transcription entries in diagnostics, got %d", n)
	}
}

func TestSilenceProducesNoSpeech(t *testing.T) {
	requireModel(t)

	logDir, _ := runWhispy(t, t.TempDir(), cmds("TOGGLE", "SLEEP 200", "TOGGLE", "WAIT", "QUIT"),
		"-test", "-output", "console", testModel, abs(t, "data/silence.wav"))

	diag := readLog(t, logDir, "diagnostics_log.txt")
	if strings.Contains(diag, "transcription error") {
		t.Errorf("silence reported as failure:\n%s", diag)
	}
}

func TestSingleToggleNeverTranscribes(t *testing.T) {
	requireModel(t)

	logDir, _ := runWhispy(t, t.TempDir(), cmds("TOGGLE", "SLEEP 100", "QUIT"),
		"-test", "-output", "console", testModel, abs(t, "data/silence.wav"))

	if strings.Contains(readLog(t, logDir, "diagnostics_log.txt"), "segments=") {
		t.Error("transcribed with recording still open")
	}
}

func TestFileMode(t *testing.T) {
	requireModel(t)
	sample := abs(t, requireSample(t))
	dir := t.TempDir()

	_, out := runWhispy(t, dir, "", testModel, sample)

	data, err := os.ReadFile(filepath.Join(dir, "transcript.txt"))
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if !strings.HasPrefix(line, "[") || !strings.Contains(line, "]: ") {
			t.Errorf("malformed transcript line %q", line)
		}
	}
	if !strings.Contains(out, "(") {
		t.Errorf("stdout lacks token start times: %s", out)
	}
}

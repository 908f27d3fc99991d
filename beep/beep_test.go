package beep

import "testing"

func TestGenerateTick(t *testing.T) {
	samples := generateTick(1000, 100, 0.5, 0.5, 10)
	if len(samples) != 1000 {
		t.Fatalf("len = %d, want 1000 (500 stereo frames)", len(samples))
	}
	for i := 0; i < len(samples); i += 2 {
		if samples[i] != samples[i+1] {
			t.Fatalf("frame %d: left %d != right %d", i/2, samples[i], samples[i+1])
		}
	}
	peak := int16(0)
	for _, s := range samples {
		peak = max(peak, s)
	}
	if peak > 32767/2 {
		t.Errorf("peak %d exceeds volume 0.5", peak)
	}
}

func TestGenerateDoubleBeep(t *testing.T) {
	tick := generateTick(1000, 100, 0.1, 0.5, 10)
	double := generateDoubleBeep(1000, 100, 0.1, 0.05, 0.5, 10)
	if want := len(tick)*2 + 100; len(double) != want {
		t.Errorf("len = %d, want %d", len(double), want)
	}
}

func TestDisabledByDefault(t *testing.T) {
	if Enabled() {
		t.Fatal("cues should start disabled")
	}
	PlayStart() // must not touch the sound server
	Enable()
	if !Enabled() {
		t.Error("Enable had no effect")
	}
	Disable()
}

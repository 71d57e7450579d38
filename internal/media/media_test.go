package media

import "testing"

func TestBitrateToken(t *testing.T) {
	cases := []struct {
		name    string
		bitrate *Bitrate
		want    string
	}{
		{"kilobits", Kilobits(128), "128k"},
		{"megabits", Megabits(2), "2M"},
		{"raw", BitsPerSecond(1500), "1500"},
		{"raw uneven", BitsPerSecond(128500), "128500"},
		{"kilo from raw", BitsPerSecond(96000), "96k"},
	}
	for _, tc := range cases {
		if got := tc.bitrate.Token(); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestBitrateRawUnevenKeepsValue(t *testing.T) {
	if got := BitsPerSecond(1500).Token(); got != "1500" {
		t.Fatalf("expected raw rendering for uneven value, got %q", got)
	}
}

func TestEncoderTokens(t *testing.T) {
	if got := CodecH264.Token(); got != "libx264" {
		t.Fatalf("expected libx264, got %q", got)
	}
	if got := RawEncoder("libfdk_aac").Token(); got != "libfdk_aac" {
		t.Fatalf("expected raw encoder passthrough, got %q", got)
	}
	if got := (StreamCopy{}).Token(); got != "copy" {
		t.Fatalf("expected copy token, got %q", got)
	}
}

func TestIsCopy(t *testing.T) {
	if !IsCopy(StreamCopy{}) {
		t.Fatal("expected StreamCopy to report as copy")
	}
	if IsCopy(CodecAAC) {
		t.Fatal("expected named codec not to report as copy")
	}
	if IsCopy(RawEncoder("copy")) {
		t.Fatal("raw encoder spelled copy is still not the copy variant")
	}
}

func TestFilterChainToken(t *testing.T) {
	chain := FilterChain{
		ScaleFilter{Width: 1280, Height: -1},
		CropFilter{Width: 640, Height: 480, X: 10, Y: 20},
		TransposeClockwise,
		RawFilter("hflip"),
	}
	want := "scale=1280:-1,crop=640:480:10:20,transpose=1,hflip"
	if got := chain.Token(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEmptyFilterChainToken(t *testing.T) {
	if got := (FilterChain)(nil).Token(); got != "" {
		t.Fatalf("expected empty token for empty chain, got %q", got)
	}
}

func TestSettingsVariants(t *testing.T) {
	var s Settings = AudioSettings{SampleRate: 44100}
	if _, ok := s.(AudioSettings); !ok {
		t.Fatal("expected AudioSettings variant")
	}
	s = VideoSettings{Frames: 10}
	if _, ok := s.(VideoSettings); !ok {
		t.Fatal("expected VideoSettings variant")
	}
}

package bytesize

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"plain zero", "0", 0, false},
		{"plain bytes", "4096", 4096, false},
		{"bytes suffix", "2048B", 2048, false},
		{"bytes suffix lowercase", "2048b", 2048, false},

		{"kibibytes Ki", "4Ki", 4 * KiB, false},
		{"kibibytes KiB", "4KiB", 4 * KiB, false},
		{"mebibytes Mi", "256Mi", 256 * MiB, false},
		{"gibibytes Gi", "1Gi", GiB, false},
		{"tebibytes Ti", "1Ti", TiB, false},

		{"kilobytes K", "1K", KB, false},
		{"kilobytes KB", "1KB", KB, false},
		{"megabytes MB", "100MB", 100 * MB, false},
		{"gigabytes G", "1G", GB, false},
		{"terabytes TB", "1TB", TB, false},

		{"lowercase unit", "1gi", GiB, false},
		{"uppercase unit", "1GI", GiB, false},
		{"leading space", "  1Gi", GiB, false},
		{"trailing space", "1Gi  ", GiB, false},
		{"space between", "1 Gi", GiB, false},

		{"fractional mebibytes", "1.5Mi", ByteSize(1.5 * 1024 * 1024), false},
		{"fractional gibibytes", "0.5Gi", ByteSize(0.5 * 1024 * 1024 * 1024), false},

		{"empty string", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"unknown unit", "1Xi", 0, true},
		{"negative number", "-1Gi", 0, true},
		{"unit without number", "Gi", 0, true},
		{"garbage", "abc", 0, true},
		{"double dot", "1..5Ki", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"unit", "1Gi", GiB, false},
		{"numeric", "4096", 4096, false},
		{"invalid", "invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b ByteSize
			err := b.UnmarshalText([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && b != tt.want {
				t.Errorf("UnmarshalText(%q) = %d, want %d", tt.input, b, tt.want)
			}
		})
	}
}

func TestMarshalTextRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		size ByteSize
		want string
	}{
		{"plain bytes", 4096 + 1, "4097"},
		{"kibibytes", 4 * KiB, "4Ki"},
		{"mebibytes", 256 * MiB, "256Mi"},
		{"gibibytes", 2 * GiB, "2Gi"},
		{"tebibytes", TiB, "1Ti"},
		{"zero", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.size.MarshalText()
			if err != nil {
				t.Fatalf("MarshalText() error = %v", err)
			}
			if string(text) != tt.want {
				t.Errorf("MarshalText() = %q, want %q", text, tt.want)
			}

			parsed, err := Parse(string(text))
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", text, err)
			}
			if parsed != tt.size {
				t.Errorf("round trip = %d, want %d", parsed, tt.size)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name  string
		input ByteSize
		want  string
	}{
		{"bytes", 512, "512B"},
		{"kibibytes", 2 * KiB, "2.00KiB"},
		{"mebibytes", 100 * MiB, "100.00MiB"},
		{"gibibytes", GiB, "1.00GiB"},
		{"fractional gibibytes", ByteSize(1.5 * float64(GiB)), "1.50GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	size := 4 * KiB

	if got := size.Uint64(); got != 4096 {
		t.Errorf("Uint64() = %d, want 4096", got)
	}
	if got := size.Int64(); got != 4096 {
		t.Errorf("Int64() = %d, want 4096", got)
	}
	if got := size.Int(); got != 4096 {
		t.Errorf("Int() = %d, want 4096", got)
	}
}

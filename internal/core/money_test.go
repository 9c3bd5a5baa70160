package core

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"54000", 54000, false},
		{" 12500 ", 12500, false},
		{"54000.4", 54000, false},
		{"54000.5", 54001, false},
		{"12,7", 13, false},
		{"0", 0, true},
		{"0.4", 0, true},
		{"", 0, true},
		{"-100", 0, true},
		{"+100", 0, true},
		{"12.3.4", 0, true},
		{"abc", 0, true},
		{"12a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAmount(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

package logging

import "testing"

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		dev     bool
		level   string
		wantErr bool
	}{
		{name: "development default", dev: true},
		{name: "production default", dev: false},
		{name: "explicit debug", dev: false, level: "debug"},
		{name: "bad level", dev: true, level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.dev, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			if tt.level == "debug" && !logger.Core().Enabled(-1) {
				t.Error("debug level should be enabled")
			}
		})
	}
}

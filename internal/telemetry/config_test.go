package telemetry

import "testing"

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ServiceName != "skilladmin" {
		t.Errorf("ServiceName = %q, want %q", config.ServiceName, "skilladmin")
	}
	if config.Enabled {
		t.Error("Enabled should be false by default")
	}
	if config.Endpoint != "" {
		t.Error("Endpoint should be empty by default")
	}
	if config.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", config.SampleRate)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, false},
		{"negative sample rate", func(c *Config) { c.SampleRate = -0.1 }, true},
		{"sample rate above one", func(c *Config) { c.SampleRate = 1.5 }, true},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

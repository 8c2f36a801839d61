// Package mountconfig loads the mount driver's JSON configuration file,
// mirroring internal/config.TuningConfig/LoadTuningConfig's validation
// style: extension check, file size cap, partial-field overrides via
// pointer fields with "omitempty".
package mountconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// MountConfig describes the serial device, baud rate, default site
// location, and debug-listen address for the mount driver. Fields are
// pointers so a partial JSON file can override only the fields it sets;
// zero-value fields are filled by Defaults().
type MountConfig struct {
	SerialDevice *string  `json:"serial_device,omitempty"`
	BaudRate     *int     `json:"baud_rate,omitempty"`
	DefaultLat   *float64 `json:"default_latitude,omitempty"`
	DefaultLon   *float64 `json:"default_longitude,omitempty"`
	DebugListen  *string  `json:"debug_listen,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// Defaults returns the baseline configuration used when no file is loaded
// or a field is omitted from the file.
func Defaults() *MountConfig {
	return &MountConfig{
		SerialDevice: ptrString("/dev/ttyUSB0"),
		BaudRate:     ptrInt(9600),
		DebugListen:  ptrString("localhost:8787"),
	}
}

// LoadMountConfig loads a MountConfig from a JSON file, validating the
// extension and size, then merges it onto Defaults() so omitted fields
// retain baseline values.
func LoadMountConfig(path string) (*MountConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that any set fields hold sane values.
func (c *MountConfig) Validate() error {
	if c.BaudRate != nil && *c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", *c.BaudRate)
	}
	if c.DefaultLat != nil && (*c.DefaultLat < -90 || *c.DefaultLat > 90) {
		return fmt.Errorf("default_latitude must be between -90 and 90, got %f", *c.DefaultLat)
	}
	if c.DefaultLon != nil && (*c.DefaultLon < -180 || *c.DefaultLon > 180) {
		return fmt.Errorf("default_longitude must be between -180 and 180, got %f", *c.DefaultLon)
	}
	if c.SerialDevice != nil && *c.SerialDevice == "" {
		return fmt.Errorf("serial_device must not be empty")
	}
	return nil
}

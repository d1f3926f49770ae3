package config

import (
	"fmt"
	"strings"
)

// Acceleration mode names accepted in config/flags/env, mirroring
// §4.6's AccelerationMode{Auto,Cpu,Gpu}.
const (
	AccelerationAuto = "auto"
	AccelerationCPU  = "cpu"
	AccelerationGPU  = "gpu"
)

// NormalizeAccelerationMode validates and lowercases raw, defaulting
// an empty string to AccelerationAuto.
func NormalizeAccelerationMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	if mode == "" {
		mode = AccelerationAuto
	}

	switch mode {
	case AccelerationAuto, AccelerationCPU, AccelerationGPU:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid acceleration mode %q (expected %s|%s|%s)", raw, AccelerationAuto, AccelerationCPU, AccelerationGPU)
	}
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type AppConfig struct {
	Directory   string `json:"directory"`
	TrashPath   string `json:"trash_path"`
	Algorithm   string `json:"algorithm"`    // "blockhash", "phash" or "dhash"
	Bits        int    `json:"bits"`         // 16, 64, 144 or 256 (blockhash only)
	MaxDistance int    `json:"max_distance"` // Hamming distance threshold for grouping
	Threshold   int    `json:"threshold"`    // name similarity threshold (0-100)
	Recursive   bool   `json:"recursive"`
	LeaveRef    bool   `json:"leave_ref"`
	Port        int    `json:"port"`
}

func Defaults() *AppConfig {
	return &AppConfig{
		Directory:   ".",
		Algorithm:   "blockhash",
		Bits:        64,
		MaxDistance: 8,
		Threshold:   70,
		Recursive:   true,
		Port:        8080,
	}
}

func GetConfigPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return "image-finder-settings.json"
	}
	return filepath.Join(filepath.Dir(exePath), "image-finder-settings.json")
}

func LoadConfig() (*AppConfig, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return Defaults(), err
	}
	return cfg, nil
}

func SaveConfig(cfg *AppConfig) error {
	path := GetConfigPath()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

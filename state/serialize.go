package state

import (
	"fmt"
	"os"
	"path"

	"github.com/goccy/go-yaml"
)

func ReadTopologyCfg(p string) (*TopologyCfg, error) {
	var cfg TopologyCfg
	file, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTopology, p, err)
	}
	return &cfg, nil
}

func WriteTopologyCfg(p string, cfg TopologyCfg) error {
	bytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := path.Dir(p); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(p, bytes, 0600)
}

// ReadServerCfg reads the service configuration, filling unset fields with defaults.
func ReadServerCfg(p string) (*ServerCfg, error) {
	cfg := DefaultServerCfg()
	file, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Transport.MaxWindow == 0 {
		cfg.Transport.MaxWindow = MaxWindow
	}
	return &cfg, nil
}

func ReadTransportCfg(p string) (*TransportCfg, error) {
	cfg := DefaultTransport()
	file, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

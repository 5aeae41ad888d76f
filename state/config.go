package state

import (
	"fmt"
	"time"
)

type LinkCfg struct {
	A    NodeId `yaml:"a"`
	B    NodeId `yaml:"b"`
	Cost Metric `yaml:"cost"`
}

// TopologyCfg is the persisted form of a Topology
type TopologyCfg struct {
	Name  string    `yaml:"name,omitempty"`
	Nodes []NodeId  `yaml:"nodes"`
	Links []LinkCfg `yaml:"links"`
	// Graph declares additional links in the ParseLinks syntax. Links listed explicitly take precedence.
	Graph []string `yaml:"graph,omitempty"`
}

// TransportCfg configures a single congestion control run. Window sizes are in segments.
type TransportCfg struct {
	SegmentSize      int     `yaml:"segment_size" json:"segment_size"`
	InitialWindow    float64 `yaml:"initial_window" json:"initial_window"`
	InitialThreshold int     `yaml:"initial_threshold" json:"initial_threshold"`
	MaxSteps         int     `yaml:"max_steps" json:"max_steps"`
	LossProbability  float64 `yaml:"loss_probability" json:"loss_probability"`
	MaxWindow        float64 `yaml:"max_window,omitempty" json:"max_window,omitempty"`
	Seed             *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"` // if nil, the caller picks a random seed
}

// ServerCfg represents the configuration of the simulation service
type ServerCfg struct {
	Bind          string        `yaml:"bind"`
	TopologyPath  string        `yaml:"topology_path,omitempty"` // where the current topology is loaded from and saved to
	Preset        string        `yaml:"preset,omitempty"`        // preset used when no topology file exists
	MaxIterations int           `yaml:"max_iterations,omitempty"`
	CacheTTL      time.Duration `yaml:"cache_ttl,omitempty"`
	CacheSize     uint64        `yaml:"cache_size,omitempty"`
	LogPath       string        `yaml:"log_path,omitempty"` // if not empty, the server will also log to this file
	Transport     TransportCfg  `yaml:"transport"`
}

func (c TopologyCfg) Topology() (*Topology, error) {
	links := make([]Link, 0, len(c.Links))
	for _, l := range c.Links {
		links = append(links, Link{A: l.A, B: l.B, Weight: l.Cost})
	}
	t, err := NewTopology(c.Nodes, links)
	if err != nil {
		return nil, err
	}
	if len(c.Graph) == 0 {
		return t, nil
	}
	declared, err := ParseLinks(c.Graph, c.Nodes)
	if err != nil {
		return nil, fmt.Errorf("%w: graph: %w", ErrInvalidTopology, err)
	}
	for _, l := range declared {
		if _, ok := t.Weight(l.A, l.B); ok {
			continue
		}
		if err := t.AddLink(l.A, l.B, l.Weight); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func TopologyToCfg(name string, t *Topology) TopologyCfg {
	cfg := TopologyCfg{
		Name:  name,
		Nodes: t.NodeIds(),
		Links: make([]LinkCfg, 0),
	}
	for _, l := range t.Links() {
		cfg.Links = append(cfg.Links, LinkCfg{A: l.A, B: l.B, Cost: l.Weight})
	}
	return cfg
}

func DefaultServerCfg() ServerCfg {
	return ServerCfg{
		Bind:          DefaultBind,
		Preset:        "sample",
		MaxIterations: MaxIterations,
		CacheTTL:      5 * time.Minute,
		CacheSize:     64,
		Transport:     DefaultTransport(),
	}
}

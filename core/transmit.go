package core

import (
	"fmt"

	"github.com/encodeous/netsim/state"
)

const ReasonUnreachable = "unreachable"

type TransmitRequest struct {
	PayloadBytes    int
	Source          state.NodeId
	Destination     state.NodeId
	LossProbability float64
}

type TransmitResult struct {
	Path      []state.NodeId `json:"path"`
	Cost      int64          `json:"path_cost"`
	Reachable bool           `json:"reachable"`
	Reason    string         `json:"reason,omitempty"`
	Transport *SimResult     `json:"tcp_results,omitempty"`
}

// Transmit routes the request across n and, if a path exists, runs the transport engine once for the payload.
// The request's loss probability replaces the one in cfg.
func Transmit(n *Network, cfg state.TransportCfg, req TransmitRequest, rng LossSource) (TransmitResult, error) {
	for _, id := range []state.NodeId{req.Source, req.Destination} {
		if !n.Topology.HasNode(id) {
			return TransmitResult{}, fmt.Errorf("%w: node %s is not part of the topology", state.ErrInvalidParameter, id)
		}
	}
	cfg.LossProbability = req.LossProbability
	if err := cfg.Validate(); err != nil {
		return TransmitResult{}, err
	}
	path := n.ShortestPath(req.Source, req.Destination)
	if len(path) == 0 {
		return TransmitResult{
			Path:   path,
			Cost:   -1,
			Reason: ReasonUnreachable,
		}, nil
	}
	res := SimulateTransmission(cfg, req.PayloadBytes, rng)
	return TransmitResult{
		Path:      path,
		Cost:      n.ReportedCost(path),
		Reachable: true,
		Transport: &res,
	}, nil
}

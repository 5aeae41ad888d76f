package api

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/encodeous/netsim/cipher"
	"github.com/encodeous/netsim/core"
	"github.com/encodeous/netsim/perf"
	"github.com/encodeous/netsim/state"
	"github.com/google/uuid"
)

// defaults of the full pipeline when the request leaves them out
const (
	defaultPlaintext   = "HELLO NETWORK SECURITY WORLD"
	defaultKey         = "NETWORK"
	defaultSource      = state.NodeId("A")
	defaultDestination = state.NodeId("F")
	defaultDataSize    = 1000
)

type topoNode struct {
	Id state.NodeId `json:"id"`
}

type topoLink struct {
	Source state.NodeId `json:"source"`
	Target state.NodeId `json:"target"`
	Cost   state.Metric `json:"cost"`
}

type topoData struct {
	Nodes []topoNode `json:"nodes"`
	Links []topoLink `json:"links"`
}

func toTopoData(cfg state.TopologyCfg) topoData {
	d := topoData{
		Nodes: make([]topoNode, 0, len(cfg.Nodes)),
		Links: make([]topoLink, 0, len(cfg.Links)),
	}
	for _, n := range cfg.Nodes {
		d.Nodes = append(d.Nodes, topoNode{Id: n})
	}
	for _, l := range cfg.Links {
		d.Links = append(d.Links, topoLink{Source: l.A, Target: l.B, Cost: l.Cost})
	}
	return d
}

func (d topoData) cfg(name string) state.TopologyCfg {
	cfg := state.TopologyCfg{
		Name:  name,
		Nodes: make([]state.NodeId, 0, len(d.Nodes)),
		Links: make([]state.LinkCfg, 0, len(d.Links)),
	}
	for _, n := range d.Nodes {
		cfg.Nodes = append(cfg.Nodes, n.Id)
	}
	for _, l := range d.Links {
		cfg.Links = append(cfg.Links, state.LinkCfg{A: l.Source, B: l.Target, Cost: l.Cost})
	}
	return cfg
}

// newRun identifies a simulation and picks its seed. A request without a seed gets a random one,
// which is echoed back so the run can be replayed.
func newRun(seed *uint64) (string, uint64, *rand.Rand) {
	sd := pick(seed, rand.Uint64())
	return uuid.NewString(), sd, core.NewLossSource(sd)
}

func (s *Server) observeTransport(kind, run string, res core.SimResult, elapsed time.Duration) {
	perf.ObserveSimulation(res.TimeSteps, res.TotalPacketsSent, res.LossEvents, res.Complete, elapsed)
	s.metrics.lossEvents.Observe(float64(res.LossEvents))
	outcome := "complete"
	if !res.Complete {
		outcome = "incomplete"
	}
	s.metrics.observeRun(kind, outcome)
	s.logger.Debug("transmission finished", "run", run, "kind", kind, "steps", res.TimeSteps, "sent", res.TotalPacketsSent, "losses", res.LossEvents, "complete", res.Complete)
}

func (s *Server) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, http.StatusOK, map[string]string{
			"status":  "healthy",
			"message": "netsim API is running",
		})
	}
}

type encryptReq struct {
	Plaintext string `json:"plaintext"`
	Key       string `json:"key"`
}

type encryptResp struct {
	EncryptedText string     `json:"encrypted_text"`
	KeyMatrix     [][]string `json:"key_matrix"`
	Success       bool       `json:"success"`
}

func (s *Server) encrypt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req encryptReq
		if err := readJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Plaintext == "" || req.Key == "" {
			s.writeError(w, r, fmt.Errorf("%w: plaintext and key are required", state.ErrInvalidParameter))
			return
		}
		ct, err := cipher.Encrypt(req.Plaintext, req.Key)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, encryptResp{
			EncryptedText: ct,
			KeyMatrix:     cipher.KeyMatrix(req.Key).Cells(),
			Success:       true,
		})
	}
}

type decryptReq struct {
	Ciphertext string `json:"ciphertext"`
	Key        string `json:"key"`
}

type decryptResp struct {
	DecryptedText string `json:"decrypted_text"`
	Success       bool   `json:"success"`
}

func (s *Server) decrypt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decryptReq
		if err := readJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Ciphertext == "" || req.Key == "" {
			s.writeError(w, r, fmt.Errorf("%w: ciphertext and key are required", state.ErrInvalidParameter))
			return
		}
		pt, err := cipher.Decrypt(req.Ciphertext, req.Key)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, decryptResp{DecryptedText: pt, Success: true})
	}
}

type routeResp struct {
	NextHop  *state.NodeId `json:"next_hop"`
	Distance int64         `json:"distance"` // -1 if unreachable
}

type nodeResp struct {
	Id           state.NodeId               `json:"id"`
	Label        string                     `json:"label"`
	Neighbours   []state.NodeId             `json:"neighbors"`
	RoutingTable map[state.NodeId]routeResp `json:"routing_table"`
}

type linkResp struct {
	Source   state.NodeId `json:"source"`
	Target   state.NodeId `json:"target"`
	Distance state.Metric `json:"distance"`
}

type networkResp struct {
	Topology   string     `json:"topology"`
	Nodes      []nodeResp `json:"nodes"`
	Links      []linkResp `json:"links"`
	Converged  bool       `json:"converged"`
	Iterations int        `json:"iterations"`
	Success    bool       `json:"success"`
}

func (s *Server) ripNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topo := s.Topology()
		n, err := s.cache.Get(topo)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp := networkResp{
			Topology:   topo.Name,
			Nodes:      make([]nodeResp, 0, len(n.Tables)),
			Links:      make([]linkResp, 0),
			Converged:  n.Converged,
			Iterations: n.Iterations,
			Success:    true,
		}
		for _, id := range n.Topology.NodeIds() {
			nr := nodeResp{
				Id:           id,
				Label:        "Node " + string(id),
				Neighbours:   n.Topology.NeighbourIds(id),
				RoutingTable: make(map[state.NodeId]routeResp),
			}
			for dst, route := range n.Table(id) {
				rr := routeResp{Distance: -1}
				if route.Metric != state.INF {
					nh := route.Nh
					rr = routeResp{NextHop: &nh, Distance: int64(route.Metric)}
				}
				nr.RoutingTable[dst] = rr
			}
			resp.Nodes = append(resp.Nodes, nr)
		}
		for _, l := range n.Topology.Links() {
			resp.Links = append(resp.Links, linkResp{Source: l.A, Target: l.B, Distance: l.Weight})
		}
		s.writeJSON(w, r, http.StatusOK, resp)
	}
}

type pathReq struct {
	Source      *state.NodeId `json:"source"`
	Destination *state.NodeId `json:"destination"`
}

type pathResp struct {
	Path    []state.NodeId `json:"path"`
	Cost    int64          `json:"cost"`
	Success bool           `json:"success"`
}

func (s *Server) shortestPath() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pathReq
		if err := readJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		n, err := s.network()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		path := n.ShortestPath(pick(req.Source, defaultSource), pick(req.Destination, defaultDestination))
		s.writeJSON(w, r, http.StatusOK, pathResp{
			Path:    path,
			Cost:    n.ReportedCost(path),
			Success: true,
		})
	}
}

type tcpReq struct {
	DataSize    *int     `json:"data_size"`
	MSS         *int     `json:"mss"`
	InitialCwnd *float64 `json:"initial_cwnd"`
	Ssthresh    *int     `json:"ssthresh"`
	LossRate    *float64 `json:"packet_loss_rate"`
	MaxTime     *int     `json:"max_time"`
	Seed        *uint64  `json:"seed"`
}

type tcpResp struct {
	RunId   string             `json:"run_id"`
	Seed    uint64             `json:"seed"`
	Config  state.TransportCfg `json:"config"`
	Results core.SimResult     `json:"results"`
	Success bool               `json:"success"`
}

func (s *Server) tcpSimulate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tcpReq
		if err := readJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		def := s.cfg.Transport
		cfg := state.TransportCfg{
			SegmentSize:      pick(req.MSS, def.SegmentSize),
			InitialWindow:    pick(req.InitialCwnd, def.InitialWindow),
			InitialThreshold: pick(req.Ssthresh, def.InitialThreshold),
			MaxSteps:         pick(req.MaxTime, def.MaxSteps),
			LossProbability:  pick(req.LossRate, def.LossProbability),
			MaxWindow:        def.MaxWindow,
		}
		cfg.Clamp()
		size := min(max(pick(req.DataSize, defaultDataSize), 1), state.MaxPayloadBytes)

		run, seed, rng := newRun(req.Seed)
		start := time.Now()
		res := core.SimulateTransmission(cfg, size, rng)
		s.observeTransport("tcp", run, res, time.Since(start))

		cfg.Seed = &seed
		s.writeJSON(w, r, http.StatusOK, tcpResp{
			RunId:   run,
			Seed:    seed,
			Config:  cfg,
			Results: res,
			Success: true,
		})
	}
}

type fullReq struct {
	Plaintext   *string       `json:"plaintext"`
	Key         *string       `json:"key"`
	Source      *state.NodeId `json:"source_node"`
	Destination *state.NodeId `json:"destination_node"`
	LossRate    *float64      `json:"packet_loss_rate"`
	Seed        *uint64       `json:"seed"`
}

type fullResp struct {
	RunId   string            `json:"run_id"`
	Seed    uint64            `json:"seed"`
	Results core.SecureResult `json:"results"`
	Success bool              `json:"success"`
}

func (s *Server) fullSimulation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fullReq
		if err := readJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		sreq := core.SecureRequest{
			Plaintext:       pick(req.Plaintext, defaultPlaintext),
			Key:             pick(req.Key, defaultKey),
			Source:          pick(req.Source, defaultSource),
			Destination:     pick(req.Destination, defaultDestination),
			LossProbability: min(max(pick(req.LossRate, state.DefaultLossProbability), 0), 1),
		}
		if sreq.Plaintext == "" || sreq.Key == "" {
			s.writeError(w, r, fmt.Errorf("%w: plaintext and key are required", state.ErrInvalidParameter))
			return
		}
		n, err := s.network()
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		run, seed, rng := newRun(req.Seed)
		start := time.Now()
		res, err := core.SecureTransmit(n, state.DefaultPipelineTransport(), sreq, rng)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if res.Transport != nil {
			s.observeTransport("full", run, *res.Transport, time.Since(start))
		} else {
			s.metrics.observeRun("full", core.ReasonUnreachable)
		}
		s.logger.Info("pipeline finished", "run", run, "src", sreq.Source, "dst", sreq.Destination, "success", res.Success, "reason", res.Error)
		s.writeJSON(w, r, http.StatusOK, fullResp{
			RunId:   run,
			Seed:    seed,
			Results: res,
			Success: true,
		})
	}
}

type nodesResp struct {
	Nodes   []state.NodeId `json:"nodes"`
	Success bool           `json:"success"`
}

func (s *Server) nodes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.Topology().Topology()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, nodesResp{Nodes: t.NodeIds(), Success: true})
	}
}

type presetResp struct {
	Name string   `json:"name"`
	Data topoData `json:"data"`
}

type presetsResp struct {
	Presets []presetResp `json:"presets"`
	Success bool         `json:"success"`
}

func (s *Server) presets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := presetsResp{Presets: make([]presetResp, 0, len(state.Presets)), Success: true}
		for _, name := range state.PresetNames() {
			p, _ := state.Preset(name)
			resp.Presets = append(resp.Presets, presetResp{Name: name, Data: toTopoData(p)})
		}
		s.writeJSON(w, r, http.StatusOK, resp)
	}
}

type loadReq struct {
	Topology string    `json:"topology"`
	Data     *topoData `json:"data"`
}

type loadResp struct {
	Topology string         `json:"topology"`
	Nodes    []state.NodeId `json:"nodes"`
	Success  bool           `json:"success"`
}

func (s *Server) loadTopology() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loadReq
		if err := readJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		var cfg state.TopologyCfg
		if req.Data == nil {
			p, ok := state.Preset(req.Topology)
			if !ok {
				s.writeError(w, r, fmt.Errorf("%w: preset %q does not exist", state.ErrInvalidParameter, req.Topology))
				return
			}
			cfg = p
		} else {
			cfg = req.Data.cfg(req.Topology)
		}
		if err := s.SetTopology(cfg); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, loadResp{Topology: cfg.Name, Nodes: cfg.Nodes, Success: true})
	}
}

type saveResp struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
}

func (s *Server) save() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.cfg.TopologyPath
		if p == "" {
			s.writeError(w, r, fmt.Errorf("%w: no topology_path is configured", state.ErrInvalidParameter))
			return
		}
		if err := state.WriteTopologyCfg(p, s.Topology()); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.logger.Info("topology saved", "path", p)
		s.writeJSON(w, r, http.StatusOK, saveResp{Path: p, Success: true})
	}
}

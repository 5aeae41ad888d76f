package state

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

/*
ParseLinks expands the compact link declarations used by topology files into weighted links.

	core = A, B, C    // defines a group from nodes or groups declared above it
	core, core : 2    // links every member of core to every other member, each link costs 2
	core, D, E : 5    // links each entry to every other entry, but not within a group
	E, F              // a single link with the default cost of 1
	# comment

Names are case-sensitive. Declaring the same link twice with different costs is an error.
*/
func ParseLinks(lines []string, nodes []NodeId) ([]Link, error) {
	p := linkParser{
		nodes:  make(map[NodeId]bool, len(nodes)),
		groups: make(map[string][]NodeId),
		links:  make(map[Pair[NodeId, NodeId]]Metric),
	}
	for _, n := range nodes {
		p.nodes[n] = true
	}
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var err error
		if name, members, ok := strings.Cut(line, "="); ok {
			err = p.group(strings.TrimSpace(name), members)
		} else {
			err = p.connect(line)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d (%q): %w", i+1, line, err)
		}
	}

	out := make([]Link, 0, len(p.links))
	keys := slices.Collect(maps.Keys(p.links))
	SortPairs(keys)
	for _, k := range keys {
		out = append(out, Link{A: k.V1, B: k.V2, Weight: p.links[k]})
	}
	return out, nil
}

type linkParser struct {
	nodes  map[NodeId]bool
	groups map[string][]NodeId
	links  map[Pair[NodeId, NodeId]]Metric
}

func (p *linkParser) group(name, members string) error {
	if strings.Contains(members, "=") {
		return fmt.Errorf("a group definition must contain exactly one '='")
	}
	if err := NameValidator(name); err != nil {
		return err
	}
	if p.nodes[NodeId(name)] {
		return fmt.Errorf("group %s shadows a node of the same name", name)
	}
	if _, ok := p.groups[name]; ok {
		return fmt.Errorf("group %s is already defined", name)
	}
	entries, err := p.entries(members)
	if err != nil {
		return err
	}
	var ids []NodeId
	for _, e := range entries {
		ids = append(ids, e...)
	}
	slices.Sort(ids)
	p.groups[name] = slices.Compact(ids)
	return nil
}

func (p *linkParser) connect(line string) error {
	list, costStr, hasCost := strings.Cut(line, ":")
	cost := Metric(1)
	if hasCost {
		c, err := strconv.ParseUint(strings.TrimSpace(costStr), 10, 32)
		if err != nil || c == 0 {
			return fmt.Errorf("cost %q must be a positive integer", strings.TrimSpace(costStr))
		}
		cost = Metric(c)
	}
	entries, err := p.entries(list)
	if err != nil {
		return err
	}
	if len(entries) < 2 {
		return fmt.Errorf("a link declaration needs at least two entries")
	}
	added := 0
	for i, from := range entries {
		for _, to := range entries[i+1:] {
			for _, a := range from {
				for _, b := range to {
					if a == b {
						continue
					}
					k := MakeSortedPair(a, b)
					if w, ok := p.links[k]; ok && w != cost {
						return fmt.Errorf("link %s-%s declared with costs %d and %d", k.V1, k.V2, w, cost)
					}
					p.links[k] = cost
					added++
				}
			}
		}
	}
	if added == 0 {
		return fmt.Errorf("declares no links")
	}
	return nil
}

// entries resolves a comma separated list, each entry becoming the node ids it stands for
func (p *linkParser) entries(list string) ([][]NodeId, error) {
	var out [][]NodeId
	for _, field := range strings.Split(list, ",") {
		sym := strings.TrimSpace(field)
		switch {
		case sym == "":
			continue
		case p.nodes[NodeId(sym)]:
			out = append(out, []NodeId{NodeId(sym)})
		default:
			members, ok := p.groups[sym]
			if !ok {
				return nil, fmt.Errorf("%s is not a node or a previously defined group", sym)
			}
			out = append(out, members)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("the node/group list must not be empty")
	}
	return out, nil
}

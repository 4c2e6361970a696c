// File: internal/topology/topology.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Topology is an immutable, ordered snapshot of the machine's NUMA
// nodes and the logical CPUs each one owns, discovered once at startup
// and shared read-only by the acceptor and by cmd/gatewayd, which maps
// worker-pool indices to nodes from it, so both agree on what "node N"
// means. The buffer manager does not consult it.
//
// Grounded on the teacher's NUMA discovery concern (pool/numa_linux.go,
// internal/concurrency's libnuma-based node/CPU queries) but widened
// from "how many nodes exist" to a full node->CPU-list snapshot, from
// which the acceptor picks the CPU it pins its accept goroutine to.

package topology

import "runtime"

// Node describes one NUMA node and the logical CPUs it owns.
type Node struct {
	ID   int
	CPUs []int
}

// Snapshot is the immutable, ordered view of discovered nodes. Nodes
// are ordered by ID ascending.
type Snapshot struct {
	Nodes []Node
}

// NodeCount returns the number of NUMA nodes in the snapshot.
func (s Snapshot) NodeCount() int { return len(s.Nodes) }

// CPUCount returns the total number of logical CPUs across all nodes.
func (s Snapshot) CPUCount() int {
	n := 0
	for _, node := range s.Nodes {
		n += len(node.CPUs)
	}
	return n
}

// NodeForCPU returns the NUMA node ID owning the given logical CPU, or
// -1 if the CPU is not present in the snapshot.
func (s Snapshot) NodeForCPU(cpu int) int {
	for _, node := range s.Nodes {
		for _, c := range node.CPUs {
			if c == cpu {
				return node.ID
			}
		}
	}
	return -1
}

// discoverSingleNode is the degenerate fallback snapshot used when a
// platform-specific discover() cannot find real NUMA topology: one node
// owning every logical CPU the runtime reports.
func discoverSingleNode() Snapshot {
	n := runtime.NumCPU()
	cpus := make([]int, n)
	for i := range cpus {
		cpus[i] = i
	}
	return Snapshot{Nodes: []Node{{ID: 0, CPUs: cpus}}}
}

var discovered Snapshot

func init() {
	discovered = discover()
}

// Discover returns the process-wide topology snapshot, computed once
// at package init.
func Discover() Snapshot {
	return discovered
}

//go:build linux
// +build linux

// File: internal/topology/topology_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux NUMA topology discovery via libnuma, mirroring the cgo approach
// the teacher uses for allocation (pool/numa_linux.go) but walking
// nodes to build a full node->CPU map instead of just counting nodes.

package topology

/*
#cgo LDFLAGS: -lnuma
#include <numa.h>
#include <stdlib.h>

int go_numa_available() { return numa_available(); }
int go_numa_max_node() { return numa_max_node(); }
int go_numa_num_possible_cpus() { return numa_num_possible_cpus(); }
int go_numa_node_of_cpu(int cpu) { return numa_node_of_cpu(cpu); }
*/
import "C"

func discover() Snapshot {
	if C.go_numa_available() == -1 {
		return discoverSingleNode()
	}
	maxNode := int(C.go_numa_max_node())
	numCPUs := int(C.go_numa_num_possible_cpus())
	if maxNode < 0 || numCPUs <= 0 {
		return discoverSingleNode()
	}

	byNode := make(map[int][]int, maxNode+1)
	for cpu := 0; cpu < numCPUs; cpu++ {
		node := int(C.go_numa_node_of_cpu(C.int(cpu)))
		if node < 0 {
			continue
		}
		byNode[node] = append(byNode[node], cpu)
	}
	if len(byNode) == 0 {
		return discoverSingleNode()
	}

	nodes := make([]Node, 0, len(byNode))
	for id := 0; id <= maxNode; id++ {
		cpus, ok := byNode[id]
		if !ok {
			continue
		}
		nodes = append(nodes, Node{ID: id, CPUs: cpus})
	}
	return Snapshot{Nodes: nodes}
}

package netio

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/kestrelgw/kestrel/internal/concurrency"
	"github.com/kestrelgw/kestrel/internal/topology"
)

func twoNodeSnapshot() topology.Snapshot {
	return topology.Snapshot{Nodes: []topology.Node{
		{ID: 0, CPUs: []int{0, 1}},
		{ID: 1, CPUs: []int{2, 3}},
	}}
}

func TestAcceptorServesConnectionsThroughPool(t *testing.T) {
	pool := concurrency.NewPool(2, nil)
	defer pool.Close()

	log := hclog.NewNullLogger()
	acc, err := Listen("127.0.0.1:0", pool, log)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer acc.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = acc.Serve(func(conn net.Conn, node int) {
			conn.Close()
		})
	}()

	conn, err := net.DialTimeout("tcp", acc.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	conn.Close()

	acc.Close()
	wg.Wait()
}

func TestAcceptorPickNodeRoundRobins(t *testing.T) {
	pool := concurrency.NewPool(1, nil)
	defer pool.Close()
	acc := &Acceptor{snap: twoNodeSnapshot()}
	first := acc.pickNode()
	second := acc.pickNode()
	if first == second && len(acc.snap.Nodes) > 1 {
		t.Fatalf("expected round-robin across nodes, got %d then %d", first, second)
	}
}

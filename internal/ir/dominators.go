package ir

// Dominators is the result of running dominator-tree construction over a
// Body's CFG, keyed by reverse-postorder rather than raw block id so the
// fixed-point loop converges in one pass over well-behaved (reducible)
// graphs (spec.md §4.D: Cooper-Harvey-Kennedy "A Simple, Fast Dominance
// Algorithm").
type Dominators struct {
	idom  []BasicBlockId // immediate dominator per block, idom[Start] == Start
	rpo   []BasicBlockId
	order map[BasicBlockId]int // position of each block in rpo
}

// BuildDominators computes the dominator tree of b starting from
// StartBlock.
func BuildDominators(b *Body) *Dominators {
	preds := b.Predecessors()
	rpo := reversePostorder(b, StartBlock)

	order := make(map[BasicBlockId]int, len(rpo))
	for i, blk := range rpo {
		order[blk] = i
	}

	idom := make([]BasicBlockId, len(b.Blocks))
	const undefined = BasicBlockId(-1)
	for i := range idom {
		idom[i] = undefined
	}
	idom[StartBlock] = StartBlock

	changed := true
	for changed {
		changed = false
		for _, node := range rpo {
			if node == StartBlock {
				continue
			}
			var newIdom BasicBlockId = undefined
			for _, p := range preds[node] {
				if idom[p] == undefined {
					continue
				}
				if newIdom == undefined {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, order, newIdom, p)
			}
			if idom[node] != newIdom {
				idom[node] = newIdom
				changed = true
			}
		}
	}

	return &Dominators{idom: idom, rpo: rpo, order: order}
}

func intersect(idom []BasicBlockId, order map[BasicBlockId]int, a, b BasicBlockId) BasicBlockId {
	for a != b {
		for order[a] > order[b] {
			a = idom[a]
		}
		for order[b] > order[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(b *Body, start BasicBlockId) []BasicBlockId {
	visited := make([]bool, len(b.Blocks))
	var post []BasicBlockId

	var visit func(id BasicBlockId)
	visit = func(id BasicBlockId) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, succ := range b.Blocks[id].Terminator.Successors() {
			visit(succ)
		}
		post = append(post, id)
	}
	visit(start)

	rpo := make([]BasicBlockId, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}
	return rpo
}

// ImmediateDominator returns the immediate dominator of block.
func (d *Dominators) ImmediateDominator(block BasicBlockId) BasicBlockId {
	return d.idom[block]
}

// Dominates reports whether a dominates b (every path from the start
// block to b passes through a). A block always dominates itself.
func (d *Dominators) Dominates(a, b BasicBlockId) bool {
	for {
		if a == b {
			return true
		}
		if b == StartBlock {
			return a == StartBlock
		}
		next := d.idom[b]
		if next == b {
			return a == b
		}
		b = next
	}
}

// ReversePostorder returns the block ordering the dominator computation
// used; callers that need a traversal order consistent with dominance
// (e.g. codegen's block emission order) reuse it rather than recomputing.
func (d *Dominators) ReversePostorder() []BasicBlockId {
	return d.rpo
}

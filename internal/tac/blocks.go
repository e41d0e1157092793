package tac

// A basic block is a maximal run of ops with no jumps in or out of the middle.
// Blocks start at anchors and after control transfers; they end before anchors
// and after jumps and returns.
type block struct {
	start int // index of the first op, inclusive
	end   int // index past the last op
}

func splitBlocks(ops []Op) []block {
	blocks := []block{}
	start := 0
	for i, op := range ops {
		switch op.(type) {
		case Anchor:
			if i > start {
				blocks = append(blocks, block{start: start, end: i})
			}
			start = i
		case Jump, JumpUnless, JumpIf, Return:
			blocks = append(blocks, block{start: start, end: i + 1})
			start = i + 1
		}
	}
	if start < len(ops) {
		blocks = append(blocks, block{start: start, end: len(ops)})
	}
	return blocks
}

package scanner

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// nextRange returns the next sub-range starting at cursor, capped at toBlock.
func nextRange(cursor, toBlock, batchSize uint64) BlockRange {
	if batchSize == 0 {
		batchSize = 1
	}
	end := cursor + batchSize - 1
	if end < cursor || end > toBlock {
		end = toBlock
	}
	return BlockRange{From: cursor, To: end}
}

// halve shrinks a batch size, never going below floor.
func halve(batchSize, floor uint64) uint64 {
	if floor == 0 {
		floor = 1
	}
	batchSize /= 2
	if batchSize < floor {
		return floor
	}
	return batchSize
}

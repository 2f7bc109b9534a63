package scanner

import "time"

// progressTracker derives percent-done, throughput, and ETA for a scan.
// now is injectable so tests can use a fixed clock.
type progressTracker struct {
	fromBlock uint64
	toBlock   uint64
	start     time.Time
	now       func() time.Time
}

func newProgressTracker(fromBlock, toBlock uint64, now func() time.Time) *progressTracker {
	if now == nil {
		now = time.Now
	}
	return &progressTracker{
		fromBlock: fromBlock,
		toBlock:   toBlock,
		start:     now(),
		now:       now,
	}
}

// report returns progress through the given block (inclusive).
func (p *progressTracker) report(processedThrough uint64) (percent, blocksPerSec float64, eta time.Duration) {
	total := p.toBlock - p.fromBlock + 1
	processed := processedThrough - p.fromBlock + 1
	if processed > total {
		processed = total
	}
	percent = float64(processed) / float64(total) * 100

	elapsed := p.now().Sub(p.start).Seconds()
	if elapsed <= 0 {
		return percent, 0, 0
	}
	blocksPerSec = float64(processed) / elapsed

	remaining := total - processed
	if blocksPerSec > 0 {
		eta = time.Duration(float64(remaining) / blocksPerSec * float64(time.Second))
	}
	return percent, blocksPerSec, eta
}

package strategy

import (
	"strconv"

	"github.com/klyr/tidylist/internal/cache"
)

// Block splits a file into fixed size line blocks and only reprocesses the
// blocks whose hash changed, unless enough of the file changed to make a full
// pass worthwhile.
type Block struct {
	Size      int
	Threshold int

	cache     *cache.Cache
	processor Processor
}

func NewBlock(c *cache.Cache, p Processor, size, threshold int) *Block {
	if size <= 0 {
		size = DefaultBlockSize
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Block{Size: size, Threshold: threshold, cache: c, processor: p}
}

func (b *Block) Name() string {
	return NameBlock
}

func (b *Block) Apply(key string, lines []string, force bool) Result {
	chunks := Chunk(lines, b.Size)
	entry, ok := b.cache.Get(key)
	cached := ok && len(entry.Blocks) > 0

	var changed []int
	if cached && !force {
		for i, hash := range BlockHashes(chunks) {
			if entry.Blocks[strconv.Itoa(i)] != hash {
				changed = append(changed, i)
			}
		}
		// a block count change always touches the tail
		last := len(chunks) - 1
		if len(entry.Blocks) != len(chunks) && last >= 0 && (len(changed) == 0 || changed[len(changed)-1] != last) {
			changed = append(changed, last)
		}
	}
	lastChanged := len(changed) > 0 && changed[len(changed)-1] == len(chunks)-1

	mode := DecideMode(force, cached, len(changed), b.Threshold, lastChanged)
	res := Result{Mode: mode, Blocks: len(chunks)}

	switch mode {
	case ModeSkip:
		return res
	case ModeFull:
		res.Output = b.processor.Process(lines)
		res.BlocksChanged = len(chunks)
	case ModePartial:
		res.Output = b.processChanged(chunks, changed)
		res.BlocksChanged = len(changed)
	}

	res.Changed = !equalLines(lines, res.Output)
	res.Entry = b.entryFor(res.Output)
	return res
}

func (b *Block) processChanged(chunks [][]string, changed []int) []string {
	dirty := make(map[int]bool, len(changed))
	for _, i := range changed {
		dirty[i] = true
	}

	var out []string
	for i, chunk := range chunks {
		if dirty[i] {
			out = append(out, b.processor.Process(chunk)...)
			continue
		}
		out = append(out, chunk...)
	}
	return out
}

// entryFor hashes output the way the next run will chunk it.
func (b *Block) entryFor(output []string) cache.Entry {
	hashes := BlockHashes(Chunk(output, b.Size))
	blocks := make(map[string]string, len(hashes))
	for i, h := range hashes {
		blocks[strconv.Itoa(i)] = h
	}
	return cache.Entry{FileHash: cache.HashLines(output), Blocks: blocks}
}

func Chunk(lines []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBlockSize
	}
	chunks := make([][]string, 0, (len(lines)+size-1)/size)
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, lines[start:end])
	}
	return chunks
}

func BlockHashes(chunks [][]string) []string {
	hashes := make([]string, len(chunks))
	for i, chunk := range chunks {
		hashes[i] = cache.HashLines(chunk)
	}
	return hashes
}

package randomizer

import "fmt"

// RandomizeRange XORs src with the mask of the page and writes the result to
// dst. offsetInPage is the position of src[0] in the page layout of data
// followed by OOB. src and dst may be the same slice.
//
// If the randomizer is not randomized or the block of the page is skipped,
// NotRandomized is returned and dst is not written; the caller uses src
// unchanged. If the range covers the first OOB byte, the bad block marker,
// it is copied from src to dst unaltered.
//
// It panics if src is empty or dst is shorter than src.
func (r *Randomizer) RandomizeRange(page uint32, src, dst []byte, offsetInPage uint32) Result {
	if len(src) == 0 {
		panic("randomizer: empty range")
	}
	if len(dst) < len(src) {
		panic(fmt.Sprintf("randomizer: destination length %d shorter than source length %d", len(dst), len(src)))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.pageRandomized(page) {
		return Result{Status: NotRandomized}
	}

	r.xorRange(page, src, dst, offsetInPage)
	return Result{Status: Randomized, Length: len(src)}
}

// RandomizePage randomizes the data area and the OOB area of a page. The
// data area covers the page size, the OOB area the configured OOB size. A
// nil source or destination skips the respective area. The bad block
// marker in the first OOB byte is always kept.
//
// The return value follows RandomizeRange; Length is the total number of
// bytes processed.
func (r *Randomizer) RandomizePage(page uint32, dataSrc, oobSrc, dataDst, oobDst []byte) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.pageRandomized(page) {
		return Result{Status: NotRandomized}
	}

	var length int
	pageSize := r.geometry.PageSize

	if dataSrc != nil && dataDst != nil {
		r.xorRange(page, dataSrc[:pageSize], dataDst[:pageSize], 0)
		length += int(pageSize)
	}

	if oobSrc != nil && oobDst != nil {
		oobSize := r.geometry.OOBSize
		marker := oobSrc[0]
		r.xorRange(page, oobSrc[:oobSize], oobDst[:oobSize], pageSize)
		oobDst[0] = marker
		length += int(oobSize)
	}

	return Result{Status: Randomized, Length: length}
}

// pageRandomized returns whether the page has to be randomized. The read
// lock has to be held.
func (r *Randomizer) pageRandomized(page uint32) bool {
	if !r.randomized {
		return false
	}
	block := page >> r.blockShift
	return !r.SkipsBlock(block)
}

// xorRange masks src into dst starting at the ring position of the page,
// wrapping around at the end of the mask. The read lock has to be held.
func (r *Randomizer) xorRange(page uint32, src, dst []byte, offsetInPage uint32) {
	length := uint32(len(src))
	pageSize := r.geometry.PageSize

	// the bad block marker is the first byte after the page data
	keepMarker := offsetInPage <= pageSize && pageSize < offsetInPage+length
	var marker byte
	if keepMarker {
		marker = src[pageSize-offsetInPage]
	}

	pos := r.pageRingOffset(page) + offsetInPage
	for i := range src {
		dst[i] = src[i] ^ r.mask[pos&r.ringMask]
		pos++
	}

	if keepMarker {
		dst[pageSize-offsetInPage] = marker
	}
}

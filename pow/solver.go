package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/nostrmarket/agora/core"
)

// DefaultMaxNonce bounds the scan when the solver is zero-configured.
const DefaultMaxNonce = 1 << 32

// nonceField is always excluded from the hashed preimage.
const nonceField = "nonce"

// Solver finds admission nonces. The zero value solves at difficulty 0;
// callers normally construct one from configuration.
type Solver struct {
	Difficulty int    // required count of leading '0' hex digits
	MaxNonce   uint64 // scan ceiling; 0 means DefaultMaxNonce
	Workers    int    // 0 means GOMAXPROCS
}

// Solve finds the smallest non-negative nonce such that the hex SHA-256 of
// canonicalize(record, {"nonce"}) ++ decimal(nonce) starts with Difficulty
// '0' characters. The scan is split across workers by residue class; each
// worker abandons nonces at or above the best candidate found so far, so
// the result always equals what a sequential ascending scan would return.
// The computation is CPU-bound and has no side effects; run it off any
// interaction-handling path.
func (s Solver) Solve(ctx context.Context, record any) (core.ProofOfWork, error) {
	base, err := Canonicalize(record, nonceField)
	if err != nil {
		return core.ProofOfWork{}, fmt.Errorf("canonicalizing record: %w", err)
	}

	maxNonce := s.MaxNonce
	if maxNonce == 0 {
		maxNonce = DefaultMaxNonce
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		best atomic.Uint64
		wg   sync.WaitGroup
	)
	best.Store(math.MaxUint64)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start uint64) {
			defer wg.Done()

			buf := make([]byte, len(base), len(base)+20)
			copy(buf, base)

			var iter uint
			for n := start; n <= maxNonce; n += uint64(workers) {
				if n >= best.Load() {
					return
				}
				if iter++; iter&0x0fff == 0 {
					select {
					case <-ctx.Done():
						return
					default:
					}
				}

				sum := sha256.Sum256(strconv.AppendUint(buf[:len(base)], n, 10))
				if !leadingZeroNibbles(sum, s.Difficulty) {
					continue
				}

				// Keep the smallest satisfying nonce across workers.
				for {
					cur := best.Load()
					if n >= cur || best.CompareAndSwap(cur, n) {
						break
					}
				}
				return
			}
		}(uint64(w))
	}
	wg.Wait()

	nonce := best.Load()
	if nonce == math.MaxUint64 {
		if err := ctx.Err(); err != nil {
			return core.ProofOfWork{}, err
		}
		return core.ProofOfWork{}, core.ErrPowExhausted
	}

	sum := sha256.Sum256(append(base, []byte(strconv.FormatUint(nonce, 10))...))
	return core.ProofOfWork{Nonce: nonce, Hash: hex.EncodeToString(sum[:])}, nil
}

// Verify reports whether a proof matches a record at the solver's
// difficulty. Mirrors what the remote verifier checks.
func (s Solver) Verify(record any, proof core.ProofOfWork) (bool, error) {
	base, err := Canonicalize(record, nonceField)
	if err != nil {
		return false, err
	}

	sum := sha256.Sum256(append(base, []byte(strconv.FormatUint(proof.Nonce, 10))...))
	return hex.EncodeToString(sum[:]) == proof.Hash && leadingZeroNibbles(sum, s.Difficulty), nil
}

// leadingZeroNibbles reports whether the hex form of sum starts with n '0'
// characters, without encoding the digest.
func leadingZeroNibbles(sum [sha256.Size]byte, n int) bool {
	if n > sha256.Size*2 {
		return false
	}
	for i := 0; i < n/2; i++ {
		if sum[i] != 0 {
			return false
		}
	}
	if n%2 == 1 && sum[n/2]>>4 != 0 {
		return false
	}
	return true
}

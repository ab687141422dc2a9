// Package hybrid distributes a modular reconstruction over a set of
// participants that communicate only through a transport.Communicator, with
// each participant fanning its share of residue computations over local
// goroutines.
//
// Rank 0 coordinates: it splits the required number of residues between the
// workers, seeds the reconstruction with one residue of its own and folds
// worker results in whatever order they arrive. Every fold goes through a
// single mutex-guarded delivery function, so the crt.Builder is never touched
// concurrently. Workers compute their assigned residues on an errgroup
// limited to the configured thread count and send each one as soon as it is
// ready.
//
// The protocol has no timeouts and no bad-prime detection. A participant
// that never answers stalls the run unless the caller's context carries a
// deadline, and a residue computed at an unlucky prime silently corrupts the
// result.
package hybrid

package happyeyeballs

import "math/rand"

// candidate is one queued IP awaiting a transport attempt.
type candidate struct {
	ip     string
	family string // "v4" or "v6"
}

// shuffle returns a random permutation of ips tagged with family, per the
// interleave rule's "after randomly shuffling each batch as it arrives".
func shuffle(ips []string, family string) []candidate {
	out := make([]candidate, len(ips))
	for i, ip := range ips {
		out[i] = candidate{ip: ip, family: family}
	}
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// mergeBatch folds a newly arrived (already-shuffled) batch into the
// existing, not-yet-dequeued queue by alternating between the queue's
// current remainder ("already queued", arrived earlier) and the new batch,
// preserving arrival order within each stream. The first batch to ever
// arrive has no "already queued" remainder, so it becomes the queue
// verbatim (in its shuffled order); the second arriving batch alternates
// with whatever of the first batch hasn't been dequeued for an attempt
// yet, giving the alternating-families order RFC 8305 expects when both
// answers are available before the queue empties.
func mergeBatch(already []candidate, batch []candidate) []candidate {
	merged := make([]candidate, 0, len(already)+len(batch))
	i, j := 0, 0
	for i < len(already) || j < len(batch) {
		if i < len(already) {
			merged = append(merged, already[i])
			i++
		}
		if j < len(batch) {
			merged = append(merged, batch[j])
			j++
		}
	}
	return merged
}

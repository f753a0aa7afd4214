package experiments

// NextSubset advances subset, an ascending selection of indexes below n, to
// the next one in lexicographic order. It returns false when subset was the last.
func NextSubset(subset []int, n int) bool {
	k := len(subset)
	for i := k - 1; i >= 0; i-- {
		// the highest value position i can hold leaves room for the ones after it
		if subset[i] < n-k+i {
			subset[i]++
			for j := i + 1; j < k; j++ {
				subset[j] = subset[j-1] + 1
			}
			return true
		}
	}
	return false
}

// NextPermutation rearranges p into the next lexicographic permutation. It
// returns false when p was the last one.
func NextPermutation(p []int) bool {
	// pivot is the element before the longest non-increasing suffix
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// Seatings lists the roster indexes seated in each game. With all set it
// yields every ordering of every k-subset of n roster entries, otherwise a
// single game with the first k entries in roster order.
func Seatings(n, k int, all bool) [][]int {
	if k <= 0 || k > n {
		return nil
	}
	subset := make([]int, k)
	for i := range subset {
		subset[i] = i
	}
	if !all {
		return [][]int{subset}
	}

	var seatings [][]int
	for {
		perm := append([]int(nil), subset...)
		for {
			seatings = append(seatings, append([]int(nil), perm...))
			if !NextPermutation(perm) {
				break
			}
		}
		if !NextSubset(subset, n) {
			break
		}
	}
	return seatings
}

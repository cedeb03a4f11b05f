package service

// pointsEarned converts a taxable total into loyalty points. Integer
// division floors the result, so a sale never awards fractional points.
func pointsEarned(taxableCents, earnRateBasisPoints int64) int64 {
	if taxableCents <= 0 || earnRateBasisPoints <= 0 {
		return 0
	}
	return taxableCents * earnRateBasisPoints / 10000
}

package domain

// SampleStocks returns the GBCE sample listing: TEA, POP, ALE, GIN and JOE.
func SampleStocks() []Stock {
	return []Stock{
		{Symbol: "TEA", Kind: KindCommon, LastDividend: 0, ParValue: 100},
		{Symbol: "POP", Kind: KindCommon, LastDividend: 8, ParValue: 100},
		{Symbol: "ALE", Kind: KindCommon, LastDividend: 23, ParValue: 60},
		{Symbol: "GIN", Kind: KindPreferred, LastDividend: 8, FixedDividendPercent: 2, ParValue: 100},
		{Symbol: "JOE", Kind: KindCommon, LastDividend: 13, ParValue: 250},
	}
}

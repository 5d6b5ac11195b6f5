package metrics

// HistogramBuckets covers the full latency range of this service in
// milliseconds: webhook handling is usually sub-second, admin listing and
// cold DB connections can take multiple seconds.
var HistogramBuckets = []float64{
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000,
	3000, 5000, 7500, 10000, 15000,
	30000, 60000,
}

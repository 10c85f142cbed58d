package jobstore

var (
	BuildQuery = buildQuery
	ScanJob    = scanJob
)

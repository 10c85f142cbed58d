// factoryflow quote-service
//
// Prices fabrication jobs and keeps a history of quotes:
//   - serve    : HTTP (gin) and gRPC APIs, connectivity scheduler
//   - quote    : price a job from the command line
//   - setup-db : create the jobs table and its access policies
//   - prices   : show, set or reset material prices
//
// Jobs go to the PostgreSQL jobs table; when it is unreachable or rejects the
// write they are kept in a local bbolt file (demo mode).
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package benchmark provides performance benchmarks for TouchMap.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Render only, with longer runs:
//
//	go test -bench=BenchmarkRender -benchmem -benchtime=5s ./internal/tests/benchmark/...
//
// Compare results:
//
//	go test -bench=. -benchmem -count=5 ./internal/tests/benchmark/... | tee new.txt
//	benchstat old.txt new.txt
package benchmark

// Package testutil provides testing utilities for DRUM.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic RNG for workloads, a dispatcher that records
// every callback, and a reference model that predicts those callbacks.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	urls := rng.URLs(1000, 200) // 1000 URLs over 200 distinct hosts/paths
//	hot := rng.Zipf(100, 1.2)   // skewed key choice
//
// # Recording and Predicting Callbacks
//
//	rec := testutil.NewRecorder[string, string, int]()
//	model := testutil.NewModel[string, string](appendFn, removeFn)
//	want := model.Apply("check", "k", "")
//	// ... run DRUM with rec as its dispatcher, synchronize ...
//	got := rec.Events()
package testutil

// Package health provides liveness, readiness and version endpoints for
// long-running flowc processes.
//
// `flowc watch` serves them next to the metrics endpoint when
// watch.metrics_addr is set. Readiness runs every registered check
// concurrently, each under its own timeout:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("store", store.Ping)
//	health.Mount(mux, checker, version, commit, buildTime)
package health

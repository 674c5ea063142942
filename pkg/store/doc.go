// Package store records compilations in a SQLite database so that earlier
// graphs can be listed, inspected and pruned with `flowc history`.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite, pure Go, the
// default) and "sqlite3" (github.com/mattn/go-sqlite3, cgo). Each artifact
// holds the compact graph JSON, its shape and, for failed compilations, the
// diagnostics. When the source lives in a git repository the artifact also
// records the HEAD commit (see Revision).
//
// Retention is enforced by Prune, either directly or on a cron schedule
// through a Scheduler:
//
//	s, err := store.Open(&cfg.Store, store.WithObserver(collector))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	sched := store.NewScheduler(s, cfg.Store.Retention)
//	if err := sched.Start(ctx); err != nil {
//	    return err
//	}
package store

// Package watch reports changes to flow source files.
//
// fsnotify events are filtered by extension and collapsed by a Debouncer, so
// an editor that writes a file several times on save produces one batch:
//
//	w, err := watch.New(watch.Config{Paths: []string{"flows"}}, logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	return w.Watch(ctx, func(changed []string) {
//	    recompile(changed)
//	})
package watch

package commands

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"escomp/internal/driver"
	"escomp/internal/watch"
)

// Watch implements `escomp watch <ast.json> [flags]`: recompile on change
// and serve pass/fail frames over a websocket (SPEC_FULL.md §4.11).
func Watch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	backendFlag := fs.String("backend", "ir-text", "output backend: ir-text, x86-asm, vm-bytecode, eo-obj, wasm")
	outFlag := fs.String("o", "a.out", "output file path")
	addrFlag := fs.String("addr", "127.0.0.1:7700", "address to serve the websocket on")
	pollFlag := fs.Duration("poll", 500*time.Millisecond, "how often to check the AST file for changes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: escomp watch <ast.json> [flags]")
	}
	astPath := fs.Arg(0)

	backend, err := driver.ParseBackend(*backendFlag)
	if err != nil {
		return err
	}

	srv := watch.New(astPath, driver.Options{Backend: backend, OutputPath: *outFlag}, *pollFlag)

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.Handler)
	httpSrv := &http.Server{Addr: *addrFlag, Handler: mux}

	stop := make(chan struct{})
	go srv.Run(stop)

	go func() {
		fmt.Printf("escomp watch: serving on ws://%s, recompiling %s on change\n", *addrFlag, astPath)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "escomp watch: %v\n", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	close(stop)
	return httpSrv.Close()
}

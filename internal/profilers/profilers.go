// Package profilers sets up CPU, heap and HTTP profiling for the command line tools.
//
// Linking it installs the -prof, -cpu_profile and -mem_profile flags.
package profilers

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagHTTPPort   = flag.Int("prof", -1, "If set, serves net/http/pprof at localhost on the given port, and keeps the program alive at the end.")
	flagCPUProfile = flag.String("cpu_profile", "", "Write a CPU profile to `file`.")
	flagMemProfile = flag.String("mem_profile", "", "Write a heap profile to `file` at the end of the program.")
)

// Profilers started by Setup.
type Profilers struct {
	ctx      context.Context
	cpuFile  *os.File
	httpAddr string
}

// Setup starts the profilers configured by the flags. Call OnQuit, typically deferred, before
// the program exits.
func Setup(ctx context.Context) (*Profilers, error) {
	p := &Profilers{ctx: ctx}
	if *flagCPUProfile != "" {
		f, err := os.Create(*flagCPUProfile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create CPU profile file %q", *flagCPUProfile)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "failed to start CPU profile in %q", *flagCPUProfile)
		}
		p.cpuFile = f
	}
	if *flagHTTPPort >= 0 {
		p.httpAddr = fmt.Sprintf("localhost:%d", *flagHTTPPort)
		fmt.Printf("Serving profiles on http://%s/debug/pprof\n", p.httpAddr)
		fmt.Printf("- Example: $ go tool pprof http://%s/debug/pprof/heap\n", p.httpAddr)
		go func() {
			klog.Exitf("Profiler server failed: %v", http.ListenAndServe(p.httpAddr, nil))
		}()
	}
	return p, nil
}

// OnQuit stops the CPU profile, writes the heap profile and, if the HTTP profiler is running,
// blocks until ctx is cancelled so the profiles can still be read.
func (p *Profilers) OnQuit() {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			klog.Errorf("Failed to close CPU profile: %v", err)
		}
		p.cpuFile = nil
	}
	if *flagMemProfile != "" {
		if err := writeHeapProfile(*flagMemProfile); err != nil {
			klog.Errorf("%+v", err)
		}
	}
	if p.httpAddr == "" || p.ctx.Err() != nil {
		return
	}
	runtime.GC()
	fmt.Printf("- Finished: profiler kept alive at http://%s/debug/pprof, interrupt (Ctrl+C) to exit\n", p.httpAddr)
	<-p.ctx.Done()
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create heap profile file %q", path)
	}
	defer func() { _ = f.Close() }()
	runtime.GC()
	return errors.Wrapf(pprof.WriteHeapProfile(f), "failed to write heap profile to %q", path)
}

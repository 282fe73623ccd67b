// Package statsview serves live Go runtime charts (heap, goroutines, GC)
// while a script runs.
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// DefaultAddress is where the charts are served unless overridden.
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"

// Launch starts the stats server in a new goroutine and reports its URL.
func Launch(output io.Writer, addr string) {
	if addr == "" {
		addr = DefaultAddress
	}

	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(output, "stats server available at http://%s%s\n", addr, url)
}

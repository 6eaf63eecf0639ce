package utils

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.MaxDepth = 4
}

func Dump(a ...interface{}) {
	fmt.Println(spewConfig.Sdump(a...))
}

func FDump(w io.Writer, a ...interface{}) {
	spewConfig.Fdump(w, a...)
}

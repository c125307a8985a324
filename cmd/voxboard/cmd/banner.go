package cmd

import (
	"fmt"
)

const banner = `
 __      __        ____                      _
 \ \    / /       |  _ \                    | |
  \ \  / /____  __| |_) | ___   __ _ _ __ __| |
   \ \/ / _ \ \/ /|  _ < / _ \ / _` + "`" + ` | '__/ _` + "`" + ` |
    \  / (_) >  < | |_) | (_) | (_| | | | (_| |
     \/ \___/_/\_\|____/ \___/ \__,_|_|  \__,_|

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Voice-Command Dashboard Backend - Version %s\x1b[0m\n\n", Version)
}

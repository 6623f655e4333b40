// Command mage-wrapper runs mage.exe with the forwarded arguments escaped into a
// single command line and exits with its exit code.
package main

import (
	"os"

	"github.com/deixis/toolwrap/internal/launcher"
)

func main() {
	os.Exit(launcher.Execute(launcher.Mage))
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	persistlog "github.com/Da-Krause/settlers-remake/internal/persistence/log"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

// listCmd prints the rotated decision and audit log files under the data
// directory.
func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	for _, l := range []struct{ dir, prefix string }{
		{"decisions", "placements"},
		{"audit", "validation"},
	} {
		files, err := persistlog.Files(filepath.Join(*dataDir, l.dir), l.prefix)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(1)
		}
		for _, f := range files {
			fmt.Println(f)
		}
	}
}

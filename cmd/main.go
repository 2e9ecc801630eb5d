package main

import (
	"os"

	"github.com/doraboateng/archive-service/cmd/archive"
)

func main() {
	if err := archive.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if log != nil {
			log.Error(err)
		}
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"go-snortalert/pkg/cmd"
	"go-snortalert/pkg/driver"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		if errors.Is(err, driver.ErrSourceUnreadable) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

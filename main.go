package main

import (
	"os"

	"github.com/yeremiapane/hotel-ops/cmd"
	"github.com/yeremiapane/hotel-ops/utils"
)

func main() {
	utils.InitLogger()

	if err := cmd.Execute(); err != nil {
		utils.ErrorLogger.Errorf("Error: %v", err)
		os.Exit(1)
	}
}

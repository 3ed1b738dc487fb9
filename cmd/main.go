// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	tm "github.com/buger/goterm"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/config"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	ClearConsole()
	DrawLogo()
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting W4B Sensor Bridge v%s", nuts.GetVersion())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		nuts.L.Errorf("[Main] Failed to initialize server: %v", err)
		os.Exit(1)
	}
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   _____                            ____       _     __",
		"  / ___/___  ____  _________  _____/ __ )_____(_)___/ /___ ____",
		"  \\__ \\/ _ \\/ __ \\/ ___/ __ \\/ ___/ __  / ___/ / __  / __ `/ _ \\",
		" ___/ /  __/ / / (__  ) /_/ / /  / /_/ / /  / / /_/ / /_/ /  __/",
		"/____/\\___/_/ /_/____/\\____/_/  /_____/_/  /_/\\__,_/\\__, /\\___/",
		"                                                   /____/",
		"................................................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}

package main

import (
	"os"

	"k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/sensorlink/cmd/sensorlinkctl/app"
)

func main() {
	ctx := server.SetupSignalContext()
	if err := app.NewCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

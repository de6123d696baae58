package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/sensorlink/cmd/sensorlink-manager/app"
)

func main() {
	app.NewApp().Run()
}

package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/sensorlink/cmd/sensorlink-simulator/app"
)

func main() {
	app.NewApp().Run()
}

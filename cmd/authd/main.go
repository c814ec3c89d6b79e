package main

import "github.com/cloudkeep/authd/app"

func main() {
	app.New(nil).Run()
}

package main

import (
	"storefront/cmd/storefront/cmd"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cmd.Execute()
}

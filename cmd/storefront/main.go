package main

import "github.com/Eshhar121/ecommerce-frontend/cmd/storefront/cmd"

func main() {
	cmd.Execute()
}

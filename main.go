package main

import (
	"log"

	"github.com/validatorlabs/kms/cmd"
	"github.com/validatorlabs/kms/provider/softsign"
)

func main() {
	if err := cmd.Execute(
		softsign.Module{},
	); err != nil {
		log.Fatal(err)
	}
}

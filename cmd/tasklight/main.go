package main

import (
	"go.uber.org/fx"

	"github.com/tasklight/tasklight-core/pkg/serverfx"
)

func main() {
	fx.New(serverfx.Module()).Run()
}

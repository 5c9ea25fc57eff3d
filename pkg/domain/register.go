package domain

import (
	"github.com/tasklight/tasklight-core/pkg/codec"
	"github.com/tasklight/tasklight-core/pkg/coerce"
)

// RegisterTypes binds every entity kind the schema may name as a return
// type. Call once at startup, before the router is built.
func RegisterTypes() {
	coerce.MustRegisterType[Task]("task", codec.JSONLoose)
	coerce.MustRegisterType[Project]("project", codec.JSONLoose)
	coerce.MustRegisterType[Account]("account", codec.JSONLoose)
}

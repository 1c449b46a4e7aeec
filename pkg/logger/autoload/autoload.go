// Package autoload initializes the global logger from the LOG_* section
// when blank-imported.
package autoload

import (
	configx "github.com/tanpawarit/omotenashi-concierge/pkg/config"
	logx "github.com/tanpawarit/omotenashi-concierge/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}

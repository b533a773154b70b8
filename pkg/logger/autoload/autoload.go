package autoload

import (
	configx "github.com/kritsada-w/collectra/pkg/config"
	logx "github.com/kritsada-w/collectra/pkg/logger"
)

func init() {
	conf := configx.MustNew[logx.Config]("LOG")
	logx.Init(*conf)
}

package logger

import "go.uber.org/zap"

// Init builds the process logger and installs it as the zap global.
// Local mode gets the human-readable development encoder.
func Init(local bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if local {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

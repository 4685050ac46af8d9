package buildcmd

import "errors"

var (
	errRunnerMissing    = errors.New("build command: pipeline runner is not configured")
	errPublisherMissing = errors.New("build command: publishing requested but no artifact publisher is configured")
)

// Package logger builds the process logger shared by the notify-service,
// sweep-worker and notifyctl entrypoints: JSON lines on stdout, tagged with
// the emitting binary's name.
package logger

import (
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

var hooks sync.Once

// New returns the logger for one process. Error events logged with .Stack()
// render pkg/errors stack traces; errors that arrive without one get a stack
// attached at log time, so sweep and handler failures are always traceable
// to their origin.
func New(service string) zerolog.Logger {
	hooks.Do(func() {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			if _, ok := err.(stackTracer); !ok {
				err = pkgerrors.WithStack(err)
			}
			return zpkgerrors.MarshalStack(err)
		}
		zerolog.ErrorMarshalFunc = func(err error) interface{} {
			if _, ok := err.(stackTracer); ok {
				return err
			}
			return pkgerrors.WithStack(err)
		}
	})

	return zerolog.New(os.Stdout).With().
		Str("service", service).
		Timestamp().
		Logger()
}

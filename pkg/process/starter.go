package process

import (
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ExecStarter starts executables detached from the caller's process group.
// The child is reaped in the background so it never lingers as a zombie.
type ExecStarter struct {
	logger zerolog.Logger
}

// NewExecStarter creates an ExecStarter.
func NewExecStarter(logger zerolog.Logger) *ExecStarter {
	return &ExecStarter{logger: logger}
}

// Start runs path with its own directory as working directory and returns
// as soon as the OS accepted the request.
func (s *ExecStarter) Start(path string) error {
	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start %s", path)
	}

	pid := cmd.Process.Pid
	go func() {
		err := cmd.Wait()
		ev := s.logger.Debug().Int("pid", pid).Str("exe", filepath.Base(path))
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("launched process exited")
	}()

	return nil
}

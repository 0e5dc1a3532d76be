package javac

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
)

// allowListedEnvVars are the system environment variables javac inherits. The rest of
// the environment is dropped so diagnostics do not depend on the caller's shell.
var allowListedEnvVars = map[string]struct{}{
	"HOME":      {},
	"PATH":      {},
	"USER":      {},
	"JAVA_HOME": {},
}

// runner starts the javac process and captures its combined output.
type runner struct {
	logger ports.Logger
}

// run executes javac and returns its combined output. A non-zero exit caused by
// compile errors is not an error; failing to start the process is.
func (r *runner) run(ctx context.Context, javac string, args []string, dir string, out io.Writer) ([]byte, error) {
	env := resolveEnvironment(os.Environ())

	executable := javac
	if !filepath.IsAbs(javac) {
		lp, err := lookPath(javac, env)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCompilerFailed.Error()), "javac", javac)
		}
		executable = lp
	}

	var buf bytes.Buffer
	log := &logWriter{logger: r.logger}
	w := io.MultiWriter(&buf, log)
	if out != nil {
		w = io.MultiWriter(&buf, log, out)
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // configured compiler
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	_ = log.Close()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCompilerFailed.Error()), "javac", executable)
		}
		if ctx.Err() != nil {
			return nil, zerr.Wrap(ctx.Err(), domain.ErrCompilerFailed.Error())
		}
		r.logger.Debug("javac exited with code " + strconv.Itoa(exitErr.ExitCode()))
	}
	return buf.Bytes(), nil
}

// logWriter forwards complete output lines to the debug log.
type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	w.logger.Debug("javac: " + strings.TrimSuffix(string(line), "\r"))
}

// resolveEnvironment keeps the allow-listed variables and pins the locale so javac
// prints diagnostics in the format parseDiagnostics expects.
func resolveEnvironment(sysEnv []string) []string {
	result := make([]string, 0, len(allowListedEnvVars)+1)
	for _, entry := range sysEnv {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			result = append(result, entry)
		}
	}
	return append(result, "LC_ALL=C")
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}

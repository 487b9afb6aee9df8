package stages_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/filesystem"
	"github.com/arthur-debert/bcforge/pkg/paths"
	"github.com/arthur-debert/bcforge/pkg/runner"
	"github.com/arthur-debert/bcforge/pkg/stages"
	"github.com/arthur-debert/bcforge/pkg/testutil"
	"github.com/arthur-debert/bcforge/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTools = stages.Tools{CMake: "cmake", Remake: "remake", CMaker: "cmaker"}

func setup(t *testing.T, fs types.FS) (*stages.Stages, *testutil.MockRunner, paths.Paths) {
	t.Helper()
	p, err := paths.New("/work", paths.Layout{})
	require.NoError(t, err)
	r := &testutil.MockRunner{}
	s := stages.New(stages.Options{FS: fs, Runner: r, Paths: p, Tools: testTools, Jobs: 3})
	return s, r, p
}

func TestConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("creates build dir and runs cmake there", func(t *testing.T) {
		fs := filesystem.NewMemory()
		s, r, p := setup(t, fs)
		r.On("Run", mock.Anything, runner.Command{
			Name: "cmake",
			Args: []string{"/work"},
			Dir:  "/work/bc_build",
		}).Return(runner.Result{}, nil).Once()

		require.NoError(t, s.Configure(ctx))
		r.AssertExpectations(t)

		info, err := fs.Stat(p.BuildDir())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("cmake failure", func(t *testing.T) {
		s, r, _ := setup(t, filesystem.NewMemory())
		r.On("Run", mock.Anything, mock.Anything).Return(runner.Result{ExitCode: 1}, stderrors.New("exit status 1"))

		err := s.Configure(ctx)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigure))
		assert.Equal(t, errors.ExitConfigure, errors.ExitCode(err))
	})

	t.Run("build dir cannot be created", func(t *testing.T) {
		s, r, _ := setup(t, filesystem.NewAferoFS(afero.NewReadOnlyFs(afero.NewMemMapFs())))

		err := s.Configure(ctx)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDirCreate))
		assert.Equal(t, errors.ExitDirCreate, errors.ExitCode(err))
		r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("writes stdout to the build log", func(t *testing.T) {
		fs := filesystem.NewMemory()
		s, r, p := setup(t, fs)
		require.NoError(t, fs.MkdirAll(p.BuildDir(), 0755))
		r.On("Run", mock.Anything, runner.Command{
			Name: "remake",
			Args: []string{"-j3", "-x", "-Oline"},
			Dir:  "/work/bc_build",
		}).Return(runner.Result{Stdout: "cc -c a.c -o a.o\n"}, nil).Once()

		require.NoError(t, s.Build(ctx))
		data, err := fs.ReadFile(p.BuildLogPath())
		require.NoError(t, err)
		assert.Equal(t, "cc -c a.c -o a.o\n", string(data))
	})

	t.Run("defaults jobs to cpu count", func(t *testing.T) {
		p, err := paths.New("/work", paths.Layout{})
		require.NoError(t, err)
		r := &testutil.MockRunner{}
		r.On("Run", mock.Anything, mock.MatchedBy(func(cmd runner.Command) bool {
			return cmd.Args[0] == fmt.Sprintf("-j%d", runtime.NumCPU())
		})).Return(runner.Result{}, nil).Once()

		s := stages.New(stages.Options{FS: filesystem.NewMemory(), Runner: r, Paths: p, Tools: testTools})
		require.NoError(t, s.Build(ctx))
		r.AssertExpectations(t)
	})

	t.Run("remake failure", func(t *testing.T) {
		s, r, _ := setup(t, filesystem.NewMemory())
		r.On("Run", mock.Anything, mock.Anything).Return(runner.Result{}, stderrors.New("exit status 2"))

		err := s.Build(ctx)
		assert.True(t, errors.IsErrorCode(err, errors.ErrBuild))
		assert.Equal(t, errors.ExitBuild, errors.ExitCode(err))
	})

	t.Run("log cannot be written", func(t *testing.T) {
		s, r, _ := setup(t, filesystem.NewAferoFS(afero.NewReadOnlyFs(afero.NewMemMapFs())))
		r.On("Run", mock.Anything, mock.Anything).Return(runner.Result{Stdout: "x"}, nil)

		err := s.Build(ctx)
		assert.True(t, errors.IsErrorCode(err, errors.ErrBuild))
	})
}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("runs cmaker on the build log", func(t *testing.T) {
		fs := filesystem.NewMemory()
		s, r, p := setup(t, fs)
		require.NoError(t, fs.MkdirAll(p.BuildDir(), 0755))
		require.NoError(t, fs.WriteFile(p.BuildLogPath(), []byte("log"), 0644))
		r.On("Run", mock.Anything, runner.Command{
			Name: "cmaker",
			Args: []string{"-w", "/work/bc_build", "-o", "/work/bc_build/cmaker.log", "-t", "/work/bc_build/remake.log"},
			Dir:  "/work/bc_build",
		}).Return(runner.Result{}, nil).Once()

		require.NoError(t, s.Extract(ctx))
		r.AssertExpectations(t)
	})

	t.Run("missing build log", func(t *testing.T) {
		s, r, _ := setup(t, filesystem.NewMemory())

		err := s.Extract(ctx)
		assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
		assert.Equal(t, errors.ExitExtract, errors.ExitCode(err))
		r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("cmaker failure", func(t *testing.T) {
		fs := filesystem.NewMemory()
		s, r, p := setup(t, fs)
		require.NoError(t, fs.WriteFile(p.BuildLogPath(), []byte("log"), 0644))
		r.On("Run", mock.Anything, mock.Anything).Return(runner.Result{}, stderrors.New("exit status 1"))

		err := s.Extract(ctx)
		assert.True(t, errors.IsErrorCode(err, errors.ErrExtract))
	})
}

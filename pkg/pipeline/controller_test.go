package pipeline_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/bcforge/pkg/checkpoint"
	"github.com/arthur-debert/bcforge/pkg/compile"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/filesystem"
	"github.com/arthur-debert/bcforge/pkg/linker"
	"github.com/arthur-debert/bcforge/pkg/metadata"
	"github.com/arthur-debert/bcforge/pkg/paths"
	"github.com/arthur-debert/bcforge/pkg/pipeline"
	"github.com/arthur-debert/bcforge/pkg/testutil"
	"github.com/arthur-debert/bcforge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockExternal struct {
	mock.Mock
}

func (m *MockExternal) Configure(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockExternal) Build(ctx context.Context) error     { return m.Called(ctx).Error(0) }
func (m *MockExternal) Extract(ctx context.Context) error   { return m.Called(ctx).Error(0) }

type MockCompiler struct {
	mock.Mock
}

func (m *MockCompiler) Run(ctx context.Context, commands []string) (compile.Report, error) {
	args := m.Called(ctx, commands)
	return args.Get(0).(compile.Report), args.Error(1)
}

type MockLinker struct {
	mock.Mock
}

func (m *MockLinker) Run(ctx context.Context, g *metadata.Graph) (linker.Result, error) {
	args := m.Called(ctx, g)
	return args.Get(0).(linker.Result), args.Error(1)
}

type harness struct {
	fs       types.FS
	paths    paths.Paths
	external *MockExternal
	compiler *MockCompiler
	linker   *MockLinker
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	p, err := paths.New("/work", paths.Layout{})
	require.NoError(t, err)
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/work", 0755))
	return &harness{
		fs:       fs,
		paths:    p,
		external: &MockExternal{},
		compiler: &MockCompiler{},
		linker:   &MockLinker{},
	}
}

func (h *harness) controller(t *testing.T) *pipeline.Controller {
	t.Helper()
	c, err := pipeline.New(pipeline.Options{
		FS:       h.fs,
		Paths:    h.paths,
		External: h.external,
		Compiler: h.compiler,
		Linker:   h.linker,
	})
	require.NoError(t, err)
	return c
}

func (h *harness) writeMetadata(t *testing.T, c *metadata.Collection) {
	t.Helper()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	require.NoError(t, h.fs.MkdirAll(h.paths.BuildDir(), 0755))
	require.NoError(t, h.fs.WriteFile(h.paths.MetadataPath(), data, 0644))
}

func (h *harness) progress(t *testing.T) checkpoint.Progress {
	t.Helper()
	data, err := h.fs.ReadFile(h.paths.ProgressPath())
	require.NoError(t, err)
	var p checkpoint.Progress
	require.NoError(t, json.Unmarshal(data, &p))
	return p
}

func (h *harness) expectExternal() {
	h.external.On("Configure", mock.Anything).Return(nil)
	h.external.On("Build", mock.Anything).Return(nil)
	h.external.On("Extract", mock.Anything).Return(nil)
}

func scenario() *metadata.Collection {
	c := testutil.LibScenario()
	c.Compile = []string{"c++ -c /src/a.cpp -o /src/a.o", "cc -c /src/b.c -o /src/b.o"}
	return c
}

func TestRun_AllStages(t *testing.T) {
	h := newHarness(t)
	h.writeMetadata(t, scenario())
	h.expectExternal()
	h.compiler.On("Run", mock.Anything, scenario().Compile).Return(compile.Report{Total: 2, Compiled: 2}, nil).Once()
	h.linker.On("Run", mock.Anything, mock.MatchedBy(func(g *metadata.Graph) bool {
		return g.Len() == 2
	})).Return(linker.Result{Total: 2, Linked: 2}, nil).Once()

	c := h.controller(t)
	require.NoError(t, c.Run(context.Background()))
	require.NoError(t, c.Close())

	assert.Equal(t, checkpoint.Progress{CMake: true, Remake: true, CMaker: true, CompileToLLVM: true, Linking: true}, h.progress(t))
	h.external.AssertExpectations(t)
	h.compiler.AssertExpectations(t)
	h.linker.AssertExpectations(t)

	t.Run("completed_pipeline_does_nothing", func(t *testing.T) {
		c := h.controller(t)
		require.NoError(t, c.Run(context.Background()))
		require.NoError(t, c.Close())

		h.external.AssertNumberOfCalls(t, "Configure", 1)
		h.external.AssertNumberOfCalls(t, "Build", 1)
		h.external.AssertNumberOfCalls(t, "Extract", 1)
		h.compiler.AssertNumberOfCalls(t, "Run", 1)
		h.linker.AssertNumberOfCalls(t, "Run", 1)
	})
}

func TestRun_ResumesAfterFailure(t *testing.T) {
	h := newHarness(t)
	h.writeMetadata(t, scenario())
	h.external.On("Configure", mock.Anything).Return(nil)
	h.external.On("Build", mock.Anything).Return(errors.New(errors.ErrBuild, "remake failed")).Once()

	c := h.controller(t)
	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ExitBuild, errors.ExitCode(err))
	require.NoError(t, c.Close())
	assert.Equal(t, checkpoint.Progress{CMake: true}, h.progress(t))

	// The build dir survives because configure completed.
	_, statErr := h.fs.Stat(h.paths.MetadataPath())
	assert.NoError(t, statErr)

	h.external.On("Build", mock.Anything).Return(nil).Once()
	h.external.On("Extract", mock.Anything).Return(nil).Once()
	h.compiler.On("Run", mock.Anything, mock.Anything).Return(compile.Report{Total: 2, Compiled: 2}, nil).Once()
	h.linker.On("Run", mock.Anything, mock.Anything).Return(linker.Result{Total: 2, Linked: 2}, nil).Once()

	c = h.controller(t)
	require.NoError(t, c.Run(context.Background()))
	require.NoError(t, c.Close())

	h.external.AssertNumberOfCalls(t, "Configure", 1)
	h.external.AssertNumberOfCalls(t, "Build", 2)
	h.external.AssertNumberOfCalls(t, "Extract", 1)
	assert.True(t, h.progress(t).Linking)
}

func TestRun_ConfigureFailureRemovesBuildDir(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.fs.MkdirAll(h.paths.BuildDir(), 0755))
	h.external.On("Configure", mock.Anything).Return(errors.New(errors.ErrConfigure, "cmake failed"))

	c := h.controller(t)
	err := c.Run(context.Background())
	assert.Equal(t, errors.ExitConfigure, errors.ExitCode(err))
	require.NoError(t, c.Close())

	_, statErr := h.fs.Stat(h.paths.BuildDir())
	assert.Error(t, statErr)
	assert.Equal(t, checkpoint.Progress{}, h.progress(t))
	h.external.AssertNotCalled(t, "Build", mock.Anything)
}

func TestRun_CompileFailuresBlockLinking(t *testing.T) {
	h := newHarness(t)
	h.writeMetadata(t, scenario())
	h.expectExternal()
	h.compiler.On("Run", mock.Anything, mock.Anything).Return(compile.Report{
		Total:    2,
		Compiled: 1,
		Failed:   []compile.UnitFailure{{Output: "/src/b.o", Err: stderrors.New("exit status 1")}},
	}, nil).Once()

	c := h.controller(t)
	err := c.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCompile))
	assert.Equal(t, []string{"/src/b.o"}, errors.GetErrorDetails(err)["outputs"])
	require.NoError(t, c.Close())

	assert.False(t, h.progress(t).CompileToLLVM)
	h.linker.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestRun_MetadataLoadedOnce(t *testing.T) {
	h := newHarness(t)
	h.writeMetadata(t, scenario())
	h.expectExternal()
	h.compiler.On("Run", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			require.NoError(t, h.fs.Remove(h.paths.MetadataPath()))
		}).
		Return(compile.Report{Total: 2, Compiled: 2}, nil).Once()
	h.linker.On("Run", mock.Anything, mock.Anything).Return(linker.Result{}, nil).Once()

	c := h.controller(t)
	require.NoError(t, c.Run(context.Background()))
	require.NoError(t, c.Close())
	h.linker.AssertExpectations(t)
}

func TestRun_MissingMetadata(t *testing.T) {
	h := newHarness(t)
	h.expectExternal()

	c := h.controller(t)
	err := c.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMetadataLoad))
	assert.Equal(t, errors.ExitMetadata, errors.ExitCode(err))
	require.NoError(t, c.Close())
	assert.True(t, h.progress(t).CMaker)
}

func TestRun_LinkFailure(t *testing.T) {
	h := newHarness(t)
	h.writeMetadata(t, scenario())
	h.expectExternal()
	h.compiler.On("Run", mock.Anything, mock.Anything).Return(compile.Report{Total: 2, Compiled: 2}, nil)
	h.linker.On("Run", mock.Anything, mock.Anything).
		Return(linker.Result{}, errors.New(errors.ErrLinkFailed, "llvm-link failed"))

	c := h.controller(t)
	err := c.Run(context.Background())
	assert.Equal(t, errors.ExitLink, errors.ExitCode(err))
	require.NoError(t, c.Close())

	p := h.progress(t)
	assert.True(t, p.CompileToLLVM)
	assert.False(t, p.Linking)
}

func TestSingleStageCommands(t *testing.T) {
	t.Run("compile requires extraction", func(t *testing.T) {
		h := newHarness(t)
		c := h.controller(t)
		defer func() { _ = c.Close() }()

		err := c.Compile(context.Background())
		assert.True(t, errors.IsErrorCode(err, errors.ErrStageOrder))
		assert.Equal(t, errors.ExitCheckpoint, errors.ExitCode(err))
		h.compiler.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("link reruns a completed stage", func(t *testing.T) {
		h := newHarness(t)
		h.writeMetadata(t, scenario())
		done := checkpoint.Progress{CMake: true, Remake: true, CMaker: true, CompileToLLVM: true, Linking: true}
		data, err := json.Marshal(done)
		require.NoError(t, err)
		require.NoError(t, h.fs.WriteFile(h.paths.ProgressPath(), data, 0644))
		h.linker.On("Run", mock.Anything, mock.Anything).Return(linker.Result{Total: 2, Cached: 2}, nil).Once()

		c := h.controller(t)
		require.NoError(t, c.Link(context.Background()))
		require.NoError(t, c.Close())
		assert.Equal(t, done, c.Status())
		h.linker.AssertExpectations(t)
	})
}

package builder

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeflow/gitflow/executor"
)

// stubRunner serves canned results keyed by the first goal-like argument
// and records every invocation.
type stubRunner struct {
	stdout string
	err    error

	program string
	args    [][]string
}

func (s *stubRunner) Run(ctx context.Context, program string, args []string, opts ...executor.Option) (*executor.Result, error) {
	s.program = program
	s.args = append(s.args, args)
	if s.err != nil {
		return &executor.Result{ExitCode: 1, Stdout: s.stdout}, s.err
	}
	return &executor.Result{Stdout: s.stdout}, nil
}

func TestCurrentVersion(t *testing.T) {
	runner := &stubRunner{stdout: "1.2.0-SNAPSHOT\n"}
	m := New(runner, Options{}, nil)

	version, err := m.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0-SNAPSHOT", version)

	assert.Equal(t, "mvn", runner.program)
	require.Len(t, runner.args, 1)
	assert.Contains(t, runner.args[0], "-Dexpression=project.version")
	assert.Contains(t, runner.args[0], "-DforceStdout")
}

func TestCurrentVersionSkipsTrailingNoise(t *testing.T) {
	runner := &stubRunner{stdout: "1.2.0\n\n  \n"}
	m := New(runner, Options{}, nil)

	version, err := m.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", version)
}

func TestCurrentVersionRejectsLogOutput(t *testing.T) {
	runner := &stubRunner{stdout: "[INFO] BUILD SUCCESS\n"}
	m := New(runner, Options{}, nil)

	_, err := m.CurrentVersion(context.Background())
	assert.ErrorIs(t, err, ErrNoVersion)
}

func TestCurrentVersionBuildFailure(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("mvn failed: exit status 1")}
	m := New(runner, Options{}, nil)

	_, err := m.CurrentVersion(context.Background())
	require.Error(t, err)
}

func TestSetVersion(t *testing.T) {
	runner := &stubRunner{}
	m := New(runner, Options{WorkingDir: "/project"}, nil)

	require.NoError(t, m.SetVersion(context.Background(), "1.3.0"))

	require.Len(t, runner.args, 1)
	assert.Contains(t, runner.args[0], "versions:set")
	assert.Contains(t, runner.args[0], "-DnewVersion=1.3.0")
	assert.Contains(t, runner.args[0], "-DgenerateBackupPoms=false")
}

func TestSetVersionRejectsBlank(t *testing.T) {
	runner := &stubRunner{}
	m := New(runner, Options{}, nil)

	err := m.SetVersion(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoVersion)
	assert.Empty(t, runner.args)
}

func TestRunGoals(t *testing.T) {
	runner := &stubRunner{}
	m := New(runner, Options{ExtraArgs: []string{"-Pci"}}, nil)

	require.NoError(t, m.RunGoals(context.Background(), []string{"clean", "deploy"}))

	require.Len(t, runner.args, 1)
	assert.Equal(t, []string{"-B", "clean", "deploy", "-Pci"}, runner.args[0])
}

func TestRunGoalsRejectsBlankGoal(t *testing.T) {
	runner := &stubRunner{}
	m := New(runner, Options{}, nil)

	err := m.RunGoals(context.Background(), []string{"clean", ""})
	assert.ErrorIs(t, err, ErrBlankGoal)
	assert.Empty(t, runner.args)
}

func TestCleanCycles(t *testing.T) {
	runner := &stubRunner{}
	m := New(runner, Options{}, nil)

	require.NoError(t, m.CleanTest(context.Background()))
	require.NoError(t, m.CleanInstall(context.Background()))

	require.Len(t, runner.args, 2)
	assert.Equal(t, []string{"-B", "clean", "test"}, runner.args[0])
	assert.Equal(t, []string{"-B", "clean", "install"}, runner.args[1])
}

func TestHasSnapshotDependency(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   bool
	}{
		{
			name: "snapshot dependency present",
			stdout: "[INFO] The following files have been resolved:\n" +
				"[INFO]    org.example:core:jar:2.1.0-SNAPSHOT:compile\n" +
				"[INFO]    junit:junit:jar:4.13.2:test\n",
			want: true,
		},
		{
			name: "only released dependencies",
			stdout: "[INFO] The following files have been resolved:\n" +
				"[INFO]    org.example:core:jar:2.1.0:compile\n",
			want: false,
		},
		{
			name:   "snapshot mentioned outside coordinates",
			stdout: "[INFO] Building my-SNAPSHOT-scanner 1.0\n",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{stdout: tt.stdout}
			m := New(runner, Options{}, nil)

			has, err := m.HasSnapshotDependency(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, has)
		})
	}
}

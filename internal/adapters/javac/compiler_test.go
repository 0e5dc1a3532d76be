package javac_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/blobcache"
	"go.trai.ch/javelin/internal/adapters/classfile"
	"go.trai.ch/javelin/internal/adapters/javac"
	"go.trai.ch/javelin/internal/adapters/javasrc"
	"go.trai.ch/javelin/internal/adapters/telemetry"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newCompiler(t *testing.T) *javac.Compiler {
	t.Helper()
	if _, err := exec.LookPath("javac"); err != nil {
		t.Skip("javac not available")
	}

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	blobs, err := blobcache.OpenTemp()
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	return javac.New(javac.Options{WorkDir: t.TempDir()},
		javasrc.NewParser(), classfile.NewReader(), blobs, telemetry.NewNoOpTracer(), log)
}

func input(typeName, rel, src string) *domain.SourceInput {
	return &domain.SourceInput{
		Unit: domain.UnitSource{
			TypeName:        typeName,
			DisplayLocation: "/src/" + rel,
			ResourcePath:    rel,
			ContentID:       domain.NewContentID(typeName, []byte(src)),
		},
		Source: []byte(src),
	}
}

func TestCompiler_Compile(t *testing.T) {
	c := newCompiler(t)

	outs, err := c.Compile(context.Background(), []*domain.SourceInput{
		input("p.A", "p/A.java", "package p;\npublic class A { class Inner {} B b; }\n"),
		input("p.B", "p/B.java", "package p;\npublic class B {}\n"),
	}, nil)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	a := outs[0].Declaration
	require.False(t, a.HasErrors(), "%v", a.Problems)
	names := make([]string, 0, len(a.Classes))
	for _, cc := range a.Classes {
		names = append(names, cc.InternalName())
	}
	assert.Equal(t, []string{"p/A", "p/A$Inner"}, names)
	assert.Equal(t, domain.NoEnclosing, a.Classes[0].EnclosingIndex())
	assert.Equal(t, 0, a.Classes[1].EnclosingIndex())
	assert.Equal(t, []string{"/src/p/B.java"}, a.FileRefs)

	data, err := a.Classes[0].Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE}, data[:4])
}

func TestCompiler_CompileIsolatesErrors(t *testing.T) {
	c := newCompiler(t)

	outs, err := c.Compile(context.Background(), []*domain.SourceInput{
		input("p.Good", "p/Good.java", "package p;\npublic class Good {}\n"),
		input("p.Bad", "p/Bad.java", "package p;\npublic class Bad { Missing m; }\n"),
	}, nil)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	good, bad := outs[0].Declaration, outs[1].Declaration
	assert.False(t, good.HasErrors())
	assert.NotEmpty(t, good.Classes)

	require.True(t, bad.HasErrors())
	assert.Empty(t, bad.Classes)
	assert.Equal(t, 2, bad.Problems[0].Line)
	assert.Contains(t, bad.Problems[0].Message, "cannot find symbol")
}

func TestCompiler_CompileEmpty(t *testing.T) {
	c := javac.New(javac.Options{}, nil, nil, nil, nil, nil)
	outs, err := c.Compile(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, outs)
}

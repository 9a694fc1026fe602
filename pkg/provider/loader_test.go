package provider

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = `# name	properties	scope	depth	prefix	arguments	postfix
push_back	public|function	std::vector	0	void	(const T&)
size	public,function,const	std::vector	1	size_type	()	const

hidden	!private	detail
`

func TestReadText(t *testing.T) {
	records, err := ReadText(strings.NewReader(sampleTSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{
		Name:       "push_back",
		Properties: []string{"public", "function"},
		Scope:      "std::vector",
		Prefix:     "void",
		Arguments:  "(const T&)",
	}, records[0])
	assert.Equal(t, 1, records[1].InheritanceDepth)
	assert.Equal(t, "const", records[1].Postfix)
	assert.True(t, records[2].OutOfContext)
	assert.Equal(t, []string{"private"}, records[2].Properties)
}

func TestReadTextErrors(t *testing.T) {
	_, err := ReadText(strings.NewReader("\tpublic\n"))
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = ReadText(strings.NewReader("x\tpublic\tscope\tdeep\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestMsgpackRoundTrip(t *testing.T) {
	records, err := ReadText(strings.NewReader(sampleTSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteMsgpack(&buf, records))
	back, err := ReadMsgpack(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestLoadInto(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tsv"), []byte(sampleTSV), 0o644))

	var buf bytes.Buffer
	require.NoError(t, WriteMsgpack(&buf, []Record{{Name: "extra", Properties: []string{"global"}}}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.msgpack"), buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.tsv"), []byte("x\tnot_a_property\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	files, err := CandidateFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	store := NewStore()
	n, err := LoadInto(store, dir)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "the file with an unknown property is skipped")
	assert.Equal(t, []string{filepath.Join(dir, "a.tsv"), filepath.Join(dir, "b.msgpack")}, store.Origins())

	_, err = LoadInto(NewStore(), filepath.Join(dir, "c.tsv"))
	require.ErrorIs(t, err, ErrUnknownProperty)
}

func TestDetectFileFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := DetectFileFormat(path)
	require.ErrorIs(t, err, ErrUnknownFormat)

	bad := filepath.Join(dir, "bad.msgpack")
	require.NoError(t, os.WriteFile(bad, []byte{0xa1, 'x'}, 0o644))
	_, err = DetectFileFormat(bad)
	require.Error(t, err)
}

package checkpointer

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n uint64
}

func (c *counter) GobEncode() ([]byte, error) {
	return binary.LittleEndian.AppendUint64(nil, c.n), nil
}

func (c *counter) GobDecode(in []byte) error {
	if len(in) != 8 {
		return errors.New("bad counter")
	}
	c.n = binary.LittleEndian.Uint64(in)
	return nil
}

func TestSaveLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "c.ckpt")
	require.NoError(t, Save(filename, &counter{n: 42}))

	var c counter
	require.NoError(t, Load(filename, &c))
	assert.Equal(t, uint64(42), c.n)

	err := Load(filepath.Join(t.TempDir(), "missing.ckpt"), &c)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNEpisode(t *testing.T) {
	dir := t.TempDir()
	c := &counter{}
	check := NewNEpisode(2, c, FilenameEnumerator(0,
		filepath.Join(dir, "c"), ".ckpt"))

	for episode := 0; episode <= 5; episode++ {
		c.n = uint64(episode)
		require.NoError(t, check.Checkpoint(episode))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var restored counter
	require.NoError(t, Load(filepath.Join(dir, "c_1.ckpt"), &restored))
	assert.Equal(t, uint64(2), restored.n)
	require.NoError(t, Load(filepath.Join(dir, "c_2.ckpt"), &restored))
	assert.Equal(t, uint64(4), restored.n)
}

func TestNEpisodeDisabled(t *testing.T) {
	dir := t.TempDir()
	check := NewNEpisode(0, &counter{}, FilenameEnumerator(0,
		filepath.Join(dir, "c"), ".ckpt"))
	for episode := 0; episode < 5; episode++ {
		require.NoError(t, check.Checkpoint(episode))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileTimer(t *testing.T) {
	name := FileTimer("ckpts", ".ckpt")
	first := name()
	assert.Equal(t, first, name())
	assert.Regexp(t,
		regexp.MustCompile(`^ckpts/\d{4}_\d{2}_\d{2}_\d{2}_\d{2}_\d{2}\.ckpt$`),
		first)

	when := time.Date(2021, time.August, 18, 13, 4, 55, 0, time.Local)
	assert.Equal(t, "2021_08_18_13_04_55", Timestamp(when))
}

package coco2yolo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabulary_Index(t *testing.T) {
	i, ok := COCO80.Index("person")
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	i, ok = COCO80.Index("toothbrush")
	assert.True(t, ok)
	assert.Equal(t, 79, i)

	_, ok = COCO80.Index("Person")
	assert.False(t, ok)

	assert.Equal(t, "car", COCO80.Name(2))
	assert.Equal(t, "", COCO80.Name(80))
	assert.Equal(t, "", COCO80.Name(-1))
}

func TestVocabulary_Validate(t *testing.T) {
	assert.NoError(t, COCO80.Validate())
	assert.Error(t, Vocabulary{}.Validate())
	assert.Error(t, Vocabulary{"a", ""}.Validate())
	assert.Error(t, Vocabulary{"a", "b", "a"}.Validate())
}

func TestReadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("# vehicles\ncar\n\n  traffic light \nbus\n"), 0644))

	vocab, err := ReadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, Vocabulary{"car", "traffic light", "bus"}, vocab)

	_, err = ReadVocabulary(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

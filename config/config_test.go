package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "simplefs.yaml")
	if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func setenv(t *testing.T, key, value string) {
	os.Setenv(key, value)
	t.Cleanup(func() { os.Unsetenv(key) })
}

func TestLoadFile(t *testing.T) {
	assert := assert.New(t)
	path := writeFile(t, "image: disk.img\nblocks: 200\ndebug: 1\n")

	c, err := Load(path)
	assert.NoError(err)
	assert.Equal(&Config{Image: "disk.img", Blocks: 200, Debug: 1}, c)
}

func TestLoadNoFile(t *testing.T) {
	c, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, &Config{}, c)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadStrict(t *testing.T) {
	path := writeFile(t, "image: disk.img\nblokcs: 200\n")
	_, err := Load(path)
	assert.Error(t, err, "unknown field is rejected")
}

func TestEnvOverridesFile(t *testing.T) {
	assert := assert.New(t)
	path := writeFile(t, "image: disk.img\nblocks: 200\n")
	setenv(t, "SIMPLEFS_BLOCKS", "50")

	c, err := Load(path)
	assert.NoError(err)
	assert.Equal("disk.img", c.Image)
	assert.Equal(uint64(50), c.Blocks)
}

func TestEnvBadValue(t *testing.T) {
	setenv(t, "SIMPLEFS_DEBUG", "lots")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)
	assert.Error((&Config{Blocks: 10}).Validate())
	assert.NoError((&Config{Image: "disk.img"}).Validate())
}

func TestOpenDisk(t *testing.T) {
	assert := assert.New(t)
	image := filepath.Join(t.TempDir(), "disk.img")

	_, err := (&Config{Image: image}).OpenDisk()
	assert.Error(err, "no size for a new image")

	d, err := (&Config{Image: image, Blocks: 20}).OpenDisk()
	assert.NoError(err)
	assert.Equal(uint64(20), d.Size())
	assert.NoError(d.Close())

	d, err = (&Config{Image: image}).OpenDisk()
	assert.NoError(err)
	assert.Equal(uint64(20), d.Size())
	assert.NoError(d.Close())
}

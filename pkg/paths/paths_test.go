package paths

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shelf/pkg/files"
	"github.com/stretchr/testify/assert"
)

func fakeUserDirs() map[files.Location]string {
	return map[files.Location]string{
		files.LocationDesktop:   "/home/user/Desktop",
		files.LocationDownloads: "/home/user/Downloads",
		files.LocationDocuments: "/home/user/Documents",
		files.LocationPictures:  "/home/user/Pictures",
		files.LocationMusic:     "/home/user/Music",
		files.LocationHome:      "/home/user",
	}
}

func TestLocationForDir(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		expected files.Location
	}{
		{"downloads exact", "/home/user/Downloads", files.LocationDownloads},
		{"downloads subdirectory", "/home/user/Downloads/receipts", files.LocationDownloads},
		{"desktop", "/home/user/Desktop", files.LocationDesktop},
		{"documents", "/home/user/Documents/work", files.LocationDocuments},
		{"pictures", "/home/user/Pictures", files.LocationPictures},
		{"music", "/home/user/Music/albums", files.LocationMusic},
		{"home itself", "/home/user", files.LocationHome},
		{"other home folder", "/home/user/projects", files.LocationHome},
		{"outside home", "/tmp/stuff", files.LocationHome},
		{"trailing slash", "/home/user/Downloads/", files.LocationDownloads},
	}

	dirs := fakeUserDirs()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LocationForDir(tt.dir, dirs))
		})
	}
}

func TestLocationForDir_EmptyUserDir(t *testing.T) {
	dirs := fakeUserDirs()
	dirs[files.LocationDownloads] = ""
	assert.Equal(t, files.LocationHome,
		LocationForDir("/home/user/Downloads", dirs))
}

func TestConfigDir_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/shelf-config")
	assert.Equal(t, "/tmp/shelf-config", ConfigDir())
	assert.Equal(t, filepath.Join("/tmp/shelf-config", RuleFileName), RuleFile())
}

func TestStateDir_EnvOverride(t *testing.T) {
	t.Setenv(EnvStateDir, "/tmp/shelf-state")
	assert.Equal(t, "/tmp/shelf-state", StateDir())
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/absolute/path", ExpandHome("/absolute/path"))
	assert.Equal(t, "relative", ExpandHome("relative"))

	expanded := ExpandHome("~/Documents")
	assert.True(t, filepath.IsAbs(expanded))
	assert.Equal(t, "Documents", filepath.Base(expanded))
}

func TestUserDirs_CoversAllLocations(t *testing.T) {
	dirs := UserDirs()
	for _, loc := range files.Locations() {
		_, ok := dirs[loc]
		assert.True(t, ok, "missing user dir for %s", loc)
	}
}

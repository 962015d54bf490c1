/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package repo

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannelsFile = "testdata/channels.yaml"

func TestFile(t *testing.T) {
	rf := NewFile()
	rf.Add(
		&Entry{
			Name:     "main",
			Priority: 10,
			Paths:    []string{"/srv/channels/main"},
		},
		&Entry{
			Name:  "extra",
			Paths: []string{"/srv/channels/extra/noarch/repodata.json"},
		},
	)

	if len(rf.Channels) != 2 {
		t.Fatal("Expected 2 channels")
	}

	if rf.Has("nosuchchannel") {
		t.Error("Found nonexistent channel")
	}
	if !rf.Has("extra") {
		t.Error("extra channel is missing")
	}

	main := rf.Channels[0]
	if main.Name != "main" {
		t.Error("main is not named main")
	}
	if main.Priority != 10 {
		t.Error("Wrong priority for main")
	}
}

func TestLoadFile(t *testing.T) {
	file, err := LoadFile(testChannelsFile)
	require.NoError(t, err)

	is := assert.New(t)
	is.Equal(APIVersionV1, file.APIVersion)
	is.Len(file.Channels, 2)
	is.Equal("main", file.Channels[0].Name)
	is.Equal(10, file.Channels[0].Priority)
	is.Equal([]string{filepath.Join("testdata", "main")}, file.Channels[0].Paths)
	is.Equal(0, file.Channels[1].Priority)
	is.Equal([]string{filepath.Join("testdata", "extra-index.yaml")}, file.Channels[1].Paths)
}

func TestChannelsNotExists(t *testing.T) {
	if _, err := LoadFile("/this/path/does/not/exist.yaml"); err == nil {
		t.Errorf("expected err to be non-nil when path does not exist")
	} else if !strings.Contains(err.Error(), "couldn't load channels file") {
		t.Errorf("expected prompt `couldn't load channels file`")
	}
}

func TestUpdateAndRemove(t *testing.T) {
	is := assert.New(t)
	rf := NewFile()
	rf.Add(&Entry{Name: "main"}, &Entry{Name: "extra"})

	rf.Update(&Entry{Name: "main", Priority: 5}, &Entry{Name: "local"})
	is.Len(rf.Channels, 3)
	is.Equal(5, rf.Get("main").Priority)
	is.Equal("local", rf.Channels[2].Name)

	is.True(rf.Remove("extra"))
	is.False(rf.Remove("extra"))
	is.Nil(rf.Get("extra"))
	is.Len(rf.Channels, 2)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "channels.yaml")

	rf := NewFile()
	rf.Add(&Entry{Name: "main", Priority: 3, Paths: []string{"/srv/main"}})
	require.NoError(t, rf.WriteFile(path, 0644))

	loaded, err := LoadFile(path)
	require.NoError(t, err)

	is := assert.New(t)
	is.Len(loaded.Channels, 1)
	is.Equal(rf.Channels[0], loaded.Channels[0])
}

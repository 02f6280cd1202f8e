package file

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saiv46/AAWC/internal/core"
)

func TestStore_Unit(t *testing.T) {
	memFs := afero.NewMemMapFs()
	st := NewWithFs(memFs, "data/chats.json")
	ctx := context.Background()

	t.Run("LoadMissing", func(t *testing.T) {
		rooms, found, err := st.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, rooms)
	})

	rooms := map[string][]core.Message{
		"lobby": {{Timestamp: 1, Sender: "bob", Text: "hi"}, {Timestamp: 2, Sender: "amy", Text: "yo"}},
		"other": {{Timestamp: 3, Sender: "cat", Text: "meow"}},
	}

	t.Run("Save", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, rooms))

		exists, err := afero.Exists(memFs, "data/chats.json")
		require.NoError(t, err)
		assert.True(t, exists, "snapshot should exist after saving")

		tmpExists, err := afero.Exists(memFs, "data/chats.json.tmp")
		require.NoError(t, err)
		assert.False(t, tmpExists, "temporary file should be renamed away")
	})

	t.Run("Load", func(t *testing.T) {
		got, found, err := st.Load(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, rooms, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, st.Save(ctx, map[string][]core.Message{}))
		got, found, err := st.Load(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, got)
	})
}

func TestStore_Corrupt(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "chats.json", []byte("{broken"), 0o600))

	_, _, err := NewWithFs(memFs, "chats.json").Load(context.Background())
	assert.ErrorIs(t, err, core.ErrCorruptSnapshot)
}

func TestStore_ReadsLegacyDocument(t *testing.T) {
	memFs := afero.NewMemMapFs()
	legacy := `{"lobby":[[1700000000000,"Anonymous","hello&#x2Fworld"]]}`
	require.NoError(t, afero.WriteFile(memFs, "chats.json", []byte(legacy), 0o600))

	rooms, found, err := NewWithFs(memFs, "chats.json").Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []core.Message{{Timestamp: 1700000000000, Sender: "Anonymous", Text: "hello&#x2Fworld"}}, rooms["lobby"])
}

func TestStore_WithMessageStore(t *testing.T) {
	memFs := afero.NewMemMapFs()
	ctx := context.Background()

	ms := core.NewMessageStore(core.DefaultTTL, NewWithFs(memFs, "chats.json"))
	require.NoError(t, ms.Load(ctx))

	exists, err := afero.Exists(memFs, "chats.json")
	require.NoError(t, err)
	assert.True(t, exists, "initial load should create the snapshot")

	_, ok := ms.Append("lobby", "bob", "persist me")
	require.True(t, ok)
	require.NoError(t, ms.Save(ctx))

	fresh := core.NewMessageStore(core.DefaultTTL, NewWithFs(memFs, "chats.json"))
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, ms.Read("lobby", 0), fresh.Read("lobby", 0))
}

func TestStore_RoundTripsInvalidUTF8Input(t *testing.T) {
	memFs := afero.NewMemMapFs()
	ctx := context.Background()

	ms := core.NewMessageStore(core.DefaultTTL, NewWithFs(memFs, "chats.json"))
	require.NoError(t, ms.Load(ctx))

	msg, ok := ms.Append("lobby", "b\xffob", "caf\xe9")
	require.True(t, ok)
	assert.Equal(t, "caf�", msg.Text)
	assert.Equal(t, "b�ob", msg.Sender)
	require.NoError(t, ms.Save(ctx))

	fresh := core.NewMessageStore(core.DefaultTTL, NewWithFs(memFs, "chats.json"))
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, ms.Read("lobby", 0), fresh.Read("lobby", 0))
}

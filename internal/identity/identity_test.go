package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func defaultDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := NewDirectory(
		Account{Role: User1, Username: "me", Password: "love123", Name: "Me"},
		Account{Role: User2, Username: "boyfriend", Password: "love123", Name: "Boyfriend"},
	)
	require.NoError(t, err)
	return d
}

func TestPeer(t *testing.T) {
	require.Equal(t, User2, User1.Peer())
	require.Equal(t, User1, User2.Peer())
	require.False(t, Role("user3").Valid())
	require.Panics(t, func() { Role("").Peer() })

	_, err := ParseRole("admin")
	require.Error(t, err)
	r, err := ParseRole("user2")
	require.NoError(t, err)
	require.Equal(t, User2, r)
}

func TestNewDirectoryRejectsBadShape(t *testing.T) {
	_, err := NewDirectory(Account{Role: User2, Username: "a"}, Account{Role: User1, Username: "b"})
	require.Error(t, err)
	_, err = NewDirectory(Account{Role: User1, Username: "a", Password: "x"}, Account{Role: User2, Username: "a", Password: "x"})
	require.Error(t, err)
}

func TestLoginDefaultCredentials(t *testing.T) {
	local := &MemoryStore{}
	p, err := NewProvider(defaultDirectory(t), local)
	require.NoError(t, err)

	_, ok := p.CurrentIdentity()
	require.False(t, ok)

	ok, err = p.Login("me", "love123")
	require.NoError(t, err)
	require.True(t, ok)

	role, ok := p.CurrentIdentity()
	require.True(t, ok)
	require.Equal(t, User1, role)
	name, _ := p.DisplayName()
	require.Equal(t, "Me", name)

	saved, ok, err := local.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Saved{CurrentUser: User1, UserName: "Me"}, saved)
}

func TestLoginWrongPairStaysAnonymous(t *testing.T) {
	local := &MemoryStore{}
	p, err := NewProvider(defaultDirectory(t), local)
	require.NoError(t, err)

	for _, pair := range [][2]string{{"me", "wrong"}, {"boyfriend", ""}, {"", "love123"}, {"ME", "love123"}} {
		ok, err := p.Login(pair[0], pair[1])
		require.NoError(t, err)
		require.False(t, ok, "pair %v", pair)
	}
	_, ok := p.CurrentIdentity()
	require.False(t, ok)
	_, saved, _ := local.Load()
	require.False(t, saved)
}

func TestRestoreAndLogout(t *testing.T) {
	local := &MemoryStore{}
	require.NoError(t, local.Save(Saved{CurrentUser: User2, UserName: "Boyfriend"}))

	p, err := NewProvider(defaultDirectory(t), local)
	require.NoError(t, err)
	role, ok := p.CurrentIdentity()
	require.True(t, ok)
	require.Equal(t, User2, role)

	require.NoError(t, p.Logout())
	_, ok = p.CurrentIdentity()
	require.False(t, ok)
	_, ok = p.DisplayName()
	require.False(t, ok)
	_, saved, _ := local.Load()
	require.False(t, saved)
}

func TestRestoreIgnoresInvalidRole(t *testing.T) {
	local := &MemoryStore{}
	require.NoError(t, local.Save(Saved{CurrentUser: "intruder", UserName: "X"}))
	p, err := NewProvider(defaultDirectory(t), local)
	require.NoError(t, err)
	_, ok := p.CurrentIdentity()
	require.False(t, ok)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStore(path)

	_, ok, err := fs.Load()
	require.NoError(t, err)
	require.False(t, ok)

	p, err := NewProvider(defaultDirectory(t), fs)
	require.NoError(t, err)
	ok, err = p.Login("boyfriend", "love123")
	require.NoError(t, err)
	require.True(t, ok)

	// a new process sees the same identity
	p2, err := NewProvider(defaultDirectory(t), NewFileStore(path))
	require.NoError(t, err)
	role, ok := p2.CurrentIdentity()
	require.True(t, ok)
	require.Equal(t, User2, role)

	require.NoError(t, p2.Logout())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.NoError(t, fs.Clear())
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, ok, err := NewFileStore(path).Load()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoginWithoutDisplayNameSurvivesRestart(t *testing.T) {
	dir, err := NewDirectory(
		Account{Role: User1, Username: "me", Password: "love123"},
		Account{Role: User2, Username: "boyfriend", Password: "love123"},
	)
	require.NoError(t, err)
	local := &MemoryStore{}
	p, err := NewProvider(dir, local)
	require.NoError(t, err)
	ok, err := p.Login("me", "love123")
	require.NoError(t, err)
	require.True(t, ok)

	p2, err := NewProvider(dir, local)
	require.NoError(t, err)
	role, ok := p2.CurrentIdentity()
	require.True(t, ok)
	require.Equal(t, User1, role)
	name, _ := p2.DisplayName()
	require.Equal(t, string(User1), name)
}

package fileinfo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/afjoseph/commongo/print"
	"github.com/afjoseph/propfixture/config"
	"github.com/afjoseph/propfixture/piece"
	"github.com/stretchr/testify/require"
)

func Test_NewFileInfo(t *testing.T) {
	for _, tc := range []struct {
		title            string
		fillMode         config.FillMode
		fillValue        byte
		expectedFillByte byte
	}{
		{
			title:            "Constant",
			fillMode:         config.FILLMODE_CONSTANT,
			fillValue:        50,
			expectedFillByte: 50,
		},
		{
			title:            "Zero ignores fill value",
			fillMode:         config.FILLMODE_ZERO,
			fillValue:        50,
			expectedFillByte: 0,
		},
	} {
		t.Run(tc.title, func(t *testing.T) {
			cfg := config.Default()
			cfg.FileSize = 8
			cfg.FillMode = tc.fillMode
			cfg.FillValue = tc.fillValue
			fileInfo := NewFileInfo(cfg)
			require.Equal(t, tc.expectedFillByte, fileInfo.FillByte)

			buff := fileInfo.MakeBuffer()
			require.Equal(t, 8, len(buff))
			for _, b := range buff {
				require.Equal(t, tc.expectedFillByte, b)
			}
		})
	}
}

func Test_ReadPeerFile(t *testing.T) {
	tmpDir := t.TempDir()
	fileInfo := &FileInfo{Name: "TheFile.dat", Size: 4, FillByte: 7}
	path := filepath.Join(tmpDir, fileInfo.Name)

	// Missing
	buff, found, err := ReadPeerFile(path)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, buff)

	// A directory with the file's name doesn't count
	require.NoError(t, os.Mkdir(path, 0755))
	_, found, err = ReadPeerFile(path)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, os.Remove(path))

	// Present
	require.NoError(t, fileInfo.WriteTo(path, fileInfo.MakeBuffer()))
	buff, found, err = ReadPeerFile(path)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte{7, 7, 7, 7}, buff)
}

// Test_TorrentFile_roundtrip writes a .torrent for a seed buffer, loads it
// back and checks its pieces against intact and damaged copies of the seed
func Test_TorrentFile_roundtrip(t *testing.T) {
	print.SetLevel(print.LOG_DEBUG)

	// Setup
	// -----
	tmpDir := t.TempDir()
	fileInfo := &FileInfo{
		Name:        "TheFile.dat",
		Size:        100,
		FillByte:    50,
		PieceLength: 32,
	}
	buff := fileInfo.MakeBuffer()
	torrentPath := filepath.Join(tmpDir, "TheFile.dat.torrent")

	// Action
	// ------
	require.NoError(t, fileInfo.WriteTorrentFile(torrentPath, buff))
	pieces, err := LoadTorrentPieces(torrentPath)
	require.NoError(t, err)

	// Assertions
	// ----------
	// - 3 pieces of 32 and a last one of 4
	require.Equal(t, 4, len(pieces))
	require.Equal(t, int64(4), pieces[3].Length)
	require.True(t, piece.VerifyAll(pieces, buff).IsFull())
	// - A damaged byte in the 2nd piece only fails that piece
	buff[40] = 0
	require.Equal(t, "1011", piece.VerifyAll(pieces, buff).DumpAsBitstring())
}

func Test_LoadTorrentPieces__bad_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.torrent")
	require.NoError(t, os.WriteFile(path, []byte("not bencode"), 0644))
	_, err := LoadTorrentPieces(path)
	require.True(t, errors.Is(err, ERR_FILEINFO_LOAD_TORRENT))

	_, err = LoadTorrentPieces(filepath.Join(t.TempDir(), "missing.torrent"))
	require.True(t, errors.Is(err, ERR_FILEINFO_LOAD_TORRENT))
}

func Test_ReadPeerFile__stat_errors(t *testing.T) {
	for _, tc := range []struct {
		title    string
		setup    func(t *testing.T, tmpDir string) string
		skipRoot bool
	}{
		{
			title: "Peer dir is a symlink loop",
			setup: func(t *testing.T, tmpDir string) string {
				loop := filepath.Join(tmpDir, "peer_1001")
				require.NoError(t, os.Symlink("peer_1001", loop))
				return filepath.Join(loop, "TheFile.dat")
			},
		},
		{
			title: "Peer dir can't be searched",
			setup: func(t *testing.T, tmpDir string) string {
				peerDir := filepath.Join(tmpDir, "peer_1001")
				require.NoError(t, os.Mkdir(peerDir, 0755))
				path := filepath.Join(peerDir, "TheFile.dat")
				require.NoError(t, os.WriteFile(path, []byte{50}, 0644))
				require.NoError(t, os.Chmod(peerDir, 0000))
				t.Cleanup(func() { os.Chmod(peerDir, 0755) })
				return path
			},
			skipRoot: true,
		},
	} {
		t.Run(tc.title, func(t *testing.T) {
			if tc.skipRoot && os.Geteuid() == 0 {
				t.Skip("root ignores permissions")
			}
			path := tc.setup(t, t.TempDir())
			_, found, err := ReadPeerFile(path)
			require.True(t, errors.Is(err, ERR_FILEINFO_READ), "got %v", err)
			require.False(t, found)
		})
	}
}

package fixture

import (
	"errors"
	"os"

	"github.com/afjoseph/commongo/print"
	commongoutil "github.com/afjoseph/commongo/util"
	"github.com/afjoseph/propfixture/config"
	"github.com/afjoseph/propfixture/fileinfo"
	"github.com/afjoseph/propfixture/util"
)

var (
	ERR_FIXTURE_RESET   = errors.New("ERR_FIXTURE_RESET")
	ERR_FIXTURE_SEED    = errors.New("ERR_FIXTURE_SEED")
	ERR_FIXTURE_TORRENT = errors.New("ERR_FIXTURE_TORRENT")
)

// Build resets every peer dir and seeds the reference file. Running it twice
// yields the same end state: whatever the system under test wrote in
// between is gone
func Build(cfg *config.Config) error {
	print.DebugFunc()
	err := cfg.Validate()
	if err != nil {
		return err
	}
	err = ResetPeerDirs(cfg)
	if err != nil {
		return err
	}
	fileInfo := fileinfo.NewFileInfo(cfg)
	buff := fileInfo.MakeBuffer()
	err = SeedPeers(cfg, fileInfo, buff)
	if err != nil {
		return err
	}
	if cfg.MakeTorrent {
		err = fileInfo.WriteTorrentFile(cfg.TorrentFilePath(), buff)
		if err != nil {
			return print.ErrorWrapf(ERR_FIXTURE_TORRENT, err.Error())
		}
		print.Infof("Wrote %s\n", cfg.TorrentFilePath())
	}
	return nil
}

// ResetPeerDirs removes every existing peer dir with its contents, then
// creates all of them again, empty
func ResetPeerDirs(cfg *config.Config) error {
	print.DebugFunc()
	if !util.IsDirectory(cfg.RootDir) {
		err := os.MkdirAll(cfg.RootDir, os.ModePerm)
		if err != nil {
			return print.ErrorWrapf(ERR_FIXTURE_RESET, err.Error())
		}
	}
	for _, peerId := range cfg.PeerIds {
		peerDir := cfg.PeerDir(peerId)
		if !util.IsDirectory(peerDir) {
			continue
		}
		print.Debugf("Removing %s\n", peerDir)
		// SafeDelete refuses anything that resolves outside RootDir
		err := commongoutil.SafeDelete(cfg.RootDir, peerDir)
		if err != nil {
			return print.ErrorWrapf(ERR_FIXTURE_RESET, err.Error())
		}
	}
	for _, peerId := range cfg.PeerIds {
		err := os.Mkdir(cfg.PeerDir(peerId), os.ModePerm)
		if err != nil {
			return print.ErrorWrapf(ERR_FIXTURE_RESET, err.Error())
		}
	}
	return nil
}

// SeedPeers writes 'buff' into the dir of every seed peer. With the default
// config that's only the first peer
func SeedPeers(cfg *config.Config, fileInfo *fileinfo.FileInfo, buff []byte) error {
	print.DebugFunc()
	for _, peerId := range cfg.Seeds() {
		path := cfg.SeedFilePath(peerId)
		err := fileInfo.WriteTo(path, buff)
		if err != nil {
			return print.ErrorWrapf(ERR_FIXTURE_SEED, err.Error())
		}
		print.Infof("Seeded %s with %d bytes\n", path, len(buff))
	}
	return nil
}

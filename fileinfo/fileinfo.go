package fileinfo

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/afjoseph/commongo/print"
	"github.com/afjoseph/propfixture/config"
	"github.com/afjoseph/propfixture/piece"
	"github.com/afjoseph/propfixture/util"
	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
)

const CREATED_BY = "propfixture"

var (
	ERR_FILEINFO_READ          = errors.New("ERR_FILEINFO_READ")
	ERR_FILEINFO_WRITE         = errors.New("ERR_FILEINFO_WRITE")
	ERR_FILEINFO_WRITE_TORRENT = errors.New("ERR_FILEINFO_WRITE_TORRENT")
	ERR_FILEINFO_LOAD_TORRENT  = errors.New("ERR_FILEINFO_LOAD_TORRENT")
)

// FileInfo describes the reference file every peer should end up with: a
// raw blob of 'Size' bytes, each one equal to 'FillByte'
type FileInfo struct {
	Name        string
	Size        int64
	FillByte    byte
	PieceLength int64
}

func NewFileInfo(cfg *config.Config) *FileInfo {
	return &FileInfo{
		Name:        cfg.FileName,
		Size:        cfg.FileSize,
		FillByte:    cfg.ExpectedByte(),
		PieceLength: cfg.PieceLength,
	}
}

// MakeBuffer allocates the whole file in memory
func (self *FileInfo) MakeBuffer() []byte {
	return util.FilledByteSlice(int(self.Size), self.FillByte)
}

// WriteTo writes the reference file verbatim to 'path'
func (self *FileInfo) WriteTo(path string, buff []byte) error {
	print.Debugf("Writing %d bytes of [%d] to %s\n", len(buff), self.FillByte, path)
	err := os.WriteFile(path, buff, 0644)
	if err != nil {
		return print.ErrorWrapf(ERR_FILEINFO_WRITE, err.Error())
	}
	return nil
}

// ReadPeerFile reads the file at 'path' fully. A missing file (or a dir in
// its place) isn't an error: it returns found == false. Any other stat
// failure, like a peer dir we can't search, is an ERR_FILEINFO_READ
func ReadPeerFile(path string) (buff []byte, found bool, err error) {
	stat, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, print.ErrorWrapf(ERR_FILEINFO_READ, err.Error())
	case stat.IsDir():
		return nil, false, nil
	}
	buff, err = os.ReadFile(path)
	if err != nil {
		return nil, true, print.ErrorWrapf(ERR_FILEINFO_READ, err.Error())
	}
	return buff, true, nil
}

// TorrentInfo builds the single-file metainfo of 'buff'
func (self *FileInfo) TorrentInfo(buff []byte) *metainfo.Info {
	return &metainfo.Info{
		Name:        self.Name,
		Length:      int64(len(buff)),
		PieceLength: self.PieceLength,
		Pieces:      piece.HashPieces(buff, self.PieceLength),
	}
}

// WriteTorrentFile writes a .torrent describing 'buff' to 'path' so the
// system under test can be pointed at the seed
func (self *FileInfo) WriteTorrentFile(path string, buff []byte) error {
	print.DebugFunc()
	infoBytes, err := bencode.Marshal(self.TorrentInfo(buff))
	if err != nil {
		return print.ErrorWrapf(ERR_FILEINFO_WRITE_TORRENT, err.Error())
	}
	mi := metainfo.MetaInfo{
		CreatedBy:    CREATED_BY,
		CreationDate: time.Now().Unix(),
		InfoBytes:    infoBytes,
	}
	fd, err := os.Create(path)
	if err != nil {
		return print.ErrorWrapf(ERR_FILEINFO_WRITE_TORRENT, err.Error())
	}
	defer fd.Close()
	err = mi.Write(fd)
	if err != nil {
		return print.ErrorWrapf(ERR_FILEINFO_WRITE_TORRENT, err.Error())
	}
	print.Debugf("Wrote torrent for %s to %s\n", self.Name, path)
	return nil
}

// LoadTorrentPieces decodes the .torrent at 'path' into hashed pieces
func LoadTorrentPieces(path string) ([]*piece.Piece, error) {
	mi, err := util.DecodeTorrentFile(path)
	if err != nil {
		return nil, print.ErrorWrapf(ERR_FILEINFO_LOAD_TORRENT, err.Error())
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, print.ErrorWrapf(ERR_FILEINFO_LOAD_TORRENT, err.Error())
	}
	if info.IsDir() {
		return nil, print.ErrorWrapf(ERR_FILEINFO_LOAD_TORRENT,
			"%s describes a multi-file torrent", path)
	}
	pieces, err := piece.PiecesFromInfo(&info)
	if err != nil {
		return nil, print.ErrorWrapf(ERR_FILEINFO_LOAD_TORRENT, err.Error())
	}
	return pieces, nil
}

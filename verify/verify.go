package verify

import (
	"errors"

	"github.com/afjoseph/commongo/print"
	"github.com/afjoseph/propfixture/config"
	"github.com/afjoseph/propfixture/fileinfo"
	"github.com/afjoseph/propfixture/piece"
	"github.com/afjoseph/propfixture/util"
)

var (
	ERR_VERIFY_READ    = errors.New("ERR_VERIFY_READ")
	ERR_VERIFY_TORRENT = errors.New("ERR_VERIFY_TORRENT")
)

// MatchResult counts how many bytes of a buffer equal an expected value
type MatchResult struct {
	Length     int
	Matches    int
	Mismatches int
	// FirstMismatch is -1 if every byte matched
	FirstMismatch int
}

func Compare(buff []byte, expected byte) MatchResult {
	res := MatchResult{Length: len(buff), FirstMismatch: -1}
	for i, b := range buff {
		if b == expected {
			res.Matches++
			continue
		}
		if res.FirstMismatch == -1 {
			res.FirstMismatch = i
		}
		res.Mismatches++
	}
	return res
}

// Percentage of matching bytes. An empty buffer matches 0%
func (self MatchResult) Percentage() float64 {
	if self.Length == 0 {
		return 0
	}
	return 100.0 * float64(self.Matches) / float64(self.Length)
}

// ReportedPercentage truncates to one decimal once any byte differs, so a
// partial match never reads as 100.0
func (self MatchResult) ReportedPercentage() float64 {
	if self.Length == 0 || self.Mismatches == 0 {
		return self.Percentage()
	}
	tenths := int64(self.Matches) * 1000 / int64(self.Length)
	return float64(tenths) / 10
}

// AllMatch is false for an empty buffer: there's nothing that propagated
func (self MatchResult) AllMatch() bool {
	return self.Length > 0 && self.Mismatches == 0
}

type PeerReport struct {
	PeerId       int
	FilePath     string
	Found        bool
	ExpectedSize int64
	Match        MatchResult
	// Pieces is nil unless a torrent was checked
	Pieces *util.Bitfield
}

func (self *PeerReport) ActualSize() int64 {
	return int64(self.Match.Length)
}

func (self *PeerReport) SizeMismatch() bool {
	return self.Found && self.ActualSize() != self.ExpectedSize
}

type Report struct {
	Peers []*PeerReport
	// Holders has bit 'i' set if Peers[i] has the file
	Holders util.Bitfield
}

// VerifyPeer inspects one peer dir. It never writes anything
func VerifyPeer(cfg *config.Config, peerId int, pieces []*piece.Piece) (*PeerReport, error) {
	path := cfg.SeedFilePath(peerId)
	peerReport := &PeerReport{
		PeerId:       peerId,
		FilePath:     path,
		ExpectedSize: cfg.FileSize,
	}
	buff, found, err := fileinfo.ReadPeerFile(path)
	if err != nil {
		return nil, print.ErrorWrapf(ERR_VERIFY_READ, err.Error())
	}
	if !found {
		print.Debugf("%s not found\n", path)
		return peerReport, nil
	}
	peerReport.Found = true
	peerReport.Match = Compare(buff, cfg.ExpectedByte())
	if pieces != nil {
		bf := piece.VerifyAll(pieces, buff)
		peerReport.Pieces = &bf
	}
	return peerReport, nil
}

// Verify inspects every peer dir in configured order
func Verify(cfg *config.Config) (*Report, error) {
	print.DebugFunc()
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	var pieces []*piece.Piece
	if cfg.MakeTorrent {
		if util.IsFile(cfg.TorrentFilePath()) {
			pieces, err = fileinfo.LoadTorrentPieces(cfg.TorrentFilePath())
			if err != nil {
				return nil, print.ErrorWrapf(ERR_VERIFY_TORRENT, err.Error())
			}
		} else {
			print.Warnf("Torrent %s not found: skipping piece checks\n",
				cfg.TorrentFilePath())
		}
	}
	report := &Report{Holders: util.NewBitfield(len(cfg.PeerIds))}
	for i, peerId := range cfg.PeerIds {
		peerReport, err := VerifyPeer(cfg, peerId, pieces)
		if err != nil {
			return nil, err
		}
		if peerReport.Found {
			report.Holders.Set(i)
		}
		report.Peers = append(report.Peers, peerReport)
	}
	return report, nil
}

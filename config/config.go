package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/afjoseph/commongo/print"
	"github.com/afjoseph/propfixture/util"
)

var (
	ERR_CONFIG_INVALID        = errors.New("ERR_CONFIG_INVALID")
	ERR_CONFIG_BAD_FILLMODE   = errors.New("ERR_CONFIG_BAD_FILLMODE")
	ERR_CONFIG_BAD_REPORTMODE = errors.New("ERR_CONFIG_BAD_REPORTMODE")
	ERR_CONFIG_PARSE          = errors.New("ERR_CONFIG_PARSE")
)

type FillMode string

const (
	FILLMODE_ZERO     FillMode = "zero"
	FILLMODE_CONSTANT FillMode = "constant"
)

type ReportMode string

const (
	REPORTMODE_PERCENTAGE ReportMode = "percentage"
	REPORTMODE_BOOLEAN    ReportMode = "boolean"
)

const (
	DEFAULT_ROOT_DIR      = "."
	DEFAULT_FILE_NAME     = "TheFile.dat"
	DEFAULT_FILE_SIZE     = 10000232
	DEFAULT_FILL_VALUE    = 50
	DEFAULT_FIRST_PEER_ID = 1001
	DEFAULT_PEER_COUNT    = 6
	DEFAULT_PIECE_LENGTH  = 0x8000
	PEER_DIR_PREFIX       = "peer_"
	TORRENT_FILE_SUFFIX   = ".torrent"
)

// Config is shared by the builder and the verifier: both must run with the
// same values for a verification to mean anything
type Config struct {
	RootDir    string     `yaml:"root_dir"`
	FileName   string     `yaml:"file_name"`
	FileSize   int64      `yaml:"file_size"`
	FillMode   FillMode   `yaml:"fill_mode"`
	FillValue  byte       `yaml:"fill_value"`
	ReportMode ReportMode `yaml:"report_mode"`
	PeerIds    []int      `yaml:"peer_ids"`
	// SeedPeerIds are the peers that receive the file on setup. If empty,
	// the first peer in PeerIds is the only seed
	SeedPeerIds []int `yaml:"seed_peer_ids"`
	PieceLength int64 `yaml:"piece_length"`
	MakeTorrent bool  `yaml:"make_torrent"`
}

func Default() *Config {
	return &Config{
		RootDir:     DEFAULT_ROOT_DIR,
		FileName:    DEFAULT_FILE_NAME,
		FileSize:    DEFAULT_FILE_SIZE,
		FillMode:    FILLMODE_CONSTANT,
		FillValue:   DEFAULT_FILL_VALUE,
		ReportMode:  REPORTMODE_PERCENTAGE,
		PeerIds:     PeerIdRange(DEFAULT_FIRST_PEER_ID, DEFAULT_PEER_COUNT),
		PieceLength: DEFAULT_PIECE_LENGTH,
	}
}

// PeerIdRange returns 'count' consecutive ids starting at 'first'
func PeerIdRange(first, count int) []int {
	ids := make([]int, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, first+i)
	}
	return ids
}

func ParseFillMode(s string) (FillMode, error) {
	switch FillMode(s) {
	case FILLMODE_ZERO, FILLMODE_CONSTANT:
		return FillMode(s), nil
	default:
		return "", print.ErrorWrapf(ERR_CONFIG_BAD_FILLMODE,
			"unsupported fill mode [%s]", s)
	}
}

func ParseReportMode(s string) (ReportMode, error) {
	switch ReportMode(s) {
	case REPORTMODE_PERCENTAGE, REPORTMODE_BOOLEAN:
		return ReportMode(s), nil
	default:
		return "", print.ErrorWrapf(ERR_CONFIG_BAD_REPORTMODE,
			"unsupported report mode [%s]", s)
	}
}

func (self *Config) Validate() error {
	if len(self.FileName) == 0 {
		return print.ErrorWrapf(ERR_CONFIG_INVALID, "file name is empty")
	}
	if filepath.Base(self.FileName) != self.FileName {
		return print.ErrorWrapf(ERR_CONFIG_INVALID,
			"file name [%s] must not contain a directory", self.FileName)
	}
	if self.FileSize < 0 {
		return print.ErrorWrapf(ERR_CONFIG_INVALID,
			"file size is negative: %d", self.FileSize)
	}
	if _, err := ParseFillMode(string(self.FillMode)); err != nil {
		return print.ErrorWrapf(ERR_CONFIG_INVALID, err.Error())
	}
	if _, err := ParseReportMode(string(self.ReportMode)); err != nil {
		return print.ErrorWrapf(ERR_CONFIG_INVALID, err.Error())
	}
	if len(self.PeerIds) == 0 {
		return print.ErrorWrapf(ERR_CONFIG_INVALID, "no peers configured")
	}
	for i, id := range self.PeerIds {
		if util.IntSliceHas(self.PeerIds[:i], id) {
			return print.ErrorWrapf(ERR_CONFIG_INVALID, "duplicate peer id %d", id)
		}
	}
	for _, id := range self.SeedPeerIds {
		if !util.IntSliceHas(self.PeerIds, id) {
			return print.ErrorWrapf(ERR_CONFIG_INVALID,
				"seed peer %d is not a configured peer", id)
		}
	}
	if self.MakeTorrent && self.PieceLength <= 0 {
		return print.ErrorWrapf(ERR_CONFIG_INVALID,
			"piece length must be positive, got %d", self.PieceLength)
	}
	return nil
}

// ExpectedByte is the value every byte of the reference file must equal
func (self *Config) ExpectedByte() byte {
	if self.FillMode == FILLMODE_ZERO {
		return 0
	}
	return self.FillValue
}

// Seeds returns SeedPeerIds, falling back to the first peer. It may be
// called before Validate, so an empty peer list gives nil
func (self *Config) Seeds() []int {
	if len(self.SeedPeerIds) != 0 {
		return self.SeedPeerIds
	}
	if len(self.PeerIds) == 0 {
		return nil
	}
	return self.PeerIds[:1]
}

func PeerDirName(peerId int) string {
	return fmt.Sprintf("%s%d", PEER_DIR_PREFIX, peerId)
}

func (self *Config) PeerDir(peerId int) string {
	return filepath.Join(self.RootDir, PeerDirName(peerId))
}

func (self *Config) SeedFilePath(peerId int) string {
	return filepath.Join(self.PeerDir(peerId), self.FileName)
}

// TorrentFilePath lives in the root dir, never in a peer dir, so peers that
// haven't received anything stay empty
func (self *Config) TorrentFilePath() string {
	return filepath.Join(self.RootDir, self.FileName+TORRENT_FILE_SUFFIX)
}
